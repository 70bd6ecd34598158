package product

import "errors"

var (
	// ErrMissingParameter is returned when neither a track nor a bbox is given.
	ErrMissingParameter = errors.New("product: must specify either a bbox or track")
	// ErrInvalidParameter wraps any flag value that cannot be parsed.
	ErrInvalidParameter = errors.New("product: invalid parameter")
	// ErrNoProductsFound is returned when the search response holds no products.
	ErrNoProductsFound = errors.New("product: no products found with given url")
	// ErrMalformedIdentifier is returned when a product id has no parseable date pair.
	ErrMalformedIdentifier = errors.New("product: identifier has no YYYYMMDD_YYYYMMDD date pair")
)
