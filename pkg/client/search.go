package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"

	"github.com/robert-malhotra/aria-download/pkg/geometry"
	"github.com/robert-malhotra/aria-download/pkg/product"
)

// productFilter selects GUNW products; it is sent pre-encoded.
const productFilter = "asfplatform=Sentinel-1%20Interferogram%20(BETA)"

// SearchURL returns the search request URL for p. bbox is the already
// resolved box and must be non-nil whenever p.BBox is set.
func (c *Client) SearchURL(p product.Params, bbox *geometry.BoundingBox) string {
	return BuildSearchURL(c.endpoint().String(), p, bbox)
}

// BuildSearchURL assembles a search URL against endpoint. Parameters are
// appended in a fixed order so equal inputs give equal URLs, and every
// whitespace rune is replaced with '+'.
func BuildSearchURL(endpoint string, p product.Params, bbox *geometry.BoundingBox) string {
	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteString("?")
	b.WriteString(productFilter)
	b.WriteString("&output=JSON")

	if p.Track != "" {
		b.WriteString("&relativeOrbit=")
		b.WriteString(p.Track)
	}
	if bbox != nil {
		b.WriteString("&bbox=")
		b.WriteString(bbox.String())
	}
	if p.Direction != "" {
		b.WriteString("&flightDirection=")
		b.WriteString(p.Direction.Query())
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '+'
		}
		return r
	}, b.String())
}

// Search runs the search request and returns the product records of the
// first result page.
func (c *Client) Search(ctx context.Context, searchURL string) ([]product.Record, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %w", ErrSearch, newAPIError(resp))
	}

	records, err := DecodeSearchResponse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error decoding response from %s: %w", ErrSearch, searchURL, classify(err))
	}

	log.Debugf("Search returned %d products", len(records))
	return records, nil
}

// DecodeSearchResponse reads the JSON search format: an array whose first
// element is the array of products.
func DecodeSearchResponse(r io.Reader) ([]product.Record, error) {
	var pages [][]product.Record
	if err := json.NewDecoder(r).Decode(&pages); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return pages[0], nil
}
