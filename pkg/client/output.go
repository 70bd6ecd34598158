package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/robert-malhotra/aria-download/pkg/product"
)

// Output posts the product list to the output endpoint in the given mode
// and returns the raw response body: a count, a KMZ payload, or a bulk
// download script.
func (c *Client) Output(ctx context.Context, mode product.OutputMode, ids []string) ([]byte, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown output mode %s", ErrRemoteDispatch, mode)
	}

	u := c.endpoint()
	u.RawQuery = url.Values{"output": {mode.String()}}.Encode()

	form := url.Values{"product_list": {strings.Join(ids, ",")}}
	resp, err := c.doRequest(ctx, http.MethodPost, u.String(),
		strings.NewReader(form.Encode()),
		withContentType("application/x-www-form-urlencoded"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteDispatch, err)
	}
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %w", ErrRemoteDispatch, newAPIError(resp))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %w", ErrRemoteDispatch, mode, classify(err))
	}
	return body, nil
}
