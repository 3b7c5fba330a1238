// Package lookup resolves a product name to its in-store location through the
// supermarket's mobile articles API.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// UnknownAisle is stored when the catalog has no location for a product.
	UnknownAisle = "Unknown"

	// CodeNotFound is the terminal not-found failure class.
	CodeNotFound = "404"
	// CodeUnknown marks failures without an HTTP status.
	CodeUnknown = "unknown"

	maxBodySize = 2 * 1024 * 1024
)

// IsTerminal reports whether a stored failure code should wait for the
// staleness window instead of being retried on the next sync.
func IsTerminal(code string) bool {
	return code == CodeNotFound
}

// Location is a successful lookup. NotFound is set when the catalog returned
// no results; the item is then recorded as UnknownAisle.
type Location struct {
	Aisle    string
	Image    *string
	NotFound bool
}

// RemoteError is a failed lookup. Code is the HTTP status or CodeUnknown.
type RemoteError struct {
	Code string
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lookup failed (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("lookup failed (%s)", e.Code)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Client calls the articles endpoint for one store.
type Client struct {
	baseURL    string
	storeID    string
	httpClient *http.Client
}

// NewClient builds a client; timeout bounds each request end to end.
func NewClient(baseURL, storeID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		storeID:    storeID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type articlesResponse struct {
	Results []article `json:"results"`
}

type article struct {
	LocationDescription  string  `json:"locationDescription"`
	Aisle                *string `json:"aisle"`
	ArticleImageSmallURI string  `json:"articleImageSmallUri"`
}

// Locate looks up name. It never retries; failures come back as *RemoteError.
func (c *Client) Locate(ctx context.Context, name string) (Location, error) {
	endpoint := fmt.Sprintf("%s/mobile/api/v1/sites/%s/articles?locationDetail=true&term=%s",
		c.baseURL, url.PathEscape(c.storeID), url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, &RemoteError{Code: CodeUnknown, Err: err}
	}
	// The API only answers requests that look like the mobile app.
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", "MyCountdown/6907 CFNetwork/1562 Darwin/24.0.0")
	req.Header.Set("Accept-Language", "en-NZ,en-AU;q=0.9,en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, &RemoteError{Code: CodeUnknown, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return Location{}, &RemoteError{Code: strconv.Itoa(resp.StatusCode)}
	}

	var payload articlesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		return Location{}, &RemoteError{Code: CodeUnknown, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(payload.Results) == 0 {
		return Location{Aisle: UnknownAisle, NotFound: true}, nil
	}

	return payload.Results[0].location(), nil
}

func (a article) location() Location {
	aisle := a.LocationDescription
	if aisle == "" && a.Aisle != nil {
		aisle = *a.Aisle
	}
	if aisle == "" {
		aisle = UnknownAisle
	}

	var image *string
	if a.ArticleImageSmallURI != "" {
		uri := a.ArticleImageSmallURI
		image = &uri
	}

	return Location{Aisle: aisle, Image: image}
}
