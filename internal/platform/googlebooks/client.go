package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxResults is the page size requested for every search.
const DefaultMaxResults = 20

// ErrVolumeNotFound is wrapped by FetchError when the provider answers 404 for a volume id.
var ErrVolumeNotFound = errors.New("volume not found")

// FetchError reports that the metadata API was unreachable, rejected the
// request, or answered with a payload that could not be decoded.
type FetchError struct {
	Op      string // "search" or "volume"
	Status  int    // HTTP status, 0 when no response was received
	Message string // provider message when the payload carried {error:{message}}
	Err     error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("googlebooks %s: status %d: %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("googlebooks %s: %s", e.Op, msg)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

func NewClient(baseURL, apiKey string, rps int) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
	}
}

// Search runs a volumes query. The provider order of items is preserved.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*VolumeList, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))

	var res VolumeList
	if err := c.get(ctx, "search", "/volumes", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Volume fetches a single volume by its provider id.
func (c *Client) Volume(ctx context.Context, id string) (*Volume, error) {
	var res Volume
	if err := c.get(ctx, "volume", "/volumes/"+url.PathEscape(id), url.Values{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// get issues exactly one request; failures are surfaced to the caller, never retried.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &FetchError{Op: op, Err: err}
	}

	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{Op: op, Status: resp.StatusCode, Err: err}
	}

	// The provider reports failures as {error:{message}}, sometimes with a 200.
	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		fe := &FetchError{Op: op, Status: resp.StatusCode, Message: envelope.Error.Message}
		if resp.StatusCode == http.StatusNotFound {
			fe.Err = ErrVolumeNotFound
		}
		return fe
	}

	if resp.StatusCode != http.StatusOK {
		fe := &FetchError{Op: op, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if resp.StatusCode == http.StatusNotFound {
			fe.Err = ErrVolumeNotFound
		}
		return fe
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &FetchError{Op: op, Status: resp.StatusCode, Message: "malformed payload", Err: err}
	}
	return nil
}
