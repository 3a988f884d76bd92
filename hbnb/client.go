package hbnb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "http://localhost:5001/api/v1"

	maxPayload = 4 << 20
)

type Options struct {
	BaseURL string
	// RetryMax is the number of retries after the first attempt. Zero sends
	// every request exactly once.
	RetryMax int
	// Timeout bounds a single attempt. Zero means no timeout.
	Timeout time.Duration
	// RateLimit caps outbound requests per second. Zero disables pacing.
	RateLimit float64
	Logger    *slog.Logger
}

type Client struct {
	baseURL string
	http    *retryablehttp.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewClient(opts Options) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.HTTPClient.Timeout = opts.Timeout
	// hand non-2xx responses back to Do instead of a generic "giving up" error
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	logger := slog.Default()
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "hbnb_client")
		rc.Logger = logger
	} else {
		rc.Logger = nil
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{baseURL: base, http: rc, log: logger}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do sends method to baseURL+path with body JSON-encoded (nil sends no body)
// and returns the raw response payload.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		payload = b
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: method, URL: u, Err: err}
		}
	}

	var rawBody any
	if payload != nil {
		rawBody = payload
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, rawBody)
	if err != nil {
		return nil, &TransportError{Method: method, URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, &TransportError{Method: method, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &APIError{Method: method, URL: u, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}
	b, err := ioReadAllLimit(resp.Body, maxPayload)
	if err != nil {
		return nil, &TransportError{Method: method, URL: u, Err: err}
	}
	return b, nil
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	raw, err := c.Do(ctx, http.MethodGet, "/status/", nil)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/users/", nil)
	if err != nil {
		return nil, err
	}
	users, skipped, err := DecodeUsers(raw)
	if err != nil {
		return nil, err
	}
	for _, e := range skipped {
		c.log.Warn("skipping malformed user record", "error", e)
	}
	return users, nil
}

func (c *Client) Amenities(ctx context.Context) ([]Amenity, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/amenities/", nil)
	if err != nil {
		return nil, err
	}
	var out []Amenity
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode amenities: %w", err)
	}
	return out, nil
}

// SearchPlaces calls places_search with method (GET or POST). A nil filter
// sends an empty JSON object.
func (c *Client) SearchPlaces(ctx context.Context, method string, filter *SearchFilter) ([]PlaceResult, error) {
	if method == "" {
		method = http.MethodPost
	}
	var body any = struct{}{}
	if filter != nil {
		body = filter
	}
	raw, err := c.Do(ctx, method, "/places_search/", body)
	if err != nil {
		return nil, err
	}
	return DecodePlaces(raw)
}

func ioReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, ErrPayloadTooLarge
	}
	return b, nil
}
