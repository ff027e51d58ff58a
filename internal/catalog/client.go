package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Options configures a Client. Zero values mean: no per-request timeout,
// no pacing, no circuit breaker.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Breaker           BreakerSettings
	HTTPClient        *http.Client
}

// Client queries the catalog service. It is safe for concurrent use; the
// UI issues overlapping requests from separate commands.
type Client struct {
	base     *url.URL
	timeout  time.Duration
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *breaker
	validate *validator.Validate
}

// NewClient creates a Client for the service rooted at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("catalog: invalid base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("catalog: base url %q must be http or https", opts.BaseURL)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		base:     base,
		timeout:  opts.Timeout,
		client:   hc,
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  newBreaker(opts.Breaker),
		validate: newValidator(),
	}, nil
}

// BaseURL returns the service root the client was configured with.
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.base.String(), "/")
}

// Search asks the service for products matching text. The text is sent
// verbatim; only the emptiness check trims it.
func (c *Client) Search(ctx context.Context, text string) ([]Product, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	return c.query(ctx, "search", "search", url.Values{"q": {text}})
}

// Recommend asks the service for products similar to the given one.
func (c *Client) Recommend(ctx context.Context, id ProductID) ([]Product, error) {
	return c.query(ctx, "recommend", "recommend", url.Values{"id": {id.String()}})
}

// BreakerState reports the circuit breaker state ("closed", "half-open",
// "open"), or "disabled".
func (c *Client) BreakerState() string {
	return c.breaker.state()
}

func (c *Client) query(ctx context.Context, op, path string, params url.Values) ([]Product, error) {
	u := c.base.ResolveReference(&url.URL{Path: path, RawQuery: params.Encode()})
	target := u.String()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: fmt.Errorf("rate limiter wait failed: %w", err)}
	}

	body, err := c.breaker.execute(func() ([]byte, error) {
		return c.get(ctx, op, target)
	})
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}

	products, err := decodeProducts(c.validate, body)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Status: http.StatusOK, Err: err}
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, op, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TransportError{Op: op, URL: target, Err: fmt.Errorf("request cancelled: %w", ctx.Err())}
		}
		return nil, &TransportError{Op: op, URL: target, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, URL: target, Status: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", snippet(body))}
	}
	if len(body) > maxBodyBytes {
		return nil, &TransportError{Op: op, URL: target, Status: resp.StatusCode, Err: fmt.Errorf("response too large: over %d bytes", maxBodyBytes)}
	}
	return body, nil
}

// snippet trims a response body for inclusion in an error message.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	const max = 200
	if len(s) > max {
		s = s[:max] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
