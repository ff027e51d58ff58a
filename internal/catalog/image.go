package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ResolveImage turns an image locator into an absolute URL. Locators that
// are already absolute are returned unchanged; relative ones resolve
// against the catalog base URL.
func (c *Client) ResolveImage(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", fmt.Errorf("catalog: empty image locator")
	}
	ref, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("catalog: invalid image locator %q: %w", locator, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// ProbeImage checks whether an image locator loads. A network failure or a
// non-2xx answer counts as a load failure. HEAD is tried first; servers
// that refuse HEAD get a GET whose body is discarded.
func (c *Client) ProbeImage(ctx context.Context, locator string) error {
	target, err := c.ResolveImage(locator)
	if err != nil {
		return err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	status, err := c.probe(ctx, http.MethodHead, target)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = c.probe(ctx, http.MethodGet, target)
	}
	if err != nil {
		return fmt.Errorf("image %s: %w", target, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("image %s: status %d", target, status)
	}
	return nil
}

func (c *Client) probe(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
	return resp.StatusCode, nil
}
