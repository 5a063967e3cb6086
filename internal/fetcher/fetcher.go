// Path: internal/fetcher/fetcher.go
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"catalog-viewer/internal/config"
	"catalog-viewer/internal/domain"

	"golang.org/x/time/rate"
)

// envelope is the wire shape of every catalog API answer.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Client fetches product pages from the catalog API.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates and configures a new catalog API client.
func NewClient(cfg config.APIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(
			rate.Limit(cfg.RequestsPerSecond),
			cfg.BurstLimit,
		),
	}
}

// FetchPage fetches one page of products.
// Every failure, including an answer with success=false or a product
// missing a required field, is reported as domain.ErrFetch.
func (c *Client) FetchPage(ctx context.Context, page, size int) (*domain.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: %w: %d", domain.ErrFetch, domain.ErrInvalidPage, page)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: %w: %d", domain.ErrFetch, domain.ErrInvalidPageSize, size)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	reqURL, err := c.pageURL(page, size)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build url: %w", domain.ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", domain.ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", domain.ErrFetch, err)
	}

	return decodePage(body)
}

func (c *Client) pageURL(page, size int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodePage(body []byte) (*domain.Page, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json response: %w", domain.ErrFetch, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: api answered success=false: %s", domain.ErrFetch, truncate(body, 200))
	}

	var page domain.Page
	if err := json.Unmarshal(env.Data, &page); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal page: %w", domain.ErrFetch, err)
	}
	for _, p := range page.Result {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
		}
	}
	if err := page.Meta.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	return &page, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
