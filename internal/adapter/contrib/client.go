package contrib

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/contrib-matrix/internal/domain"
	"github.com/couchcryptid/contrib-matrix/internal/observability"
)

// maxBodyBytes bounds a single response; a year of text is a few kilobytes.
const maxBodyBytes = 1 << 20

// Client fetches contribution payloads from a github-contributions-api style endpoint.
// It implements pipeline.Fetcher.
type Client struct {
	url        string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for url. timeout bounds each request so a
// stalled network call cannot hang the poll loop.
func NewClient(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads the payload. Transport failures and non-200 responses come
// back as *domain.FetchError and never as a Payload.
func (c *Client) Fetch(ctx context.Context) (domain.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.Payload{}, &domain.FetchError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "text/plain")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("transport").Inc()
		return domain.Payload{}, &domain.FetchError{Err: err}
	}
	defer resp.Body.Close()

	c.metrics.FetchRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return domain.Payload{}, &domain.FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Payload{}, &domain.FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("contributions fetched", "bytes", len(body), "duration", time.Since(start))
	return domain.Payload{Body: body, FetchedAt: start}, nil
}
