package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hfdaily/paperlens/internal/model"
)

// maxMetadataBytes bounds one day's metadata payload.
const maxMetadataBytes int64 = 10_000_000

// Fetcher retrieves one day's raw paper metadata from the daily-papers
// API. Requests are paced by a rate limiter and retried with exponential
// backoff on rate-limit and server errors.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
}

// NewFetcher creates a fetcher from configuration.
func NewFetcher(cfg model.FetchConfig) *Fetcher {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries: maxRetries,
	}
}

// FetchDay downloads the raw metadata for one day key and returns the
// body bytes after validating they parse as JSON. The caller owns
// persistence.
func (f *Fetcher) FetchDay(ctx context.Context, date string) ([]byte, error) {
	url := fmt.Sprintf("%s?date=%s", f.baseURL, date)

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", date, f.maxRetries, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !json.Valid(data) {
		return nil, false, fmt.Errorf("response is not valid JSON")
	}

	return data, false, nil
}
