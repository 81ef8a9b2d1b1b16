package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

const (
	maxAttempts    = 3
	retryDelay     = 2 * time.Second
	requestTimeout = 20 * time.Second
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher is the shared request layer for all adapters: realistic request
// identity, per-request timeout, bounded retry and an optional rate budget.
type Fetcher struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	timeout     time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{},
		timeout:    requestTimeout,
	}
}

func (f *Fetcher) SetHTTPClient(client HTTPClient) {
	f.httpClient = client
}

func (f *Fetcher) SetRateLimit(maxRequestsPerSecond float32) {
	f.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed with status %v, body: %v", e.code, e.body)
}

// Get fetches a URL, retrying transient failures a fixed number of times
// before giving up. Non-retryable statuses (4xx except 429) fail immediately.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {

	var body []byte
	var err error

	_, _, _ = lo.AttemptWhileWithDelay(maxAttempts, retryDelay, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			log.Warnf("retrying request to %v after transient error: %v", url, err)
		}
		body, err = f.get(ctx, url)
		return err, isRetryable(err)
	})

	return body, err
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {

	if f.rateLimiter != nil {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, body: truncateBody(body)}
	}

	return body, nil
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.code == http.StatusTooManyRequests || status.code >= 500
	}
	// Network level failures are worth another attempt.
	return true
}

func truncateBody(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
