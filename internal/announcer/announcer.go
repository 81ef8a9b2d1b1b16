package announcer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultBatchSize = 10

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Announcer submits changed job URLs to external search indexing endpoints.
// Announcement is best effort: a failed batch is logged and skipped, jobs
// stay active and served regardless.
type Announcer struct {
	endpoints   []string
	host        string
	key         string
	batchSize   int
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
}

func New(endpoints []string, host string, key string) *Announcer {
	return &Announcer{
		endpoints:  endpoints,
		host:       host,
		key:        key,
		batchSize:  defaultBatchSize,
		httpClient: &http.Client{},
	}
}

func (a *Announcer) SetHTTPClient(client HTTPClient) {
	a.httpClient = client
}

func (a *Announcer) SetBatchSize(size int) {
	if size > 0 {
		a.batchSize = size
	}
}

// SetRateLimit spaces batch submissions to respect the indexing rate budget.
func (a *Announcer) SetRateLimit(maxBatchesPerSecond float32) {
	a.rateLimiter = rate.NewLimiter(rate.Limit(maxBatchesPerSecond), 1)
}

type submission struct {
	Host    string   `json:"host"`
	Key     string   `json:"key,omitempty"`
	URLList []string `json:"urlList"`
}

// Announce submits the URLs in fixed-size batches to every endpoint.
// It never returns an error: failures here must not fail the run.
func (a *Announcer) Announce(ctx context.Context, urls []string) {

	if len(urls) == 0 || len(a.endpoints) == 0 {
		return
	}

	submitted, failed := 0, 0
	for start := 0; start < len(urls); start += a.batchSize {
		end := start + a.batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[start:end]

		if a.rateLimiter != nil {
			if err := a.rateLimiter.Wait(ctx); err != nil {
				log.Warnf("announcement interrupted: %v", err)
				return
			}
		}

		for _, endpoint := range a.endpoints {
			if err := a.submitBatch(ctx, endpoint, batch); err != nil {
				failed++
				log.WithField("error_type", "announce").
					Errorf("announcement failed for %v urls to %v: %v", len(batch), endpoint, err)
			} else {
				submitted++
			}
		}
	}

	log.Infof("announced %v url batches, %v failed", submitted, failed)
}

func (a *Announcer) submitBatch(ctx context.Context, endpoint string, urls []string) error {

	body, err := json.Marshal(submission{Host: a.host, Key: a.key, URLList: urls})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("endpoint returned status %v", resp.StatusCode)
	}
	return nil
}
