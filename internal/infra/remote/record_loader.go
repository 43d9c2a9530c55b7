package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"timed-quiz/internal/domain"
)

// DefaultURL serves the posts the quiz prompts are taken from.
const DefaultURL = "https://jsonplaceholder.typicode.com/posts"

// RecordLoader fetches records from a JSON HTTP endpoint returning an array of posts.
type RecordLoader struct {
	url    string
	limit  int
	client *http.Client
}

func NewRecordLoader(url string, limit int, timeout time.Duration) *RecordLoader {
	if url == "" {
		url = DefaultURL
	}
	return &RecordLoader{
		url:    url,
		limit:  limit,
		client: &http.Client{Timeout: timeout},
	}
}

// LoadRecords GETs the endpoint and returns at most limit records in response order.
// Every failure wraps domain.ErrSourceUnavailable.
func (l *RecordLoader) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	var records []domain.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode records: %v", domain.ErrSourceUnavailable, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrSourceUnavailable)
	}
	if l.limit > 0 && len(records) > l.limit {
		records = records[:l.limit]
	}
	return records, nil
}
