package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"timed-quiz/internal/domain"
)

// RecordLoader fetches raw records from a backing source (remote API, Postgres).
type RecordLoader interface {
	LoadRecords(ctx context.Context) ([]domain.Record, error)
}

// RecordRepository caches the record list in Redis and falls back to a loader on cache miss.
// Records are stored as a JSON array: SET quiz:records <json> EX <ttl>
type RecordRepository struct {
	client *redis.Client
	loader RecordLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewRecordRepository(client *redis.Client, loader RecordLoader, ttl time.Duration) *RecordRepository {
	return &RecordRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RecordRepository) GetRecords(ctx context.Context) ([]domain.Record, error) {
	if records, ok := r.cached(ctx); ok {
		return records, nil
	}

	result, err, _ := r.sf.Do(recordsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if records, ok := r.cached(ctx); ok {
			return records, nil
		}

		records, err := r.loader.LoadRecords(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("marshal records: %w", err)
		}
		// best-effort; a failed write only costs a reload next time
		_ = r.client.Set(ctx, recordsKey, data, r.ttlWithJitter()).Err()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Record), nil
}

// Invalidate drops the cached records so the next session reloads them.
func (r *RecordRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, recordsKey).Err()
}

const recordsKey = "quiz:records"

func (r *RecordRepository) cached(ctx context.Context) ([]domain.Record, bool) {
	data, err := r.client.Get(ctx, recordsKey).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil || len(records) == 0 {
		return nil, false
	}
	return records, true
}

func (r *RecordRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
