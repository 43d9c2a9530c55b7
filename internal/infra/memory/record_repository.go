package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"timed-quiz/internal/domain"
)

// RecordLoader fetches raw records from a backing source (remote API, Postgres).
type RecordLoader interface {
	LoadRecords(ctx context.Context) ([]domain.Record, error)
}

const cacheKey = "records"

// RecordRepository caches records with TTL so every new session does not hit the source.
type RecordRepository struct {
	loader RecordLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	records   []domain.Record
	expiresAt time.Time
}

func NewRecordRepository(loader RecordLoader, ttl time.Duration) *RecordRepository {
	return &RecordRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RecordRepository) GetRecords(ctx context.Context) ([]domain.Record, error) {
	if records, ok := r.cached(r.clock()); ok {
		return records, nil
	}

	result, err, _ := r.sf.Do(cacheKey, func() (interface{}, error) {
		now := r.clock()
		if records, ok := r.cached(now); ok {
			return records, nil
		}

		records, err := r.loader.LoadRecords(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.records = records
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Record), nil
}

func (r *RecordRepository) cached(now time.Time) ([]domain.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.records != nil && r.expiresAt.After(now) {
		return r.records, true
	}
	return nil, false
}

// ttlWithJitter adds up to 10% to the TTL. Only called inside the singleflight group.
func (r *RecordRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticRecordLoader is a loader backed by a fixed slice (useful for tests/demos).
type StaticRecordLoader struct {
	records []domain.Record
}

func NewStaticRecordLoader(records []domain.Record) *StaticRecordLoader {
	return &StaticRecordLoader{records: records}
}

func (l *StaticRecordLoader) LoadRecords(_ context.Context) ([]domain.Record, error) {
	if len(l.records) == 0 {
		return nil, domain.ErrSourceUnavailable
	}
	return l.records, nil
}
