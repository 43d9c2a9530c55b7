package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"timed-quiz/internal/domain"
)

// RecordStore keeps imported source records in Postgres so quizzes can run
// without reaching the remote API.
type RecordStore struct {
	pool  *pgxpool.Pool
	limit int
}

func NewRecordStore(pool *pgxpool.Pool, limit int) *RecordStore {
	return &RecordStore{pool: pool, limit: limit}
}

// LoadRecords returns up to limit records ordered by ID.
func (s *RecordStore) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, title, body FROM records ORDER BY id LIMIT $1`, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query records: %v", domain.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records imported", domain.ErrSourceUnavailable)
	}
	return records, nil
}

// SaveRecords upserts records in one transaction.
func (s *RecordStore) SaveRecords(ctx context.Context, records []domain.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		_, err := tx.Exec(ctx, `INSERT INTO records (id, user_id, title, body) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, title = EXCLUDED.title, body = EXCLUDED.body`,
			rec.ID, rec.UserID, rec.Title, rec.Body)
		if err != nil {
			return fmt.Errorf("upsert record %d: %w", rec.ID, err)
		}
	}
	return tx.Commit(ctx)
}
