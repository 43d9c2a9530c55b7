package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"timed-quiz/internal/app"
	"timed-quiz/internal/config"
	"timed-quiz/internal/infra/memory"
	"timed-quiz/internal/infra/postgres"
	redisinfra "timed-quiz/internal/infra/redis"
	"timed-quiz/internal/infra/remote"
)

const defaultSourceLimit = 100

// newQuizService wires the record source, its cache and the session store
// from config. Postgres replaces the remote API when configured; Redis
// replaces the in-process cache and session store.
func newQuizService(ctx context.Context, cfg config.Config) (*app.QuizService, func(), error) {
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			if redisClient != nil {
				redisClient.Close()
			}
			return nil, nil, err
		}
	}

	limit := sourceLimit(cfg)
	var loader memory.RecordLoader = newRemoteLoader(cfg)
	if pool != nil {
		loader = postgres.NewRecordStore(pool, limit)
	}

	sourceTTL := config.TTLDuration(cfg.Source.TTL, 10*time.Minute)
	var records app.RecordRepository
	if redisClient != nil {
		records = redisinfra.NewRecordRepository(redisClient, loader, sourceTTL)
	} else {
		records = memory.NewRecordRepository(loader, sourceTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewQuizService(store, records, app.Options{
		QuestionTime:  cfg.Quiz.QuestionTime,
		TickInterval:  config.TTLDuration(cfg.Quiz.TickInterval, time.Second),
		FeedbackDelay: config.TTLDuration(cfg.Quiz.FeedbackDelay, time.Second),
		MaxQuestions:  limit,
		Seed:          cfg.Quiz.Seed,
	})

	cleanup := func() {
		if pool != nil {
			pool.Close()
		}
		if redisClient != nil {
			redisClient.Close()
		}
	}
	return service, cleanup, nil
}

func newRemoteLoader(cfg config.Config) *remote.RecordLoader {
	return remote.NewRecordLoader(cfg.Source.URL, sourceLimit(cfg), config.TTLDuration(cfg.Source.Timeout, 10*time.Second))
}

func sourceLimit(cfg config.Config) int {
	if cfg.Source.Limit > 0 {
		return cfg.Source.Limit
	}
	return defaultSourceLimit
}
