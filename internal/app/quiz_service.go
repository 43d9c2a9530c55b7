package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"timed-quiz/internal/domain"
	"timed-quiz/internal/quiz"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// RecordRepository supplies the raw records questions are built from.
type RecordRepository interface {
	GetRecords(ctx context.Context) ([]domain.Record, error)
}

// QuizService contains the quiz use cases presenters call into.
type QuizService struct {
	sessions SessionRepository
	records  RecordRepository
	opts     Options
	newID    func() string

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizService(store SessionRepository, records RecordRepository, opts Options) *QuizService {
	opts = opts.withDefaults()
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &QuizService{
		sessions: store,
		records:  records,
		opts:     opts,
		newID:    uuid.NewString,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

// Start creates a loading session and fetches its questions in the background.
// A failed fetch is logged and leaves the session loading.
func (s *QuizService) Start(ctx context.Context) string {
	session := NewSession(s.newID(), s.opts)
	s.sessions.Add(session)

	go func() {
		if err := s.LoadQuestions(ctx, session.ID()); err != nil {
			log.Printf("session %s: %v", session.ID(), err)
		}
	}()
	return session.ID()
}

// LoadQuestions fetches records and loads them into the session as questions.
func (s *QuizService) LoadQuestions(ctx context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	records, err := s.records.GetRecords(ctx)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if len(records) > s.opts.MaxQuestions {
		records = records[:s.opts.MaxQuestions]
	}
	session.Load(s.buildQuestions(records))
	return nil
}

func (s *QuizService) Select(_ context.Context, sessionID string, option int) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	return session.SelectOption(option)
}

func (s *QuizService) Next(_ context.Context, sessionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	return session.Next()
}

func (s *QuizService) GoTo(_ context.Context, sessionID string, index int) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	return session.GoTo(index)
}

func (s *QuizService) Restart(_ context.Context, sessionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	return session.Restart()
}

func (s *QuizService) View(_ context.Context, sessionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	return session.View(), nil
}

// Subscribe returns a channel that receives view updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.View, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// End tears the session down when its presenter goes away.
func (s *QuizService) End(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

func (s *QuizService) buildQuestions(records []domain.Record) []domain.Question {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return quiz.BuildQuestions(records, s.rnd)
}
