package app

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"timed-quiz/internal/domain"
)

func TestStartLoadsQuestionsInBackground(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&stubRecords{records: sampleRecords()}, Options{Scheduler: &manualClock{}, Seed: 1})

	id := service.Start(ctx)
	updates, cancel, err := service.Subscribe(ctx, id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-updates:
			if v.Phase == domain.PhaseActive {
				if v.Total != 3 || v.Prompt != "alpha" {
					t.Fatalf("unexpected first view %+v", v)
				}
				return
			}
		case <-deadline:
			t.Fatalf("session never became active")
		}
	}
}

func TestLoadFailureKeepsSessionLoading(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&stubRecords{err: domain.ErrSourceUnavailable}, Options{Scheduler: &manualClock{}})

	session := NewSession("s1", service.opts)
	service.sessions.Add(session)

	err := service.LoadQuestions(ctx, "s1")
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable, got %v", err)
	}
	v, err := service.View(ctx, "s1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.Phase != domain.PhaseLoading {
		t.Fatalf("expected loading, got %s", v.Phase)
	}
	if _, err := service.Select(ctx, "s1", 1); !errors.Is(err, domain.ErrInvalidSelection) {
		t.Fatalf("expected selection ignored while loading, got %v", err)
	}
}

func TestLoadQuestionsCapsCount(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&stubRecords{records: sampleRecords()}, Options{Scheduler: &manualClock{}, MaxQuestions: 2})
	service.sessions.Add(NewSession("s1", service.opts))

	if err := service.LoadQuestions(ctx, "s1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	v, _ := service.View(ctx, "s1")
	if v.Total != 2 {
		t.Fatalf("expected 2 questions, got %d", v.Total)
	}
}

func TestServiceRoutesIntents(t *testing.T) {
	ctx := context.Background()
	clock := &manualClock{}
	service := newTestService(&stubRecords{records: sampleRecords()}, Options{Scheduler: clock})
	service.sessions.Add(NewSession("s1", service.opts))
	if err := service.LoadQuestions(ctx, "s1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	v, err := service.Select(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if v.Correct == nil || !*v.Correct {
		t.Fatalf("expected correct answer, got %+v", v)
	}
	clock.Advance(time.Second)

	if v, err = service.Next(ctx, "s1"); err != nil || v.Index != 2 {
		t.Fatalf("next: index=%d err=%v", v.Index, err)
	}
	if _, err = service.GoTo(ctx, "s1", 5); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if v, err = service.Next(ctx, "s1"); err != nil || v.Phase != domain.PhaseEnded {
		t.Fatalf("expected ended, got %+v err=%v", v, err)
	}
	want := domain.Summary{Total: 3, Score: 1, Attempted: 1, NotAttempted: 2, Skipped: 2}
	if *v.Summary != want {
		t.Fatalf("summary mismatch: got %+v want %+v", *v.Summary, want)
	}
	if v, err = service.Restart(ctx, "s1"); err != nil || v.Phase != domain.PhaseActive || v.Index != 0 {
		t.Fatalf("restart: %+v err=%v", v, err)
	}
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&stubRecords{}, Options{Scheduler: &manualClock{}})

	if _, err := service.Select(ctx, "missing", 1); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
	if _, _, err := service.Subscribe(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
	if err := service.LoadQuestions(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestEndRemovesSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&stubRecords{records: sampleRecords()}, Options{Scheduler: &manualClock{}})
	service.sessions.Add(NewSession("s1", service.opts))

	service.End(ctx, "s1")
	if _, err := service.View(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSeedMakesOptionOrderReproducible(t *testing.T) {
	a := newTestService(&stubRecords{}, Options{Seed: 99}).buildQuestions(sampleRecords())
	b := newTestService(&stubRecords{}, Options{Seed: 99}).buildQuestions(sampleRecords())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different questions:\n%+v\n%+v", a, b)
	}
}

func newTestService(records RecordRepository, opts Options) *QuizService {
	service := NewQuizService(newMapStore(), records, opts)
	service.newID = func() string { return "session-1" }
	return service
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{ID: 10, Title: "alpha"},
		{ID: 20, Title: "beta"},
		{ID: 30, Title: "gamma"},
	}
}

type stubRecords struct {
	records []domain.Record
	err     error
}

func (s *stubRecords) GetRecords(context.Context) ([]domain.Record, error) {
	return s.records, s.err
}

type mapStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMapStore() *mapStore {
	return &mapStore{sessions: make(map[string]*Session)}
}

func (m *mapStore) Add(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID()] = session
}

func (m *mapStore) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *mapStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
