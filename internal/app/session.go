package app

import (
	"sync"
	"time"

	"timed-quiz/internal/domain"
	"timed-quiz/internal/quiz"
)

// Options tunes session timing and question generation.
type Options struct {
	QuestionTime  int           // seconds per question
	TickInterval  time.Duration // countdown resolution
	FeedbackDelay time.Duration // how long a selection is shown before advancing
	MaxQuestions  int
	Seed          int64 // 0 seeds from the wall clock
	Scheduler     Scheduler
}

func (o Options) withDefaults() Options {
	if o.QuestionTime <= 0 {
		o.QuestionTime = quiz.DefaultQuestionTime
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.FeedbackDelay <= 0 {
		o.FeedbackDelay = time.Second
	}
	if o.MaxQuestions <= 0 {
		o.MaxQuestions = 100
	}
	if o.Scheduler == nil {
		o.Scheduler = WallClock{}
	}
	return o
}

// Session drives one quiz attempt: it owns the quiz state, the per-question
// countdown and the feedback delay, and fans views out to subscribers.
//
// Every change of the current question bumps epoch. Timer callbacks remember
// the epoch they were armed in and are dropped when it has moved on.
type Session struct {
	id   string
	opts Options

	mu          sync.Mutex
	state       quiz.State
	epoch       uint64
	tick        Timer
	feedback    Timer
	closed      bool
	subscribers map[chan domain.View]struct{}
}

// NewSession returns a session in the loading phase.
func NewSession(id string, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		id:          id,
		opts:        opts,
		state:       quiz.New(opts.QuestionTime),
		subscribers: make(map[chan domain.View]struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Load installs the questions and starts the countdown on the first one.
func (s *Session) Load(questions []domain.Question) domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.viewLocked()
	}
	s.state = s.state.Load(questions)
	s.enterQuestionLocked()
	return s.broadcastLocked()
}

// SelectOption scores the option and schedules the advance after the feedback delay.
func (s *Session) SelectOption(option int) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.View{}, domain.ErrSessionNotFound
	}
	next, err := s.state.SelectOption(option)
	if err != nil {
		return s.viewLocked(), err
	}
	s.state = next
	epoch := s.epoch
	s.feedback = s.opts.Scheduler.AfterFunc(s.opts.FeedbackDelay, func() {
		s.onFeedback(epoch)
	})
	return s.broadcastLocked(), nil
}

// Next skips the current question unless an answer is being shown.
func (s *Session) Next() (domain.View, error) {
	return s.transition(func(st quiz.State) (quiz.State, error) {
		return st.Next()
	})
}

// GoTo jumps to the question at index.
func (s *Session) GoTo(index int) (domain.View, error) {
	return s.transition(func(st quiz.State) (quiz.State, error) {
		return st.GoTo(index)
	})
}

// Restart begins the same questions again from the first one.
func (s *Session) Restart() (domain.View, error) {
	return s.transition(func(st quiz.State) (quiz.State, error) {
		return st.Restart(), nil
	})
}

// View returns the current snapshot.
func (s *Session) View() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe returns a channel of views, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.View, func()) {
	ch := make(chan domain.View, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops all timers and releases subscribers. Further intents fail.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	s.stopTimersLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// transition applies a navigation step; each one lands on a fresh question
// (or the end screen), so the timers are re-armed.
func (s *Session) transition(step func(quiz.State) (quiz.State, error)) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.View{}, domain.ErrSessionNotFound
	}
	next, err := step(s.state)
	if err != nil {
		return s.viewLocked(), err
	}
	s.state = next
	s.enterQuestionLocked()
	return s.broadcastLocked(), nil
}

func (s *Session) onTick(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch {
		return
	}
	next, expired := s.state.Tick()
	s.state = next
	if expired {
		s.enterQuestionLocked()
	} else {
		s.armTickLocked()
	}
	s.broadcastLocked()
}

func (s *Session) onFeedback(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch {
		return
	}
	s.state = s.state.Advance(true)
	s.enterQuestionLocked()
	s.broadcastLocked()
}

func (s *Session) enterQuestionLocked() {
	s.epoch++
	s.stopTimersLocked()
	if s.state.Phase() == domain.PhaseActive {
		s.armTickLocked()
	}
}

func (s *Session) armTickLocked() {
	epoch := s.epoch
	s.tick = s.opts.Scheduler.AfterFunc(s.opts.TickInterval, func() {
		s.onTick(epoch)
	})
}

func (s *Session) stopTimersLocked() {
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
	if s.feedback != nil {
		s.feedback.Stop()
		s.feedback = nil
	}
}

func (s *Session) viewLocked() domain.View {
	v := s.state.View()
	v.SessionID = s.id
	return v
}

func (s *Session) broadcastLocked() domain.View {
	v := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			// drop the stale view so a slow presenter never blocks the timer
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
	return v
}
