package quiz

import "timed-quiz/internal/domain"

// DefaultQuestionTime is the countdown, in seconds, every question starts with.
const DefaultQuestionTime = 15

// State is the complete quiz aggregate. Transitions are value methods that
// return the next state; a rejected transition returns the receiver unchanged
// together with an error.
type State struct {
	Questions    []domain.Question
	Current      int
	Score        int
	Wrong        int
	Attempted    IndexSet
	NotAttempted IndexSet
	TimeLeft     int
	Selected     int
	HasSelection bool
	Ended        bool
	QuestionTime int
}

// New returns an empty (loading) state. A non-positive questionTime falls back to DefaultQuestionTime.
func New(questionTime int) State {
	if questionTime <= 0 {
		questionTime = DefaultQuestionTime
	}
	return State{
		QuestionTime: questionTime,
		TimeLeft:     questionTime,
	}
}

// Phase derives the coarse state machine position.
func (s State) Phase() domain.Phase {
	switch {
	case len(s.Questions) == 0:
		return domain.PhaseLoading
	case s.Ended:
		return domain.PhaseEnded
	default:
		return domain.PhaseActive
	}
}

// Load replaces the questions and resets every counter, set, index and the timer.
func (s State) Load(questions []domain.Question) State {
	next := New(s.QuestionTime)
	if len(questions) > 0 {
		next.Questions = append([]domain.Question(nil), questions...)
	}
	return next
}

// Restart resets all mutable fields and keeps the loaded questions.
func (s State) Restart() State {
	next := New(s.QuestionTime)
	next.Questions = s.Questions
	return next
}

// Tick counts the timer down by one second, never below zero. When it hits
// zero the current question is advanced as not attempted and expired is true.
func (s State) Tick() (next State, expired bool) {
	if s.Phase() != domain.PhaseActive {
		return s, false
	}
	if s.TimeLeft > 0 {
		s.TimeLeft--
	}
	if s.TimeLeft == 0 {
		return s.Advance(false), true
	}
	return s, false
}

// SelectOption locks in an answer for the current question and scores it.
func (s State) SelectOption(option int) (State, error) {
	switch s.Phase() {
	case domain.PhaseLoading:
		return s, domain.ErrInvalidSelection
	case domain.PhaseEnded:
		return s, domain.ErrQuizEnded
	}
	if s.HasSelection || s.decided(s.Current) {
		return s, domain.ErrInvalidSelection
	}
	q := s.Questions[s.Current]
	if !hasOption(q, option) {
		return s, domain.ErrInvalidSelection
	}

	s.Selected = option
	s.HasSelection = true
	s.Attempted = s.Attempted.With(s.Current)
	if option == q.CorrectAnswer {
		s.Score++
	} else {
		s.Wrong++
	}
	return s, nil
}

// Advance moves past the current question. An unattempted question is
// recorded as not attempted unless it was already answered.
func (s State) Advance(attempted bool) State {
	if s.Phase() != domain.PhaseActive {
		return s
	}
	s.Selected = 0
	s.HasSelection = false
	if !attempted && !s.Attempted.Contains(s.Current) {
		s.NotAttempted = s.NotAttempted.With(s.Current)
	}
	if s.Current >= len(s.Questions)-1 {
		s.Ended = true
		return s
	}
	s.Current++
	s.TimeLeft = s.QuestionTime
	return s
}

// Next is the user-triggered skip. It is refused while a selection is shown;
// the countdown path is not.
func (s State) Next() (State, error) {
	switch s.Phase() {
	case domain.PhaseLoading:
		return s, nil
	case domain.PhaseEnded:
		return s, domain.ErrQuizEnded
	}
	if s.HasSelection {
		return s, domain.ErrAdvanceLocked
	}
	return s.Advance(false), nil
}

// GoTo jumps to index without touching the attempted sets.
func (s State) GoTo(index int) (State, error) {
	if index < 0 || index >= len(s.Questions) {
		return s, domain.ErrIndexOutOfRange
	}
	if s.Ended {
		return s, domain.ErrQuizEnded
	}
	s.Current = index
	s.Selected = 0
	s.HasSelection = false
	s.TimeLeft = s.QuestionTime
	return s, nil
}

// StatusOf reports how question i has been decided.
func (s State) StatusOf(i int) domain.Status {
	switch {
	case s.Attempted.Contains(i):
		return domain.StatusAttempted
	case s.NotAttempted.Contains(i):
		return domain.StatusSkipped
	default:
		return domain.StatusUnattempted
	}
}

// Summary is the scoreboard shown once the quiz ends. NotAttempted counts
// every question without an answer, including ones never reached.
func (s State) Summary() domain.Summary {
	return domain.Summary{
		Total:        len(s.Questions),
		Score:        s.Score,
		Attempted:    s.Attempted.Len(),
		NotAttempted: len(s.Questions) - s.Attempted.Len(),
		Skipped:      s.NotAttempted.Len(),
		Wrong:        s.Wrong,
	}
}

// View renders the state for presenters.
func (s State) View() domain.View {
	v := domain.View{
		Phase: s.Phase(),
		Total: len(s.Questions),
	}
	switch v.Phase {
	case domain.PhaseEnded:
		summary := s.Summary()
		v.Summary = &summary
	case domain.PhaseActive:
		q := s.Questions[s.Current]
		v.Index = s.Current
		v.Prompt = q.Prompt
		v.Options = append([]int(nil), q.Options...)
		v.TimeLeft = s.TimeLeft
		if s.HasSelection {
			selected := s.Selected
			correct := selected == q.CorrectAnswer
			v.Selected = &selected
			v.Correct = &correct
		}
		v.Progress = make([]domain.Status, len(s.Questions))
		for i := range s.Questions {
			v.Progress[i] = s.StatusOf(i)
		}
	}
	return v
}

func (s State) decided(i int) bool {
	return s.Attempted.Contains(i) || s.NotAttempted.Contains(i)
}

func hasOption(q domain.Question, option int) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
