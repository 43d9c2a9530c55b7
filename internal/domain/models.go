package domain

// Record is a raw item supplied by the question source.
type Record struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Question models an MCQ question whose correct answer is one of its options.
type Question struct {
	Prompt        string `json:"prompt"`
	CorrectAnswer int    `json:"correctAnswer"`
	Options       []int  `json:"options"`
}

// Phase is the coarse state of a quiz session.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseActive  Phase = "active"
	PhaseEnded   Phase = "ended"
)

// Status describes how a question has been decided so far.
type Status string

const (
	StatusUnattempted Status = "unattempted"
	StatusAttempted   Status = "attempted"
	StatusSkipped     Status = "skipped"
)

// Summary is the end-of-quiz scoreboard.
type Summary struct {
	Total        int `json:"total"`
	Score        int `json:"score"`
	Attempted    int `json:"attempted"`
	NotAttempted int `json:"notAttempted"`
	Skipped      int `json:"skipped"`
	Wrong        int `json:"wrong"`
}

// View is a render-ready snapshot of a session handed to presenters.
type View struct {
	SessionID string   `json:"sessionId,omitempty"`
	Phase     Phase    `json:"phase"`
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Prompt    string   `json:"prompt,omitempty"`
	Options   []int    `json:"options,omitempty"`
	TimeLeft  int      `json:"timeLeft"`
	Selected  *int     `json:"selected,omitempty"`
	Correct   *bool    `json:"correct,omitempty"`
	Progress  []Status `json:"progress,omitempty"`
	Summary   *Summary `json:"summary,omitempty"`
}
