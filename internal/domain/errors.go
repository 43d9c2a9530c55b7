package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been started or was already ended.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSourceUnavailable indicates the question source could not be reached or returned bad data.
	ErrSourceUnavailable = errors.New("question source unavailable")
	// ErrInvalidSelection is returned when an option is not among the current choices
	// or the current question has already been decided.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrIndexOutOfRange indicates a navigation target outside the loaded questions.
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrAdvanceLocked is returned by a manual skip while a selection is shown.
	ErrAdvanceLocked = errors.New("question already answered")
	// ErrQuizEnded indicates the quiz is over and only a restart is accepted.
	ErrQuizEnded = errors.New("quiz has ended")
)
