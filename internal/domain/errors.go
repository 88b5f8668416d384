package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuestionSetNotFound indicates the question bank has nothing for the topic and difficulty.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrEmptyQuestionSet is the configuration error for a session with zero questions.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrMalformedQuestionSet wraps the reason a question set was rejected at start.
	ErrMalformedQuestionSet = errors.New("malformed question set")
	// ErrSessionClosed is returned when starting a session on a torn-down controller.
	ErrSessionClosed = errors.New("quiz session closed")
)
