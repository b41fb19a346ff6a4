package domain

import "errors"

var (
	// ErrInvalidConfig is returned when quiz settings cannot produce a playable quiz.
	ErrInvalidConfig = errors.New("invalid quiz config")
	// ErrInvalidExpression is returned for text outside the two-operand grammar.
	ErrInvalidExpression = errors.New("invalid arithmetic expression")
	// ErrDivisionByZero is returned when an expression divides by zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNoActiveQuiz is returned when an answer arrives outside a running quiz.
	ErrNoActiveQuiz = errors.New("no active quiz")
	// ErrAnswerOutOfRange indicates an answer index that is not on screen.
	ErrAnswerOutOfRange = errors.New("answer index out of range")
	// ErrNameEntryClosed is returned when a name is confirmed without a pending entry.
	ErrNameEntryClosed = errors.New("name entry is not open")
	// ErrInvalidTransition is returned for navigation not allowed from the current screen.
	ErrInvalidTransition = errors.New("invalid screen transition")
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned when a closed session receives input.
	ErrSessionClosed = errors.New("quiz session closed")
)
