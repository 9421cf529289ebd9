package action

import "errors"

var (
	// ErrCountTooLow indicates a count below the minimum of one.
	ErrCountTooLow = errors.New("count must be at least 1")
	// ErrUnknownKind indicates a kind outside the closed enum.
	ErrUnknownKind = errors.New("unknown action kind")
)
