package domain

import "errors"

var (
	// ErrMessageNotFound is returned when no message with the given id
	// exists in the conversation log.
	ErrMessageNotFound = errors.New("message not found")

	// ErrInternalInconsistency signals a corrupted or externally-mutated
	// log, e.g. a retry target whose predecessor is not a user message.
	ErrInternalInconsistency = errors.New("conversation log is inconsistent")
)
