package domain

import "fmt"

// ValidationError reports bad input shape or content. Recoverable: the
// message is surfaced to the caller as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError covers both a genuinely absent entity and one owned by a
// different user. The two causes are deliberately indistinguishable so that
// ownership checks do not leak existence.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found or access denied", e.Resource, e.ID)
}

// CorruptDataError marks a persisted collection that could not be decoded.
// It never propagates past the repository load path: the unreadable file is
// backed up and the collection starts empty.
type CorruptDataError struct {
	Path string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt data in %s: %v", e.Path, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }
