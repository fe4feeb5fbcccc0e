package domain

import "fmt"

// Error is a business-rule violation raised while mutating an aggregate.
// It aborts the whole unit of work before anything is persisted or published.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
