package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input the caller must correct before retrying.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a write that clashes with stored state.
	ErrConflict = errors.New("conflict")
)

type classifiedError struct {
	msg   string
	class error
}

func (e *classifiedError) Error() string { return e.msg }

func (e *classifiedError) Unwrap() error { return e.class }

// Validation returns a sentinel error that matches ErrValidation under errors.Is.
func Validation(msg string) error {
	return &classifiedError{msg: msg, class: ErrValidation}
}

// NotFound returns a sentinel error that matches ErrNotFound under errors.Is.
func NotFound(msg string) error {
	return &classifiedError{msg: msg, class: ErrNotFound}
}

// Conflict returns a sentinel error that matches ErrConflict under errors.Is.
func Conflict(msg string) error {
	return &classifiedError{msg: msg, class: ErrConflict}
}
