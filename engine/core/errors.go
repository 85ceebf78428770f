package core

import (
	"errors"
	"fmt"
)

var (
	ErrNilArgument           = errors.New("required argument is nil")
	ErrInvalidViewport       = errors.New("invalid viewport")
	ErrMissingGlobe          = errors.New("view is not bound to a globe")
	ErrSingularMatrix        = errors.New("matrix is singular")
	ErrInconsistentEllipsoid = errors.New("eccentricity squared is inconsistent with the ellipsoid radii")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrUnknownComponent      = errors.New("unknown component type")
	ErrUnknown               = errors.New("unknown")
)

// PreconditionError reports a programming error detected before any state
// was mutated. It is never retried or absorbed by the frame controller.
type PreconditionError struct {
	Op     string
	Detail string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// NewPreconditionError wraps a sentinel with the failing operation and a
// formatted detail message.
func NewPreconditionError(op string, err error, format string, args ...interface{}) error {
	return &PreconditionError{
		Op:     op,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// IsPrecondition reports whether err carries a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
