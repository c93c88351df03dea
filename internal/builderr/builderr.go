// Package builderr classifies pipeline failures so callers can tell operator
// mistakes (a missing directory, an uncreatable destination) apart from
// failures inside the bundler or minifier.
package builderr

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrAssembly      = errors.New("assembly error")
	ErrMinification  = errors.New("minification error")
	ErrEnvironment   = errors.New("environment error")
)

// Error wraps a failure with its kind and the operation that produced it.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind.Error(), e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind.Error(), e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Op)
	}
	return e.Kind.Error()
}

// Is reports whether target is this error's kind, so errors.Is works with
// the sentinel values above.
func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Configuration(op string, err error) error { return newErr(ErrConfiguration, op, err) }
func Assembly(op string, err error) error      { return newErr(ErrAssembly, op, err) }
func Minification(op string, err error) error  { return newErr(ErrMinification, op, err) }
func Environment(op string, err error) error   { return newErr(ErrEnvironment, op, err) }

// Configurationf builds a configuration error from a format string.
func Configurationf(format string, args ...any) error {
	return newErr(ErrConfiguration, "", fmt.Errorf(format, args...))
}

// KindOf returns a short name for the kind of err, or "unknown" when err
// was not produced by this package.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrAssembly):
		return "assembly"
	case errors.Is(err, ErrMinification):
		return "minification"
	case errors.Is(err, ErrEnvironment):
		return "environment"
	}
	return "unknown"
}
