// Package errors provides error values with prefixes and multi-error composition.
// Formatting of nested errors produces an indented bullet list, see Format.
package errors

import (
	"errors"
	"fmt"
)

func New(text string) error {
	return errors.New(text)
}

// Errorf supports the %w verb, as the standard library does.
func Errorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// wrappedError has its own message, the original error is available via Unwrap.
type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.err
}

func Wrap(err error, msg string) error {
	if err == nil {
		panic(New("error cannot be nil"))
	}
	return &wrappedError{msg: msg, err: err}
}

func Wrapf(err error, format string, a ...any) error {
	return Wrap(err, fmt.Sprintf(format, a...))
}

// PrefixError composes "<prefix>: <err>", sub-errors are rendered as a bullet list.
func PrefixError(err error, prefix string) error {
	return newNestedError(New(prefix), err)
}

func PrefixErrorf(err error, format string, a ...any) error {
	return newNestedError(Errorf(format, a...), err)
}

type nestedError struct {
	main error
	errs []error
}

func newNestedError(main error, errs ...error) *nestedError {
	if main == nil {
		panic(New("error cannot be nil"))
	}

	out := &nestedError{main: main}
	for _, err := range errs {
		if v, ok := err.(MultiError); ok { // nolint: errorlint
			out.errs = append(out.errs, v.WrappedErrors()...)
		} else {
			out.errs = append(out.errs, err)
		}
	}
	return out
}

func (e *nestedError) Error() string {
	return Format(e)
}

func (e *nestedError) MainError() error {
	return e.main
}

func (e *nestedError) WrappedErrors() []error {
	return e.errs
}

func (e *nestedError) Unwrap() []error {
	return append([]error{e.main}, e.errs...)
}
