package docexpr

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrUnresolvableField     ErrorKind = "unresolvable_field"
	ErrUnsupportedExpression ErrorKind = "unsupported_expression"
	ErrEmptyUpdate           ErrorKind = "empty_update"
	ErrInternalInvariant     ErrorKind = "internal_compilation_invariant"
	ErrConfig                ErrorKind = "config"
	ErrExecution             ErrorKind = "execution"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Field   string // offending member chain, if any
	Expr    string // offending sub-expression, if any
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := string(e.Kind)
	if e.Message != "" {
		base = fmt.Sprintf("%s: %s", base, e.Message)
	}
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func UnsupportedExpressionError(expr, msg string) *Error {
	return &Error{Kind: ErrUnsupportedExpression, Expr: expr, Message: msg}
}

func ConfigError(msg string, cause error) *Error {
	return &Error{Kind: ErrConfig, Message: msg, Cause: cause}
}

func ExecutionError(msg string, cause error) *Error {
	return &Error{Kind: ErrExecution, Message: msg, Cause: cause}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
