// Package vmerrors provides the structured error taxonomy shared by every
// parser and instruction handler in the interpreter.
package vmerrors

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Kind identifies a category of failure. Kinds are stable strings so callers
// can match on them without importing this package's constants.
type Kind string

const (
	KindStackTooShallow   Kind = "STACK_TOO_SHALLOW"
	KindWrongType         Kind = "WRONG_TYPE"
	KindUnexpectedArgs    Kind = "UNEXPECTED_ARG_COUNT"
	KindInvalidLiteral    Kind = "INVALID_LITERAL"
	KindInvalidNat        Kind = "INVALID_NAT"
	KindInvalidMutez      Kind = "INVALID_MUTEZ"
	KindNoop              Kind = "NOOP"
	KindUnknownOpcode     Kind = "UNKNOWN_OPCODE"
	KindParseError        Kind = "PARSE_ERROR"
	KindUnknownTypeword   Kind = "UNKNOWN_TYPE_KEYWORD"
	KindUnbalancedParens  Kind = "UNBALANCED_PARENS"
	KindUnbalancedBraces  Kind = "UNBALANCED_BRACES"
	KindWrongArity        Kind = "WRONG_ARITY"
	KindTrailingGarbage   Kind = "TRAILING_GARBAGE"
	KindNonDuplicable     Kind = "NON_DUPLICABLE_VALUE"
	KindInvalidIR         Kind = "INVALID_IR_DOCUMENT"
)

// Error is the single structured error type every component returns.
// It is modeled on the (type, message, cause, context) shape used
// throughout the corpus this interpreter was grounded on.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to Cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Context: make(map[string]any)}
}

// Wrap creates an Error wrapping an existing error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithContext attaches a diagnostic key/value pair and returns the receiver.
func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.Kind == kind
}

// StackTooShallow reports that an opcode needed more stack depth than was
// available at its cursor position.
func StackTooShallow(expected, got int, opcode string) *Error {
	return New(KindStackTooShallow, fmt.Sprintf("%s needs %d stack cell(s), found %d", opcode, expected, got)).
		WithContext("expected", expected).
		WithContext("got", got).
		WithContext("opcode", opcode)
}

// WrongType reports a type mismatch at an opcode's required stack position.
func WrongType(expected []string, got string, opcode string) *Error {
	return New(KindWrongType, fmt.Sprintf("%s expected one of %v, got %s", opcode, expected, got)).
		WithContext("expected", expected).
		WithContext("got", got).
		WithContext("opcode", opcode)
}

// UnexpectedArgCount reports an operand-count mismatch for an instruction.
func UnexpectedArgCount(expected, got int, opcode string) *Error {
	return New(KindUnexpectedArgs, fmt.Sprintf("%s expects %d operand(s), got %d", opcode, expected, got)).
		WithContext("expected", expected).
		WithContext("got", got).
		WithContext("opcode", opcode)
}

// InvalidLiteral reports a literal that failed to parse into its declared type.
func InvalidLiteral(kind, literal, opcode string) *Error {
	return New(KindInvalidLiteral, fmt.Sprintf("%s: %q is not a valid %s literal", opcode, literal, kind)).
		WithContext("literal_kind", kind).
		WithContext("literal", literal).
		WithContext("opcode", opcode)
}

// InvalidNat reports a negative value where a nat was required.
func InvalidNat(v fmt.Stringer) *Error {
	return New(KindInvalidNat, fmt.Sprintf("%s is not a valid nat (must be >= 0)", v.String()))
}

// InvalidMutez reports a negative value where a mutez was required.
func InvalidMutez(v fmt.Stringer) *Error {
	return New(KindInvalidMutez, fmt.Sprintf("%s is not a valid mutez (must be >= 0)", v.String()))
}

// Noop reports a semantically null operation, e.g. DROP 0 or DIG 0.
func Noop(description string) *Error {
	return New(KindNoop, description)
}

// UnknownOpcode reports a dispatch miss, with a fuzzy-matched suggestion
// drawn from the set of registered opcode names.
func UnknownOpcode(name string, known []string) *Error {
	err := New(KindUnknownOpcode, fmt.Sprintf("unknown opcode %q", name)).
		WithContext("opcode", name)
	if suggestion := bestSuggestion(name, known); suggestion != "" {
		err.Message = fmt.Sprintf("%s (did you mean %q?)", err.Message, suggestion)
		err.WithContext("suggestion", suggestion)
	}
	return err
}

// ParseErrorAt reports a textual parse failure at a byte position.
func ParseErrorAt(reason string, position int) *Error {
	return New(KindParseError, fmt.Sprintf("%s (at position %d)", reason, position)).
		WithContext("position", position)
}

// bestSuggestion returns the closest fuzzy match for name among known, or
// "" if nothing is close enough to be useful.
func bestSuggestion(name string, known []string) string {
	matches := fuzzy.RankFindFold(name, known)
	if len(matches) == 0 {
		return ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Distance < best.Distance {
			best = m
		}
	}
	// A distance more than two past the name's own length isn't a useful
	// suggestion.
	if best.Distance > len(name)+2 {
		return ""
	}
	return best.Target
}
