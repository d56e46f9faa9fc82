package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a conversion failed.
// Go Pattern: Same string-constant "enum" trick as a status type.
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindFetch        ErrorKind = "fetch_failed"
	KindRead         ErrorKind = "read_failed"
	KindParse        ErrorKind = "parse_failed"
)

// Sentinels for errors.Is checks. A *ConversionError matches the sentinel
// of its kind.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrFetch        = errors.New("fetch failed")
	ErrRead         = errors.New("read failed")
	ErrParse        = errors.New("parse failed")
)

// ConversionError carries the failure kind plus the operation that failed.
type ConversionError struct {
	Kind ErrorKind
	Op   string // e.g. "fetch https://example.com/a.pdf", "page 3"
	Err  error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrParse) succeed for any parse-kind error.
func (e *ConversionError) Is(target error) bool {
	return sentinelFor(e.Kind) == target
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindFetch:
		return ErrFetch
	case KindRead:
		return ErrRead
	case KindParse:
		return ErrParse
	}
	return nil
}

// NewConversionError builds a ConversionError of the given kind.
func NewConversionError(kind ErrorKind, op string, err error) *ConversionError {
	return &ConversionError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first ConversionError in err's chain,
// or "" when there is none.
func KindOf(err error) ErrorKind {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
