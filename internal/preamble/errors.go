package preamble

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPreambleSource is matched by errors reporting a call-site or
	// interchange document that could not be parsed.
	ErrInvalidPreambleSource = errors.New("invalid preamble source")

	// ErrEncodingCollision is matched by errors reporting two different wire
	// layouts registered for the same log event.
	ErrEncodingCollision = errors.New("encoding collision")
)

// InvalidSourceError is returned when a preamble source is malformed. Source
// is the file name, or "<string>" when parsing from memory.
type InvalidSourceError struct {
	Source string
	Err    error
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, ErrInvalidPreambleSource, e.Err)
}

func (e *InvalidSourceError) Unwrap() error { return e.Err }

func (e *InvalidSourceError) Is(target error) bool { return target == ErrInvalidPreambleSource }

func invalidSource(source string, format string, args ...any) error {
	return &InvalidSourceError{Source: source, Err: fmt.Errorf(format, args...)}
}

// EncodingCollisionError carries both encodings registered under ID. The
// Source field of each encoding tells which file it came from.
type EncodingCollisionError struct {
	ID       string
	Existing *LogEncoding
	Incoming *LogEncoding
}

func (e *EncodingCollisionError) Error() string {
	return fmt.Sprintf("%s: %q\n  %s: %s\n  %s: %s", ErrEncodingCollision, e.ID,
		sourceName(e.Existing.Source), e.Existing,
		sourceName(e.Incoming.Source), e.Incoming)
}

func (e *EncodingCollisionError) Is(target error) bool { return target == ErrEncodingCollision }

func sourceName(s string) string {
	if s == "" {
		return "<string>"
	}
	return s
}
