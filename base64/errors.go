package base64

import (
	"errors"
	"fmt"
)

var (
	ErrAllocation       = errors.New("base64: allocation failed")
	ErrInvalidCharacter = errors.New("base64: invalid character in input")
	ErrTruncatedInput   = errors.New("base64: truncated input")
	ErrInvalidPadding   = errors.New("base64: invalid padding")
	ErrUnknownAlphabet  = errors.New("base64: unknown alphabet")
)

// DecodeError reports malformed decode input. Err is one of
// ErrInvalidCharacter, ErrTruncatedInput or ErrInvalidPadding.
type DecodeError struct {
	// Offset is the byte offset in the input where the problem was found.
	Offset int
	// Char is the offending byte. It is zero when the input ended early.
	Char byte
	Err  error
}

func (e *DecodeError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInvalidCharacter):
		return fmt.Sprintf("%v: %q at offset %d", e.Err, e.Char, e.Offset)
	case errors.Is(e.Err, ErrTruncatedInput):
		return fmt.Sprintf("%v: single symbol in final quantum at offset %d", e.Err, e.Offset)
	default:
		return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }
