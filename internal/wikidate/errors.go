package wikidate

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Parse, ParseFreeText and
// AgeFromMandatoryRetirement matches its own kind with errors.Is, and
// possibly the kind of the cause it wraps (a failed free-text fallback
// matches both ErrUnrecognizedDialect and ErrUnparsableFreeText).
var (
	// ErrUnrecognizedDialect: no macro prefix matched and the generic
	// fallback could not read the text either.
	ErrUnrecognizedDialect = errors.New("unrecognized date dialect")

	// ErrMalformedMacroBody: a macro prefix matched but its numeric fields
	// are missing or invalid.
	ErrMalformedMacroBody = errors.New("malformed macro body")

	// ErrImplausibleRetirementWindow: years until retirement fell outside (0, 50).
	ErrImplausibleRetirementWindow = errors.New("implausible retirement window")

	// ErrUnparsableFreeText: the generic date parser could not read the text.
	ErrUnparsableFreeText = errors.New("unparsable free-text date")
)

// ParseError describes a failed parse. Kind is one of the Err* values above.
type ParseError struct {
	Kind    error
	Dialect Dialect
	Input   string
	Err     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("wikidate: %s (%s): %q", e.Kind, e.Dialect, truncate(e.Input))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is e's kind.
func (e *ParseError) Is(target error) bool { return target == e.Kind }

func newParseError(kind error, dialect Dialect, input string, cause error) *ParseError {
	return &ParseError{Kind: kind, Dialect: dialect, Input: input, Err: cause}
}

func truncate(s string) string {
	const maxLen = 80
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
