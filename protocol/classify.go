package protocol

import "errors"

// Class groups decode errors by what went wrong.
type Class string

const (
	ClassUnknown Class = "unknown"

	// ClassFraming: a length runs past the data, a line is unterminated or a
	// number does not parse.
	ClassFraming Class = "framing"

	// ClassGrammar: a line has the wrong shape or appears out of context.
	ClassGrammar Class = "grammar"

	// ClassIntegrity: a MAC did not verify.
	ClassIntegrity Class = "integrity"
)

// Classify maps an error returned by a decoder to its Class.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassUnknown

	case errors.Is(err, ErrMACMismatch):
		return ClassIntegrity

	case errors.Is(err, ErrMissingNewline),
		errors.Is(err, ErrTruncated),
		errors.Is(err, ErrTrailingData),
		errors.Is(err, ErrBadNumber):
		return ClassFraming

	case errors.Is(err, ErrFieldCount),
		errors.Is(err, ErrUnknownCommand),
		errors.Is(err, ErrUnknownChunk),
		errors.Is(err, ErrHashLength),
		errors.Is(err, ErrMissingListName),
		errors.Is(err, ErrBadSignal),
		errors.Is(err, ErrMissingURLMAC),
		errors.Is(err, ErrBadRanges),
		errors.Is(err, ErrKeyLength),
		errors.Is(err, ErrUnknownKey),
		errors.Is(err, ErrMissingKey):
		return ClassGrammar

	default:
		return ClassUnknown
	}
}
