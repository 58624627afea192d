package codes

import "errors"

var (
	// ErrEmptyCorpus is returned when no code could be read.
	ErrEmptyCorpus = errors.New("missing data: no codes read")

	// ErrMessageTooShort is returned when the common code length leaves no room for a checksum.
	ErrMessageTooShort = errors.New("message length too short")

	// ErrPatternTooLong is returned for sync patterns wider than the 64 bit search window.
	ErrPatternTooLong = errors.New("sync pattern too long")

	// ErrInvalidCode is returned when a single code contains no hex digits.
	ErrInvalidCode = errors.New("invalid code")
)
