package domain

import "errors"

var (
	// ErrMalformedQuery is returned when the user input holds no usable token.
	ErrMalformedQuery = errors.New("provided address must be a non-empty string")

	// ErrNoMatch means no stored URL survived matching. It is an outcome, not a fault.
	ErrNoMatch = errors.New("no matching url")

	// ErrMalformedURL is returned by the segmenter when no host can be extracted.
	ErrMalformedURL = errors.New("malformed url")

	// ErrRecordNotFound is returned by exact lookups on a missing URL.
	ErrRecordNotFound = errors.New("record not found")

	// ErrStoreUnavailable wraps every failure to open, read or write the record store.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
