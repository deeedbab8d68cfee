package shift

import "fmt"

// ErrGridNotFound is returned when a page has no shift grid at all, which is
// what the site serves to a logged-out session. It is deliberately distinct
// from a grid whose days all say "no shifts".
var ErrGridNotFound = &ParseError{Reason: "shift grid container not found"}

// ParseError describes markup the extractor could not make sense of.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// NormalizationError describes time text that could not be converted.
type NormalizationError struct {
	Input  string
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize time %q: %s", e.Input, e.Reason)
}

// FetchError is a failed request for one block of the fetch window. It is
// fatal to the current cycle.
type FetchError struct {
	URL        string
	Block      int
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch block %d (%s): unexpected status %d", e.Block, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch block %d (%s): %v", e.Block, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
