package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionMiss indicates a selector matched nothing or the matched
	// element lacked the expected attribute.
	ErrExtractionMiss = errors.New("extraction miss")
	// ErrSessionLost indicates the browsing session can no longer navigate.
	// It is the only error that aborts a run from inside the enrichment loop.
	ErrSessionLost = errors.New("browsing session lost")
)

// FetchError reports a failed asset download.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NavigationError reports a page that failed to load.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// MissError names the field and selector behind an ErrExtractionMiss.
type MissError struct {
	Field    string
	Selector string
	Reason   string
}

func (e *MissError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Field, e.Selector, e.Reason)
}

// Is makes every MissError match ErrExtractionMiss.
func (e *MissError) Is(target error) bool {
	return target == ErrExtractionMiss
}

func missError(field, selector, reason string) error {
	return &MissError{Field: field, Selector: selector, Reason: reason}
}

// splitJoined flattens an errors.Join result into its parts.
func splitJoined(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
