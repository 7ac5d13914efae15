package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse reports a payload without the expected line/field structure.
	ErrParse = errors.New("malformed contribution payload")

	// ErrEmptyGrid reports a grid with no cells at all.
	ErrEmptyGrid = errors.New("contribution grid is empty")
)

// FetchError is returned when the contributions endpoint could not be read:
// either the transport failed (Err set) or it answered with a status other
// than 200 (StatusCode set).
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("fetch contributions: status %d: %v", e.StatusCode, e.Err)
		}
		return fmt.Sprintf("fetch contributions: %v", e.Err)
	}
	return fmt.Sprintf("fetch contributions: status %d", e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }
