package source

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable is wrapped by every FetchError.
var ErrSourceUnavailable = errors.New("unable to fetch event data from source")

// AttemptError is a failure of a single fetch attempt. It is retried.
type AttemptError struct {
	Attempt uint
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d: %v", e.Attempt, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// FetchError is returned once every attempt has failed.
type FetchError struct {
	Attempts uint
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrSourceUnavailable.Error(), e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}
