package cluster

import (
	"errors"
	"fmt"
)

// ValidationError indicates a malformed request (feature count, k, iteration cap).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientDataError indicates too few rows survived filtering for the chosen k.
type InsufficientDataError struct {
	Valid    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough valid numeric rows for chosen k/features: have %d, need at least %d", e.Valid, e.Required)
}

var (
	// ErrBusy is returned by Worker.Submit while another request is outstanding.
	ErrBusy = errors.New("cluster: a request is already in flight")
	// ErrClosed is returned once a Worker has been closed.
	ErrClosed = errors.New("cluster: worker closed")
)

// IsUserError reports whether err is meant to be shown to the user as-is
// so they can adjust inputs and resubmit.
func IsUserError(err error) bool {
	var ve *ValidationError
	var ie *InsufficientDataError
	return errors.As(err, &ve) || errors.As(err, &ie)
}
