package tokenfilter

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two non-upstream error kinds this package can
// produce. Upstream read failures are returned unchanged and never wrapped
// in a FilterError.
var (
	// ErrBrokenReplayChain is reported when the exposed context cannot
	// find the expected child frame while draining a replay queue. This
	// indicates a bug in the shadow-stack bookkeeping, not user error.
	ErrBrokenReplayChain = errors.New("tokenfilter: broken replay chain")

	// ErrMissingBufferedToken is reported when buffered lookahead expects
	// to find a queued replay token at a buffer root and finds none.
	ErrMissingBufferedToken = errors.New("tokenfilter: missing buffered token at buffer root")

	// ErrNameOverrideUnsupported is returned by any attempt to override
	// the current property name while a FilteringCursor is active; the
	// shadow frame's name is always authoritative during filtering.
	ErrNameOverrideUnsupported = errors.New("tokenfilter: overriding the current name is not supported during filtering")
)

// FilterError wraps an internal invariant violation (spec error kind 2)
// with the operation that detected it, so log lines and error messages
// read naturally while remaining unwrappable via errors.Is/errors.As.
type FilterError struct {
	Op  string
	Err error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("tokenfilter: %s: %v", e.Op, e.Err)
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// internalErrorf builds a *FilterError wrapping sentinel with additional
// context, following the teacher's fmt.Errorf("...: %w", err) style.
func internalErrorf(op string, sentinel error) error {
	return &FilterError{Op: op, Err: sentinel}
}
