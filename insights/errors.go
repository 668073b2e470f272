package insights

import (
	"errors"
	"fmt"
)

// UpstreamFetchError means one entity collection failed to fetch. It is
// caught inside the pipeline: the collection degrades to empty and the run
// continues with whatever succeeded.
type UpstreamFetchError struct {
	Entity string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("upstream fetch failed for %s: %v", e.Entity, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// StoreUnavailableError means persistence failed after a successful
// computation. The computed bundle is still returned to the caller; only the
// durable write was lost.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("insight store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// ErrInsufficientData marks a run where every entity collection came back
// empty. Logged only; a brand-new tenant is a valid state and still gets an
// all-zero bundle.
var ErrInsufficientData = errors.New("no usable records in any collection")
