package pool

import (
	"errors"
	"fmt"

	"github.com/halcyon-labs/suipool/types"
)

var (
	// ErrInitialFetch means the owner's very first owned-objects page was
	// empty, so a pool could not be bootstrapped.
	ErrInitialFetch = errors.New("pool: initial fetch produced no objects")

	// ErrSplitExhausted means a split found no candidate objects at all
	// before the feed ran out.
	ErrSplitExhausted = errors.New("pool: split exhausted, no candidate objects")

	// ErrStrategyUnsatisfied means the split strategy's post-condition was
	// never reached before the feed ran out.
	ErrStrategyUnsatisfied = errors.New("pool: split strategy never satisfied")

	// ErrNoGasCoin means the pool holds no coin to pay for gas.
	ErrNoGasCoin = errors.New("pool: no gas coin")
)

// BackendObjectError reports a page entry whose payload carried an error cell
// instead of object data.
type BackendObjectError struct {
	Code     string
	ObjectID *types.ObjectID
}

func (e *BackendObjectError) Error() string {
	if e.ObjectID != nil {
		return fmt.Sprintf("pool: backend error %q for object %s", e.Code, e.ObjectID)
	}
	return fmt.Sprintf("pool: backend error %q in owned-objects page", e.Code)
}

// OwnershipError reports a transaction input that is neither owned by the
// pool's signer nor immutable.
type OwnershipError struct {
	ObjectID types.ObjectID
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("pool: input object %s is not owned by the pool and not immutable", e.ObjectID)
}

// MergeCollisionError reports an object present in both sides of a merge.
// Sibling pools are disjoint by construction, so hitting this means the
// partition invariant was broken earlier.
type MergeCollisionError struct {
	ObjectID types.ObjectID
}

func (e *MergeCollisionError) Error() string {
	return fmt.Sprintf("pool: merge collision on object %s", e.ObjectID)
}

// DryRunError reports a dry run whose effects status was not success. The
// transaction never reached submission.
type DryRunError struct {
	Reason string
}

func (e *DryRunError) Error() string {
	return fmt.Sprintf("pool: dry run failed: %s", e.Reason)
}

// ExecutionError reports a failed transaction submission. After this error
// the effects are unknown, so the pool's registry can no longer be trusted
// for further executions.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("pool: transaction submission failed: %v", e.Err)
}

// Unwrap returns the underlying submission error.
func (e *ExecutionError) Unwrap() error { return e.Err }
