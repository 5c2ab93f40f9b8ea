package executor

import (
	"sync/atomic"

	"github.com/halcyon-labs/suipool/pool"
)

// Worker status values. Transitions are atomic test-and-set so two
// concurrent Execute calls can never claim the same worker.
const (
	statusAvailable int32 = iota
	statusBusy
)

// Worker is one execution slot of the service: a pool plus its availability
// flag. A worker executes at most one transaction at a time.
type Worker struct {
	pool   *pool.Pool
	status int32
}

func newWorker(p *pool.Pool) *Worker {
	return &Worker{pool: p, status: statusAvailable}
}

// Pool returns the worker's pool.
func (w *Worker) Pool() *pool.Pool { return w.pool }

// Busy reports whether the worker currently executes a transaction.
func (w *Worker) Busy() bool {
	return atomic.LoadInt32(&w.status) == statusBusy
}

// tryAcquire atomically claims the worker. It returns false when the worker
// is already busy.
func (w *Worker) tryAcquire() bool {
	return atomic.CompareAndSwapInt32(&w.status, statusAvailable, statusBusy)
}

// release returns the worker to the available state.
func (w *Worker) release() {
	atomic.StoreInt32(&w.status, statusAvailable)
}
