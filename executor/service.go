// Package executor runs transactions from one signer in parallel without
// equivocation. A service owns a main reservoir pool and a set of worker
// pools split off it; each Execute call claims a free worker, runs the
// transaction on that worker's objects only, and returns the worker when
// done. Failing workers are merged back into the main pool and replaced.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/halcyon-labs/suipool/log"
	"github.com/halcyon-labs/suipool/metrics"
	"github.com/halcyon-labs/suipool/params"
	"github.com/halcyon-labs/suipool/pool"
	"github.com/halcyon-labs/suipool/signer"
	"github.com/halcyon-labs/suipool/suiclient"
	"github.com/halcyon-labs/suipool/txbuilder"
)

// ErrWorkerNotFound is returned when removing a worker the service does not
// track. Hitting it means service bookkeeping is broken.
var ErrWorkerNotFound = errors.New("executor: worker not found")

// ErrNoWorkerAvailable records that an attempt timed out waiting for a free
// worker. Surfaces only as the cause of a RetriesExhaustedError.
var ErrNoWorkerAvailable = errors.New("executor: no worker available")

// RetriesExhaustedError is the final error of an Execute call whose retry
// budget ran out. Last carries the most recent underlying failure.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("executor: retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap returns the last underlying failure.
func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

var (
	executeMeter   = metrics.NewMeter("executor/executions")
	retryCounter   = metrics.NewCounter("executor/retries")
	workerGauge    = metrics.NewGauge("executor/workers")
	acquireTimeout = metrics.NewCounter("executor/acquire/timeouts")
)

// Config holds the tunables of a Service.
type Config struct {
	// WorkerAcquireTimeout bounds how long Execute waits for a free worker
	// before splitting a new one off the main pool.
	WorkerAcquireTimeout time.Duration
	// Retries is the default retry budget of Execute.
	Retries int
}

// DefaultConfig is the default service configuration.
var DefaultConfig = Config{
	WorkerAcquireTimeout: params.DefaultWorkerAcquireTimeout,
	Retries:              params.DefaultExecuteRetries,
}

// Service dispatches transactions across worker pools. All methods are safe
// for concurrent use; Execute in particular is meant to be called from many
// goroutines at once.
type Service struct {
	cfg    Config
	client suiclient.Client

	mu      sync.Mutex // guards main and workers
	main    *pool.Pool
	workers []*Worker

	notify chan struct{} // wakes one worker-acquisition waiter
}

// New creates a service for the signer, bootstrapping the main pool from the
// signer's on-chain holdings. No workers exist yet; the first Execute call
// splits one off.
func New(ctx context.Context, s *signer.Signer, client suiclient.Client, cfg *Config) (*Service, error) {
	c := DefaultConfig
	if cfg != nil {
		c = *cfg
		if c.WorkerAcquireTimeout < 0 {
			c.WorkerAcquireTimeout = 0
		}
	}
	main, err := pool.NewFull(ctx, s, client)
	if err != nil {
		return nil, err
	}
	log.Info("executor service initialized", "address", s.Address(),
		"objects", len(main.Objects()), "acquireTimeout", c.WorkerAcquireTimeout)
	return &Service{
		cfg:    c,
		client: client,
		main:   main,
		notify: make(chan struct{}, 1),
	}, nil
}

// MainPool returns the reservoir pool.
func (s *Service) MainPool() *pool.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.main
}

// WorkerCount returns the number of worker pools, busy or not.
func (s *Service) WorkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}

// ExecuteOptions customizes one Execute call.
type ExecuteOptions struct {
	// Strategy produces the split strategy used when a new worker must be
	// created. Nil means pool.NewDefaultStrategy. A fresh strategy is
	// instantiated per split; strategies are single-use.
	Strategy pool.StrategyFactory
	// Retries is the retry budget; negative means the service default.
	Retries int
}

// Execute runs tx on a free worker pool with the service's default options.
func (s *Service) Execute(ctx context.Context, tx *txbuilder.Transaction) (*suiclient.TransactionResult, error) {
	return s.ExecuteWithOptions(ctx, tx, ExecuteOptions{Retries: -1})
}

// ExecuteWithOptions runs tx on a free worker pool. When no worker frees up
// within the acquisition timeout, a new worker is split off the main pool at
// the cost of one retry. Workers whose execution fails are merged back into
// the main pool and the transaction is retried on a fresh worker; validation
// failures (ownership, missing gas coin) surface immediately.
func (s *Service) ExecuteWithOptions(ctx context.Context, tx *txbuilder.Transaction, opts ExecuteOptions) (*suiclient.TransactionResult, error) {
	newStrategy := opts.Strategy
	if newStrategy == nil {
		newStrategy = func() pool.SplitStrategy { return pool.NewDefaultStrategy() }
	}
	retries := opts.Retries
	if retries < 0 {
		retries = s.cfg.Retries
	}

	attempts := retries + 1
	var lastErr error
	for attempts > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := s.acquireWorker(ctx, s.cfg.WorkerAcquireTimeout)
		if w == nil {
			acquireTimeout.Inc(1)
			if _, err := s.AddWorker(ctx, newStrategy()); err != nil {
				lastErr = err
				log.Warn("worker creation failed", "err", err)
			} else {
				lastErr = ErrNoWorkerAvailable
			}
			attempts--
			retryCounter.Inc(1)
			continue
		}

		res, err := w.pool.SignAndExecute(ctx, tx)
		if err != nil {
			if isValidationError(err) {
				// The transaction itself is bad; the worker is untainted.
				w.release()
				s.notifyOne()
				return nil, err
			}
			// Execution-path failure: the worker's registry can no longer
			// be trusted, fold it back into the main pool.
			if rmErr := s.RemoveWorker(w); rmErr != nil {
				log.Error("failed to remove worker", "pool", w.pool.ID(), "err", rmErr)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			attempts--
			retryCounter.Inc(1)
			continue
		}
		if res.Effects != nil && !res.Effects.Status.Success() {
			if rmErr := s.RemoveWorker(w); rmErr != nil {
				log.Error("failed to remove worker", "pool", w.pool.ID(), "err", rmErr)
			}
			lastErr = fmt.Errorf("executor: effects reported %s: %s",
				res.Effects.Status.Status, res.Effects.Status.Error)
			attempts--
			retryCounter.Inc(1)
			continue
		}

		w.release()
		s.notifyOne()
		executeMeter.Mark(1)
		return res, nil
	}
	return nil, &RetriesExhaustedError{Attempts: retries + 1, Last: lastErr}
}

// isValidationError reports whether err rejects the transaction itself
// rather than the execution attempt.
func isValidationError(err error) bool {
	var ownership *pool.OwnershipError
	return errors.As(err, &ownership) || errors.Is(err, pool.ErrNoGasCoin)
}

// acquireWorker returns an available worker, atomically marked busy, or nil
// if none frees up within timeout. A zero timeout polls once and returns
// immediately.
func (s *Service) acquireWorker(ctx context.Context, timeout time.Duration) *Worker {
	if w := s.tryAcquireAny(); w != nil {
		return w
	}
	if timeout <= 0 {
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-s.notify:
			if w := s.tryAcquireAny(); w != nil {
				return w
			}
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Service) tryAcquireAny() *Worker {
	s.mu.Lock()
	snapshot := append([]*Worker(nil), s.workers...)
	s.mu.Unlock()
	for _, w := range snapshot {
		if w.tryAcquire() {
			return w
		}
	}
	return nil
}

// notifyOne wakes one goroutine parked in acquireWorker, if any.
func (s *Service) notifyOne() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// AddWorker splits a new worker pool off the main pool and registers it as
// available.
func (s *Service) AddWorker(ctx context.Context, strategy pool.SplitStrategy) (*Worker, error) {
	if strategy == nil {
		strategy = pool.NewDefaultStrategy()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.main.Split(ctx, strategy)
	if err != nil {
		return nil, err
	}
	w := newWorker(p)
	s.workers = append(s.workers, w)
	workerGauge.Update(int64(len(s.workers)))
	log.Info("worker added", "pool", p.ID(), "workers", len(s.workers))
	s.notifyOneLocked()
	return w, nil
}

func (s *Service) notifyOneLocked() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// RemoveWorker unregisters w and merges its pool back into the main pool.
// The caller must hold the worker busy; a removed worker is never handed
// out again.
func (s *Service) RemoveWorker(w *Worker) error {
	s.mu.Lock()
	idx := -1
	for i, cand := range s.workers {
		if cand == w {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrWorkerNotFound
	}
	s.workers = append(s.workers[:idx], s.workers[idx+1:]...)
	workerGauge.Update(int64(len(s.workers)))
	main := s.main
	s.mu.Unlock()

	err := main.Merge(w.pool)
	log.Info("worker removed", "pool", w.pool.ID(), "workers", s.WorkerCount(), "mergeErr", err)
	return err
}
