// Package dispatch runs request work on a fixed pool of workers, each job holding one
// pooled database connection for its whole duration.
package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/cppla/bbscontroller/apperr"
	"github.com/cppla/bbscontroller/utils"
)

// Options sizes a Dispatcher. Zero values pick defaults.
type Options struct {
	// Workers is the number of goroutines executing jobs; defaults to runtime.NumCPU().
	Workers int
	// MaxConns bounds jobs holding or waiting for a connection; defaults to 20.
	MaxConns int
	// Timeout, when positive, becomes the deadline of every job's context.
	Timeout time.Duration
}

// Job is the work done for one request on a pinned connection.
type Job func(tx *gorm.DB) error

type job struct {
	ctx  context.Context
	fn   Job
	done chan error
}

// Dispatcher hands jobs to its workers. A job that cannot get a connection slot right away
// is rejected instead of queued.
type Dispatcher struct {
	db      *gorm.DB
	jobs    chan job
	slots   *semaphore.Weighted
	timeout time.Duration

	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	served   atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// New starts the workers. Call Close to stop them.
func New(db *gorm.DB, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = 20
	}

	d := &Dispatcher{
		db:      db,
		jobs:    make(chan job, maxConns),
		slots:   semaphore.NewWeighted(int64(maxConns)),
		timeout: opts.Timeout,
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	utils.Sugar.Infof("dispatcher started with %d workers and %d connection slots", workers, maxConns)
	return d
}

// Do runs fn on a worker and waits for its result. Once a job has been handed to a worker
// it runs to completion; ctx only bounds the wait to hand it over.
func (d *Dispatcher) Do(ctx context.Context, fn Job) error {
	if !d.slots.TryAcquire(1) {
		d.rejected.Inc()
		return apperr.New(apperr.ConnectionError, "dispatch: no free connection")
	}

	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case <-d.quit:
		d.slots.Release(1)
		return apperr.New(apperr.ServerError, "dispatch: closed")
	default:
	}
	select {
	case d.jobs <- j:
	case <-d.quit:
		d.slots.Release(1)
		return apperr.New(apperr.ServerError, "dispatch: closed")
	case <-ctx.Done():
		d.slots.Release(1)
		return apperr.Wrap(apperr.ConnectionError, "dispatch", ctx.Err())
	}

	select {
	case err := <-j.done:
		return err
	case <-d.stopped:
		select {
		case err := <-j.done:
			return err
		default:
			return apperr.New(apperr.ServerError, "dispatch: closed before the job ran")
		}
	}
}

// Run is Do for jobs that produce a value.
func Run[T any](ctx context.Context, d *Dispatcher, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var out T
	err := d.Do(ctx, func(tx *gorm.DB) error {
		v, err := fn(tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		case j := <-d.jobs:
			j.done <- d.execute(j)
		}
	}
}

func (d *Dispatcher) execute(j job) (err error) {
	defer d.slots.Release(1)
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.Error("dispatch: job panicked", zap.Any("panic", r))
			err = apperr.Wrap(apperr.ServerError, "dispatch", fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			d.failed.Inc()
		} else {
			d.served.Inc()
		}
	}()

	ctx := context.WithoutCancel(j.ctx)
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	pinned := false
	err = d.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		pinned = true
		// The pinned handle is not a fresh session; start one so conditions never pile up.
		return j.fn(tx.Session(&gorm.Session{NewDB: true}))
	})
	if err != nil && !pinned {
		return apperr.Wrap(apperr.ConnectionError, "dispatch: acquire connection", err)
	}
	return err
}

// Stats is a snapshot of the dispatcher counters.
type Stats struct {
	Served   int64 `json:"served"`
	Failed   int64 `json:"failed"`
	Rejected int64 `json:"rejected"`
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Served:   d.served.Load(),
		Failed:   d.failed.Load(),
		Rejected: d.rejected.Load(),
	}
}

// Close stops the workers after their current job. Jobs still queued fail with a server error.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.quit)
		d.wg.Wait()
		close(d.stopped)
	})
}
