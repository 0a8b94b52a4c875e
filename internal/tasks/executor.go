// Package tasks runs work that must outlive the HTTP request that triggered
// it: a deferred interaction is acknowledged immediately and its real work
// (retrying jobs, building the audit report) continues here.
//
// The Executor is a fixed worker pool fed by a bounded queue. Each task runs
// under its own timeout, inside a panic boundary, with a zerolog logger that
// carries the task name and a generated task id. Shutdown stops intake and
// drains queued work until its context expires.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-job-monitor/internal/observability"
)

var (
	// ErrFull is returned by Submit when the queue has no free slot.
	ErrFull = errors.New("tasks: queue full")
	// ErrClosed is returned by Submit after Shutdown has begun.
	ErrClosed = errors.New("tasks: executor closed")
)

// Func is a unit of background work. The context carries the task deadline
// and a task-scoped logger (zerolog.Ctx).
type Func func(ctx context.Context) error

// Config sizes the pool.
type Config struct {
	Workers   int
	QueueSize int
	// Timeout bounds each task. Interaction tokens expire after 15 minutes,
	// so edits attempted later would fail anyway.
	Timeout time.Duration
}

type task struct {
	id   string
	name string
	fn   Func
}

// Executor is a bounded worker pool. The zero value is not usable; call New.
type Executor struct {
	cfg    Config
	queue  chan task
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	base   context.Context
	cancel context.CancelFunc
	start  sync.Once
}

// New returns an Executor with defaults applied for non-positive sizes.
func New(cfg Config) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Minute
	}
	return &Executor{cfg: cfg, queue: make(chan task, cfg.QueueSize)}
}

// Start launches the workers. Tasks derive from ctx with cancellation
// stripped, so an ending request never cancels its detached work; Shutdown
// cancels them when its deadline passes. Calling Start more than once is a
// no-op.
func (e *Executor) Start(ctx context.Context) {
	e.start.Do(func() {
		e.base, e.cancel = context.WithCancel(context.WithoutCancel(ctx))
		for i := 0; i < e.cfg.Workers; i++ {
			e.wg.Add(1)
			go e.worker()
		}
	})
}

// Submit queues fn under name without blocking.
func (e *Executor) Submit(name string, fn Func) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	t := task{id: uuid.NewString(), name: name, fn: fn}
	select {
	case e.queue <- t:
		log.Debug().Str("task", name).Str("task_id", t.id).Msg("task queued")
		return nil
	default:
		return ErrFull
	}
}

// Shutdown stops accepting tasks and waits for queued and running ones to
// finish. If ctx ends first, running tasks are canceled and ctx.Err() is
// returned once the workers exit.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()

	e.Start(context.Background()) // drain even if never started

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		return nil
	case <-ctx.Done():
		e.cancel()
		<-done
		return ctx.Err()
	}
}

func (e *Executor) worker() {
	defer e.wg.Done()
	for t := range e.queue {
		e.run(t)
	}
}

func (e *Executor) run(t task) {
	lg := log.With().Str("task", t.name).Str("task_id", t.id).Logger()
	ctx, cancel := context.WithTimeout(e.base, e.cfg.Timeout)
	defer cancel()
	ctx = lg.WithContext(ctx)

	start := time.Now()
	result := "ok"
	err := safeRun(ctx, t.fn)
	var pe *panicError
	switch {
	case errors.As(err, &pe):
		result = "panic"
		lg.Error().Str("stack", pe.stack).Interface("panic", pe.value).Msg("task panicked")
	case err != nil:
		result = "error"
		lg.Error().Err(err).Dur("took", time.Since(start)).Msg("task failed")
	default:
		lg.Info().Dur("took", time.Since(start)).Msg("task done")
	}
	observability.Tasks.WithLabelValues(t.name, result).Inc()
}

type panicError struct {
	value any
	stack string
}

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }

func safeRun(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: string(debug.Stack())}
		}
	}()
	return fn(ctx)
}

// Logger returns the task-scoped logger stored in ctx, or the global logger.
func Logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
