// Package worker runs best-effort side tasks (history writes, telemetry)
// detached from the request that produced them.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Default pool settings.
const (
	DefaultPoolSize    = 16
	DefaultTaskTimeout = 2 * time.Second
)

// Task is a unit of best-effort work. Its error is logged, never propagated.
type Task func(ctx context.Context) error

// Dispatcher runs tasks on a bounded goroutine pool. Tasks outlive the
// submitting request but keep its values (logger, request id) and get their
// own deadline. When the pool is saturated new tasks are dropped.
type Dispatcher struct {
	pool     *ants.Pool
	timeout  time.Duration
	failures *prometheus.CounterVec
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// New creates a dispatcher. failures is a counter vec with label "task"; it may be nil.
func New(size int, timeout time.Duration, failures *prometheus.CounterVec, logger *zap.Logger) (*Dispatcher, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Dispatcher{
		pool:     pool,
		timeout:  timeout,
		failures: failures,
		logger:   logger,
	}, nil
}

// Go schedules task under name. It never blocks the caller.
func (d *Dispatcher) Go(ctx context.Context, name string, task Task) {
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	err := d.pool.Submit(func() {
		defer d.wg.Done()

		tctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		if err := task(tctx); err != nil {
			d.fail(name, err)
		}
	})
	if err != nil {
		d.wg.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			err = fmt.Errorf("pool saturated: %w", err)
		}
		d.fail(name, err)
	}
}

func (d *Dispatcher) fail(name string, err error) {
	if d.failures != nil {
		d.failures.WithLabelValues(name).Inc()
	}
	d.logger.Warn("Background task failed", zap.String("task", name), zap.Error(err))
}

// Close waits for in-flight tasks until ctx is done, then releases the pool.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("drain background tasks: %w", ctx.Err())
	}
	d.pool.Release()
	return err
}
