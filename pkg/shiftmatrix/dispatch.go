package shiftmatrix

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Dispatcher moves events from the scan worker to the consumer goroutine.
// The worker enqueues and calls Notify; Run, on its own goroutine, drains
// the queue and calls the handler once per event.
type Dispatcher struct {
	queue   *EventQueue
	handler EventHandler
	wake    chan struct{}
	stats   *counters
	logger  *zap.Logger

	// delivering is set while the handler runs.
	delivering atomic.Bool
}

// NewDispatcher returns a dispatcher delivering events from queue to handler.
func NewDispatcher(queue *EventQueue, handler EventHandler, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		queue:   queue,
		handler: handler,
		wake:    make(chan struct{}, 1),
		stats:   &counters{},
		logger:  logger,
	}
}

// Notify signals that events are pending. It never blocks; wakes raised
// while one is already pending coalesce into it.
func (d *Dispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run delivers events until ctx is done, then delivers whatever is still
// queued and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-d.wake:
			d.drain()
		case <-ctx.Done():
			d.drain()
			return nil
		}
	}
}

func (d *Dispatcher) drain() {
	events := d.queue.Acquire()
	defer d.queue.Release()

	for _, e := range events {
		d.deliver(e)
	}
	d.stats.delivered.Add(uint64(len(events)))
}

// deliver keeps a panicking handler from taking the dispatcher down with it.
func (d *Dispatcher) deliver(e Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked", zap.Stringer("event", e), zap.Any("panic", r))
		}
	}()
	d.delivering.Store(true)
	defer d.delivering.Store(false)
	d.handler(e)
}

// Delivering reports whether a handler call is in progress.
func (d *Dispatcher) Delivering() bool {
	return d.delivering.Load()
}
