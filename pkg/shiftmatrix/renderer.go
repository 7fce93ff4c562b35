package shiftmatrix

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fkcurrie/omega-matrix-golang/pkg/gpio"
)

var (
	// ErrAlreadyStarted is returned by Start on a renderer that is running
	// or has been stopped.
	ErrAlreadyStarted = errors.New("shiftmatrix: renderer already started")
	// ErrNotStarted is returned by Stop on a renderer that is not running
	// or is already stopping.
	ErrNotStarted = errors.New("shiftmatrix: renderer not started")
)

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithPins sets the pin assignment. The default is DefaultPins.
func WithPins(p Pins) Option {
	return func(r *Renderer) { r.pins = p }
}

// WithFPS sets the target scan rate. Non-positive values keep DefaultFPS.
func WithFPS(fps int) Option {
	return func(r *Renderer) {
		if fps > 0 {
			r.period = time.Second / time.Duration(fps)
		}
	}
}

// WithClock replaces the system clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(r *Renderer) { r.clock = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// Renderer refreshes the panel from its frame buffer on a dedicated worker
// and delivers button events to a handler on a separate goroutine.
type Renderer struct {
	drv    gpio.Driver
	pins   Pins
	period time.Duration
	clock  Clock
	logger *zap.Logger

	buffer  FrameBuffer
	queue   EventQueue
	running atomic.Bool
	stats   counters

	mu         sync.Mutex
	state      state
	worker     *errgroup.Group
	dispatcher *Dispatcher
	// dispatched is closed once the dispatcher has made its final drain.
	dispatched chan struct{}
}

// New returns a renderer driving drv. The driver is not closed by the
// renderer.
func New(drv gpio.Driver, opts ...Option) *Renderer {
	r := &Renderer{
		drv:    drv,
		pins:   DefaultPins,
		period: time.Second / DefaultFPS,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = NewSystemClock()
	}
	return r
}

// Start configures the pins and launches the scan worker and the event
// dispatcher. handler is called on the dispatcher goroutine, never on the
// worker. Pin configuration errors are returned and leave the renderer
// startable again.
func (r *Renderer) Start(handler EventHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateIdle {
		return ErrAlreadyStarted
	}
	if handler == nil {
		handler = func(Event) {}
	}

	d := NewDispatcher(&r.queue, handler, r.logger)
	d.stats = &r.stats
	sc := &scanner{
		drv:     r.drv,
		pins:    r.pins,
		period:  r.period,
		clock:   r.clock,
		buffer:  &r.buffer,
		queue:   &r.queue,
		notify:  d.Notify,
		running: &r.running,
		stats:   &r.stats,
		logger:  r.logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan error, 1)
	dispatched := make(chan struct{})
	g := &errgroup.Group{}

	r.running.Store(true)
	g.Go(func() error {
		// the dispatcher outlives the worker by one final drain
		defer cancel()
		if err := sc.init(); err != nil {
			ready <- err
			return err
		}
		ready <- nil
		sc.run()
		return nil
	})
	go func() {
		defer close(dispatched)
		d.Run(ctx)
	}()

	if err := <-ready; err != nil {
		r.running.Store(false)
		g.Wait()
		<-dispatched
		r.logger.Error("failed to start renderer", zap.Error(err))
		return err
	}

	r.worker = g
	r.dispatcher = d
	r.dispatched = dispatched
	r.state = stateRunning
	r.logger.Info("renderer started",
		zap.Int("data", r.pins.Data), zap.Int("clock", r.pins.Clock), zap.Int("latch", r.pins.Latch))
	return nil
}

// Render submits f as the next frame. It copies f and returns without
// waiting for the frame to be displayed. A nil f blanks the panel. Before
// Start or after Stop it only updates the buffer.
func (r *Renderer) Render(f *Frame) {
	r.buffer.Submit(f)
}

// Clear submits an all-off frame.
func (r *Renderer) Clear() {
	r.buffer.Clear()
}

// Stop blanks the panel, waits for the worker to finish its pass and exit,
// then waits for the dispatcher to deliver any remaining events. Stop may
// be called from the event handler; it then returns without waiting for
// the dispatcher, and events still queued are delivered after the handler
// returns.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	if r.state != stateRunning {
		r.mu.Unlock()
		return ErrNotStarted
	}
	worker, d, dispatched := r.worker, r.dispatcher, r.dispatched
	r.state = stateStopped
	r.worker, r.dispatcher, r.dispatched = nil, nil, nil

	r.buffer.Clear()
	r.running.Store(false)
	r.mu.Unlock()

	// r.mu is released so a handler calling Stop meanwhile returns
	// ErrNotStarted instead of blocking the dispatcher
	err := worker.Wait()
	if !d.Delivering() {
		<-dispatched
	}

	st := r.stats.snapshot()
	r.logger.Info("renderer stopped",
		zap.Uint64("passes", st.Passes),
		zap.Uint64("overruns", st.Overruns),
		zap.Uint64("events", st.Events))
	return err
}

// Running reports whether the worker is active.
func (r *Renderer) Running() bool {
	return r.running.Load()
}

// Stats returns a snapshot of the renderer counters.
func (r *Renderer) Stats() Stats {
	return r.stats.snapshot()
}
