package shiftmatrix

import "sync/atomic"

// Stats is a snapshot of renderer counters.
type Stats struct {
	// Passes counts completed scan passes.
	Passes uint64
	// Overruns counts passes that exceeded the frame period.
	Overruns uint64
	// IOErrors counts passes in which at least one pin operation failed.
	IOErrors uint64
	// Events counts events enqueued by the worker.
	Events uint64
	// Delivered counts events handed to the handler.
	Delivered uint64
}

type counters struct {
	passes    atomic.Uint64
	overruns  atomic.Uint64
	ioErrors  atomic.Uint64
	events    atomic.Uint64
	delivered atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Passes:    c.passes.Load(),
		Overruns:  c.overruns.Load(),
		IOErrors:  c.ioErrors.Load(),
		Events:    c.events.Load(),
		Delivered: c.delivered.Load(),
	}
}
