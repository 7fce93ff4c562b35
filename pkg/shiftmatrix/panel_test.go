package shiftmatrix

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/fkcurrie/omega-matrix-golang/pkg/gpio"
)

// panel simulates the shift register chain and the two buttons behind a
// gpio.Driver. It is safe for concurrent use so tests can inspect it while
// the worker runs.
type panel struct {
	mu   sync.Mutex
	pins Pins

	dirs   map[int]gpio.Direction
	levels map[int]int

	// bits is a ring of the last CellCount shifted data bits.
	bits [CellCount]byte
	pos  int

	visible Frame
	latches int

	// counters for the pass in progress, reset on latch
	dataWrites, dataOnes, clockPulses int
	// counters of the last completed pass
	lastDataWrites, lastDataOnes, lastClockPulses int

	dirErr   error
	writeErr error
	readErr  error
	// onWrite runs after every write, outside the lock.
	onWrite func()
}

func newPanel(pins Pins) *panel {
	return &panel{
		pins:   pins,
		dirs:   make(map[int]gpio.Direction),
		levels: make(map[int]int),
	}
}

func (p *panel) SetDirection(pin int, dir gpio.Direction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dirErr != nil {
		return p.dirErr
	}
	p.dirs[pin] = dir
	if dir == gpio.Output {
		p.levels[pin] = gpio.Low
	}
	return nil
}

func (p *panel) Write(pin int, level int) error {
	p.mu.Lock()
	if p.writeErr != nil {
		p.mu.Unlock()
		return p.writeErr
	}
	if level != 0 {
		level = gpio.High
	}
	prev := p.levels[pin]
	p.levels[pin] = level

	switch {
	case pin == p.pins.Data:
		p.dataWrites++
		p.dataOnes += level
	case pin == p.pins.Clock && prev == gpio.Low && level == gpio.High:
		p.clockPulses++
		p.bits[p.pos] = byte(p.levels[p.pins.Data])
		p.pos = (p.pos + 1) % CellCount
	case pin == p.pins.Latch && prev == gpio.Low && level == gpio.High:
		p.latch()
	}
	hook := p.onWrite
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

// latch copies the last CellCount shifted bits to the visible frame in scan
// order.
func (p *panel) latch() {
	k := p.pos
	for half := 0; half < Halves; half++ {
		for row := 0; row < Rows; row++ {
			for col := 0; col < Columns; col++ {
				p.visible[Index(half, row, col)] = p.bits[k]
				k = (k + 1) % CellCount
			}
		}
	}
	p.latches++
	p.lastDataWrites, p.lastDataOnes, p.lastClockPulses = p.dataWrites, p.dataOnes, p.clockPulses
	p.dataWrites, p.dataOnes, p.clockPulses = 0, 0, 0
}

func (p *panel) Read(pin int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return gpio.Low, p.readErr
	}
	return p.levels[pin], nil
}

func (p *panel) Close() error { return nil }

// resetPass drops counts from writes made outside a scan pass, such as
// the pin reset during init.
func (p *panel) resetPass() {
	p.mu.Lock()
	p.dataWrites, p.dataOnes, p.clockPulses = 0, 0, 0
	p.mu.Unlock()
}

// press sets the level seen on an input pin.
func (p *panel) press(pin, level int) {
	p.mu.Lock()
	p.levels[pin] = level
	p.mu.Unlock()
}

func (p *panel) snapshot() (Frame, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible, p.latches
}

func (p *panel) lastPass() (dataWrites, dataOnes, clockPulses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastDataWrites, p.lastDataOnes, p.lastClockPulses
}

// fakeClock only moves when slept on or advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
}
