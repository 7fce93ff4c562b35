package shiftmatrix

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fkcurrie/omega-matrix-golang/pkg/gpio"
)

// Pins assigns panel and button roles to driver pin numbers.
type Pins struct {
	Data         int
	Clock        int
	Latch        int
	RedButton    int
	YellowButton int
}

// DefaultPins is the wiring of the reference board.
var DefaultPins = Pins{
	Data:         0,
	Clock:        1,
	Latch:        2,
	RedButton:    19,
	YellowButton: 18,
}

// DefaultFPS is the target scan rate.
const DefaultFPS = 60

type button struct {
	pin      int
	down, up Event
	level    int
}

// scanner is the real-time worker: it shifts the current frame into the
// panel, latches it, samples the buttons and paces itself to the period.
type scanner struct {
	drv     gpio.Driver
	pins    Pins
	period  time.Duration
	clock   Clock
	buffer  *FrameBuffer
	queue   *EventQueue
	notify  func()
	running *atomic.Bool
	stats   *counters
	logger  *zap.Logger

	buttons [2]button
	// err is the first pin error of the current pass.
	err error
}

// init configures the pins and resets the latched button levels.
func (s *scanner) init() error {
	for _, pin := range []int{s.pins.Latch, s.pins.Clock, s.pins.Data} {
		if err := s.drv.SetDirection(pin, gpio.Output); err != nil {
			return fmt.Errorf("failed to configure output pin %d: %w", pin, err)
		}
	}
	for _, pin := range []int{s.pins.RedButton, s.pins.YellowButton} {
		if err := s.drv.SetDirection(pin, gpio.Input); err != nil {
			return fmt.Errorf("failed to configure input pin %d: %w", pin, err)
		}
	}
	for _, pin := range []int{s.pins.Latch, s.pins.Clock, s.pins.Data} {
		if err := s.drv.Write(pin, gpio.Low); err != nil {
			return fmt.Errorf("failed to reset pin %d: %w", pin, err)
		}
	}

	s.buttons = [2]button{
		{pin: s.pins.RedButton, down: RedDown, up: RedUp},
		{pin: s.pins.YellowButton, down: YellowDown, up: YellowUp},
	}
	return nil
}

// run loops until a pass observes the running flag cleared.
func (s *scanner) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s.logger.Info("scan loop started", zap.Duration("period", s.period))
	for s.pass() {
	}
	s.logger.Info("scan loop stopped", zap.Uint64("passes", s.stats.passes.Load()))
}

// pass performs one frame pass and reports whether the loop should go on.
//
// The running flag is sampled before the frame is acquired: Stop clears
// the buffer before clearing the flag, so the pass that observes the flag
// cleared has scanned the blank frame.
func (s *scanner) pass() bool {
	start := s.clock.Now()
	running := s.running.Load()
	s.err = nil

	f := s.buffer.Acquire()
	s.shift(f)
	s.buffer.Release()
	s.pulse(s.pins.Latch)
	s.stats.passes.Add(1)

	if !running {
		s.report()
		return false
	}

	s.poll()
	s.report()

	elapsed := s.clock.Now() - start
	if remaining := s.period - elapsed; remaining > 0 {
		s.clock.Sleep(remaining)
	} else {
		s.stats.overruns.Add(1)
		if ce := s.logger.Check(zap.DebugLevel, "frame overrun"); ce != nil {
			ce.Write(zap.Duration("elapsed", elapsed), zap.Duration("period", s.period))
		}
	}
	return true
}

// shift clocks every cell into the shift register chain, half by half.
func (s *scanner) shift(f *Frame) {
	for half := 0; half < Halves; half++ {
		for row := 0; row < Rows; row++ {
			for col := 0; col < Columns; col++ {
				s.write(s.pins.Data, int(f[Index(half, row, col)]))
				s.pulse(s.pins.Clock)
			}
		}
	}
}

// poll samples both buttons and queues an event per level change.
func (s *scanner) poll() {
	var levels [2]int
	for i := range s.buttons {
		v, err := s.drv.Read(s.buttons[i].pin)
		if err != nil {
			s.fail(err)
			levels[i] = s.buttons[i].level
			continue
		}
		levels[i] = v
	}

	for i := range s.buttons {
		b := &s.buttons[i]
		if levels[i] == b.level {
			continue
		}
		b.level = levels[i]
		if b.level != 0 {
			s.queue.Enqueue(b.down)
		} else {
			s.queue.Enqueue(b.up)
		}
		s.stats.events.Add(1)
		s.notify()
	}
}

func (s *scanner) pulse(pin int) {
	s.write(pin, gpio.High)
	s.write(pin, gpio.Low)
}

func (s *scanner) write(pin, level int) {
	if err := s.drv.Write(pin, level); err != nil {
		s.fail(err)
	}
}

func (s *scanner) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *scanner) report() {
	if s.err == nil {
		return
	}
	s.stats.ioErrors.Add(1)
	s.logger.Warn("pin operation failed during pass", zap.Error(s.err))
}
