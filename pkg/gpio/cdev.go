package gpio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/zap"
)

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

// CdevDriver drives pins through the GPIO character device, one requested
// line per pin.
type CdevDriver struct {
	chip   string
	logger *zap.Logger

	mu    sync.Mutex
	lines map[int]*gpiocdev.Line
}

// NewCdevDriver returns a driver for the named chip, or DefaultChip when
// chip is empty. Lines are requested lazily by SetDirection.
func NewCdevDriver(chip string, logger *zap.Logger) *CdevDriver {
	if chip == "" {
		chip = DefaultChip
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CdevDriver{
		chip:   chip,
		logger: logger,
		lines:  make(map[int]*gpiocdev.Line),
	}
}

// SetDirection requests the line on first use and reconfigures it after.
func (d *CdevDriver) SetDirection(pin int, dir Direction) error {
	if pin < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if line, ok := d.lines[pin]; ok {
		var err error
		if dir == Output {
			err = line.Reconfigure(gpiocdev.AsOutput(Low))
		} else {
			err = line.Reconfigure(gpiocdev.AsInput)
		}
		if err != nil {
			return fmt.Errorf("failed to reconfigure pin %d as %s: %w", pin, dir, err)
		}
		return nil
	}

	var (
		line *gpiocdev.Line
		err  error
	)
	if dir == Output {
		line, err = gpiocdev.RequestLine(d.chip, pin, gpiocdev.AsOutput(Low))
	} else {
		line, err = gpiocdev.RequestLine(d.chip, pin, gpiocdev.AsInput)
	}
	if err != nil {
		return fmt.Errorf("failed to request pin %d on %s: %w", pin, d.chip, err)
	}
	d.lines[pin] = line
	d.logger.Debug("requested gpio line",
		zap.String("chip", d.chip), zap.Int("pin", pin), zap.Stringer("direction", dir))
	return nil
}

// Write sets an output line.
func (d *CdevDriver) Write(pin int, level int) error {
	line, err := d.line(pin)
	if err != nil {
		return err
	}
	return line.SetValue(normalize(level))
}

// Read samples a line.
func (d *CdevDriver) Read(pin int) (int, error) {
	line, err := d.line(pin)
	if err != nil {
		return Low, err
	}
	v, err := line.Value()
	if err != nil {
		return Low, fmt.Errorf("failed to read pin %d: %w", pin, err)
	}
	return normalize(v), nil
}

// Close releases all requested lines.
func (d *CdevDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for pin, line := range d.lines {
		if err := line.Close(); err != nil {
			d.logger.Warn("failed to close line", zap.Int("pin", pin), zap.Error(err))
			errs = append(errs, err)
		}
	}
	d.lines = make(map[int]*gpiocdev.Line)
	return errors.Join(errs...)
}

func (d *CdevDriver) line(pin int) (*gpiocdev.Line, error) {
	d.mu.Lock()
	line, ok := d.lines[pin]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPinNotConfigured, pin)
	}
	return line, nil
}
