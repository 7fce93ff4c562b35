package gpio

import (
	"errors"
	"fmt"
)

// Direction is the configured direction of a pin.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "in"
	case Output:
		return "out"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Logic levels accepted by Write and returned by Read.
const (
	Low  = 0
	High = 1
)

var (
	// ErrPinNotConfigured is returned when a pin is written or read before
	// SetDirection was called for it.
	ErrPinNotConfigured = errors.New("gpio: pin not configured")
	// ErrInvalidPin is returned for pin numbers the backend cannot address.
	ErrInvalidPin = errors.New("gpio: invalid pin")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("gpio: unknown backend")
)

// Driver is the narrow pin capability the matrix renderer needs. Calls are
// made from a single goroutine at a time; implementations need not be safe
// for concurrent use unless they say so.
type Driver interface {
	// SetDirection configures pin as an input or an output. Outputs start low.
	SetDirection(pin int, dir Direction) error
	// Write drives an output pin. Any nonzero level is treated as High.
	Write(pin int, level int) error
	// Read samples an input pin and returns Low or High.
	Read(pin int) (int, error)
	// Close releases every pin the driver configured.
	Close() error
}

func normalize(level int) int {
	if level != 0 {
		return High
	}
	return Low
}
