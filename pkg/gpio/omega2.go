package gpio

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fkcurrie/omega-matrix-golang/pkg/mmap"
)

// MT7688 (Onion Omega2) GPIO register block. Each register bank covers 32
// pins; bank n lives at offset+4*n.
const (
	Omega2RegBase  = 0x10000000
	Omega2RegSize  = 0x1000
	omega2CtrlOff  = 0x600
	omega2DataOff  = 0x620
	omega2DsetOff  = 0x630
	omega2DclrOff  = 0x640
	omega2MaxPin   = 95
	omega2BankSize = 32
)

// Registers is 32-bit register access over a mapped block.
type Registers interface {
	Read32(offset uintptr) uint32
	Write32(offset uintptr, value uint32)
}

// Omega2Driver bit-bangs pins through the memory-mapped GPIO registers. It
// is safe for concurrent use.
// Set and clear go through the DSET/DCLR registers so writes never need a
// read-modify-write of the data register.
type Omega2Driver struct {
	regs   Registers
	closer func() error
	logger *zap.Logger

	mu         sync.Mutex
	configured [omega2MaxPin + 1]bool
}

// OpenOmega2 maps the GPIO register block from /dev/mem.
func OpenOmega2(logger *zap.Logger) (*Omega2Driver, error) {
	mem, err := mmap.NewMemoryMap(Omega2RegBase, Omega2RegSize)
	if err != nil {
		return nil, fmt.Errorf("failed to map omega2 gpio registers: %w", err)
	}
	d := NewOmega2Driver(mem, logger)
	d.closer = mem.Close
	return d, nil
}

// NewOmega2Driver wraps an already mapped register block.
func NewOmega2Driver(regs Registers, logger *zap.Logger) *Omega2Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Omega2Driver{regs: regs, logger: logger}
}

func (d *Omega2Driver) SetDirection(pin int, dir Direction) error {
	if pin < 0 || pin > omega2MaxPin {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	off, mask := bank(pin)

	d.mu.Lock()
	defer d.mu.Unlock()

	ctrl := d.regs.Read32(omega2CtrlOff + off)
	if dir == Output {
		d.regs.Write32(omega2DclrOff+off, mask)
		ctrl |= mask
	} else {
		ctrl &^= mask
	}
	d.regs.Write32(omega2CtrlOff+off, ctrl)
	d.configured[pin] = true
	d.logger.Debug("configured omega2 pin", zap.Int("pin", pin), zap.Stringer("direction", dir))
	return nil
}

func (d *Omega2Driver) Write(pin int, level int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pin < 0 || pin > omega2MaxPin || !d.configured[pin] {
		return fmt.Errorf("%w: %d", ErrPinNotConfigured, pin)
	}
	off, mask := bank(pin)
	if level != 0 {
		d.regs.Write32(omega2DsetOff+off, mask)
	} else {
		d.regs.Write32(omega2DclrOff+off, mask)
	}
	return nil
}

func (d *Omega2Driver) Read(pin int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pin < 0 || pin > omega2MaxPin || !d.configured[pin] {
		return Low, fmt.Errorf("%w: %d", ErrPinNotConfigured, pin)
	}
	off, mask := bank(pin)
	if d.regs.Read32(omega2DataOff+off)&mask != 0 {
		return High, nil
	}
	return Low, nil
}

// Close returns every configured output to input and unmaps the registers.
func (d *Omega2Driver) Close() error {
	d.mu.Lock()
	for pin, ok := range d.configured {
		if !ok {
			continue
		}
		off, mask := bank(pin)
		d.regs.Write32(omega2CtrlOff+off, d.regs.Read32(omega2CtrlOff+off)&^mask)
		d.configured[pin] = false
	}
	d.mu.Unlock()

	if d.closer != nil {
		return d.closer()
	}
	return nil
}

func bank(pin int) (uintptr, uint32) {
	return uintptr(pin/omega2BankSize) * 4, 1 << uint(pin%omega2BankSize)
}
