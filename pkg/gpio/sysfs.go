package gpio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// DefaultSysfsRoot is where the legacy kernel GPIO interface lives.
const DefaultSysfsRoot = "/sys/class/gpio"

// exportWait bounds how long SetDirection waits for udev to create the
// gpioN directory after an export.
const exportWait = 100 * time.Millisecond

// SysfsDriver drives pins through the legacy sysfs interface. Value files
// are kept open between calls so a write costs a single pwrite.
type SysfsDriver struct {
	root   string
	logger *zap.Logger

	mu   sync.Mutex
	pins map[int]*sysfsPin
}

type sysfsPin struct {
	dir   Direction
	value *os.File
}

// NewSysfsDriver returns a driver rooted at root, or DefaultSysfsRoot when
// root is empty.
func NewSysfsDriver(root string, logger *zap.Logger) *SysfsDriver {
	if root == "" {
		root = DefaultSysfsRoot
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SysfsDriver{
		root:   root,
		logger: logger,
		pins:   make(map[int]*sysfsPin),
	}
}

// SetDirection exports pin if needed and sets its direction.
func (d *SysfsDriver) SetDirection(pin int, dir Direction) error {
	if pin < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pins[pin]
	if !ok {
		if err := d.export(pin); err != nil {
			return err
		}
		p = &sysfsPin{}
	}

	if err := d.writeAttr(pin, "direction", dir.String()); err != nil {
		return err
	}

	if p.value == nil {
		f, err := os.OpenFile(d.pinPath(pin, "value"), os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("failed to open value for pin %d: %w", pin, err)
		}
		p.value = f
	}
	p.dir = dir
	d.pins[pin] = p

	if dir == Output {
		return writeLevel(p.value, Low)
	}
	return nil
}

// Write sets an output pin.
func (d *SysfsDriver) Write(pin int, level int) error {
	d.mu.Lock()
	p, ok := d.pins[pin]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrPinNotConfigured, pin)
	}
	return writeLevel(p.value, normalize(level))
}

// Read samples a pin.
func (d *SysfsDriver) Read(pin int) (int, error) {
	d.mu.Lock()
	p, ok := d.pins[pin]
	d.mu.Unlock()
	if !ok {
		return Low, fmt.Errorf("%w: %d", ErrPinNotConfigured, pin)
	}

	var buf [1]byte
	if _, err := p.value.ReadAt(buf[:], 0); err != nil {
		return Low, fmt.Errorf("failed to read value from pin %d: %w", pin, err)
	}
	if buf[0] == '1' {
		return High, nil
	}
	return Low, nil
}

// Close closes every value file and unexports the pins.
func (d *SysfsDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for pin, p := range d.pins {
		if p.value != nil {
			if err := p.value.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		// the pin might already be unexported by someone else
		if err := d.writeControl("unexport", pin); err != nil {
			d.logger.Warn("failed to unexport pin", zap.Int("pin", pin), zap.Error(err))
		}
		delete(d.pins, pin)
	}
	return errors.Join(errs...)
}

func (d *SysfsDriver) export(pin int) error {
	d.logger.Debug("exporting gpio pin", zap.Int("pin", pin))
	if err := d.writeControl("export", pin); err != nil {
		if !errors.Is(err, unix.EBUSY) {
			return fmt.Errorf("failed to export pin %d: %w", pin, err)
		}
		d.logger.Debug("pin already exported", zap.Int("pin", pin))
	}

	deadline := time.Now().Add(exportWait)
	for {
		if _, err := os.Stat(d.pinPath(pin, "direction")); err == nil {
			return nil
		} else if time.Now().After(deadline) {
			return fmt.Errorf("failed to export pin %d: %w", pin, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (d *SysfsDriver) writeControl(name string, pin int) error {
	f, err := os.OpenFile(filepath.Join(d.root, name), os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(strconv.Itoa(pin))
	return err
}

func (d *SysfsDriver) writeAttr(pin int, attr, value string) error {
	path := d.pinPath(pin, attr)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(value); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", value, path, err)
	}
	return nil
}

func (d *SysfsDriver) pinPath(pin int, attr string) string {
	return filepath.Join(d.root, "gpio"+strconv.Itoa(pin), attr)
}

var levelBytes = [2][]byte{[]byte("0"), []byte("1")}

func writeLevel(f *os.File, level int) error {
	if _, err := f.WriteAt(levelBytes[level], 0); err != nil {
		return fmt.Errorf("failed to write value to %s: %w", f.Name(), err)
	}
	return nil
}
