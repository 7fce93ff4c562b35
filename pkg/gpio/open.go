package gpio

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendCdev   = "cdev"
	BackendSysfs  = "sysfs"
	BackendOmega2 = "omega2"
)

// Open returns the driver for backend. chip names the character device for
// the cdev backend and the sysfs root for the sysfs backend; it is ignored
// by omega2.
func Open(backend, chip string, logger *zap.Logger) (Driver, error) {
	switch backend {
	case "", BackendCdev:
		return NewCdevDriver(chip, logger), nil
	case BackendSysfs:
		return NewSysfsDriver(chip, logger), nil
	case BackendOmega2:
		return OpenOmega2(logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
