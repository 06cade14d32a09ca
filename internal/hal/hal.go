package hal

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// AnalogReader yields one raw sample from an analog input channel.
// Samples are reported in the 10-bit 0..1023 range the drivers expect.
type AnalogReader interface {
	Read(ctx context.Context) (int, error)
	Close() error
}

// RegisterBus is register-level access to a single device on a shared
// two-wire bus. Implementations must not be used from more than one
// goroutine at a time; the poll loop is the only caller.
type RegisterBus interface {
	ReadRegister(reg byte, buf []byte) error
	WriteRegister(reg byte, value byte) error
}

var hostOnce sync.Once
var hostErr error

// Init brings up the periph host drivers. Safe to call more than once.
func Init() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

// OpenBus opens an I2C bus by name. An empty name selects the first
// available bus.
func OpenBus(name string) (i2c.BusCloser, error) {
	if err := Init(); err != nil {
		return nil, errors.Wrap(err, "host init")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c bus %q", name)
	}
	return bus, nil
}

type i2cDevice struct {
	dev i2c.Dev
}

// NewI2CDevice wraps one address on bus as a RegisterBus.
func NewI2CDevice(bus i2c.Bus, addr uint16) RegisterBus {
	return &i2cDevice{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

func (d *i2cDevice) ReadRegister(reg byte, buf []byte) error {
	return d.dev.Tx([]byte{reg}, buf)
}

func (d *i2cDevice) WriteRegister(reg, value byte) error {
	return d.dev.Tx([]byte{reg, value}, nil)
}
