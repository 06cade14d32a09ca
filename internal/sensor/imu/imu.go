// Package imu drives the inertial/magnetic breakout: an L3GD20
// gyroscope and an LSM303DLHC accelerometer/compass sharing one I2C bus.
// The device must be initialized with Init before the first Read; both
// sub-peripherals are probed by identity register and woken there.
package imu

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Maximiliano2107/penguins/internal/hal"
	"github.com/Maximiliano2107/penguins/internal/sensor"
)

// ErrNotInitialized is returned by Read and Data before a successful Init.
var ErrNotInitialized = errors.New("imu: not initialized, call Init first")

const DefaultInitRetries = 3

const initRetryDelay = 50 * time.Millisecond

// Device aggregates the gyroscope and accelerometer/compass behind the
// sensor capability. It keeps the last acceleration (m/s^2), magnetic
// field (gauss) and angular rate (deg/s) vectors, overwritten wholesale
// on every Read.
type Device struct {
	prefix   string
	gyro     l3gd20
	accelMag lsm303
	retries  int

	accel [3]float64
	mag   [3]float64
	rate  [3]float64

	initialized bool
	haveReading bool
}

// New builds a Device from the register buses of its three endpoints.
// initRetries bounds the Init attempts used to ride out transient bus
// failures; values below one fall back to DefaultInitRetries.
func New(prefix string, gyro, accel, mag hal.RegisterBus, initRetries int) *Device {
	if initRetries < 1 {
		initRetries = DefaultInitRetries
	}
	return &Device{
		prefix:   prefix,
		gyro:     l3gd20{bus: gyro},
		accelMag: lsm303{accel: accel, mag: mag},
		retries:  initRetries,
	}
}

// Init probes both sub-peripherals and brings them out of standby.
// Transient bus failures are retried up to the configured bound; the
// returned error names the sub-peripheral that did not respond.
func (d *Device) Init() error {
	var err error
	for attempt := 1; attempt <= d.retries; attempt++ {
		if err = d.initOnce(); err == nil {
			d.initialized = true
			return nil
		}
		log.Debugf("imu %s: init attempt %d/%d: %v", d.prefix, attempt, d.retries, err)
		if attempt < d.retries {
			time.Sleep(initRetryDelay)
		}
	}
	return errors.Wrapf(err, "%s: init failed after %d attempts", d.prefix, d.retries)
}

func (d *Device) initOnce() error {
	if err := d.gyro.probe(); err != nil {
		return err
	}
	if err := d.accelMag.probe(); err != nil {
		return err
	}
	if err := d.gyro.wake(); err != nil {
		return err
	}
	return d.accelMag.wake()
}

func (d *Device) Prefix() string {
	return d.prefix
}

// Read queries both sub-peripherals once and replaces all three cached
// vectors. The previous vectors are kept if any query fails.
func (d *Device) Read(_ context.Context) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	accel, err := d.accelMag.readAccel()
	if err != nil {
		return errors.Wrap(err, d.prefix)
	}
	mag, err := d.accelMag.readMag()
	if err != nil {
		return errors.Wrap(err, d.prefix)
	}
	rate, err := d.gyro.read()
	if err != nil {
		return errors.Wrap(err, d.prefix)
	}
	d.accel, d.mag, d.rate = accel, mag, rate
	d.haveReading = true
	return nil
}

// Data formats the cached vectors as nine comma-separated numbers in
// fixed order: acceleration x,y,z, magnetic field x,y,z, angular rate
// x,y,z.
func (d *Device) Data() (string, error) {
	if !d.initialized {
		return "", ErrNotInitialized
	}
	if !d.haveReading {
		return "", sensor.ErrNoReading
	}
	return fmt.Sprintf("%s:%g,%g,%g,%g,%g,%g,%g,%g,%g", d.prefix,
		d.accel[0], d.accel[1], d.accel[2],
		d.mag[0], d.mag[1], d.mag[2],
		d.rate[0], d.rate[1], d.rate[2]), nil
}

// Deferred wraps a Device so that Init runs from the poll loop on the
// first Read rather than when the sensor set is built. A breakout that
// is absent or not yet responding then degrades to per-cycle fault
// lines for this one sensor, and it comes up on its own once the
// hardware answers.
type Deferred struct {
	*Device
}

func NewDeferred(d *Device) *Deferred {
	return &Deferred{Device: d}
}

func (s *Deferred) Read(ctx context.Context) error {
	if !s.initialized {
		if err := s.Init(); err != nil {
			return err
		}
	}
	return s.Device.Read(ctx)
}

func (d *Device) Close() error {
	// Drop the gyro back into power-down; leave the compass running, it
	// has no meaningful standby.
	if !d.initialized {
		return nil
	}
	d.initialized = false
	if err := d.gyro.bus.WriteRegister(gyroRegCtrl1, 0); err != nil {
		return errors.Wrapf(err, "%s: gyroscope power down", d.prefix)
	}
	return nil
}
