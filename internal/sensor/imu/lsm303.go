package imu

import (
	"github.com/pkg/errors"

	"github.com/Maximiliano2107/penguins/internal/hal"
)

// LSM303DLHC combined accelerometer and magnetometer. The two functions
// answer at separate I2C addresses on the same bus.
const (
	LSM303AccelAddr = 0x19
	LSM303MagAddr   = 0x1e

	accelRegCtrl1 = 0x20
	accelRegOutXL = 0x28

	// 100 Hz data rate, all axes enabled.
	accelCtrl1Enable = 0x57

	accelAutoIncrement = 0x80

	// 12-bit samples arrive left-aligned in 16 bits, 1 mg per digit at
	// the default +/-2 g full scale.
	accelGPerCount       = 0.001
	gravityMetersPerSec2 = 9.80665

	magRegCRA  = 0x00
	magRegCRB  = 0x01
	magRegMR   = 0x02
	magRegOutX = 0x03
	magRegIRA  = 0x0a

	// 15 Hz output rate, +/-1.3 gauss gain, continuous conversion.
	magCRA15Hz      = 0x10
	magCRBGain13    = 0x20
	magMRContinuous = 0x00

	magIDResponse = 0x48 // IRA_REG_M always answers 'H'

	magCountsPerGaussXY = 1100.0
	magCountsPerGaussZ  = 980.0
)

type lsm303 struct {
	accel hal.RegisterBus
	mag   hal.RegisterBus
}

func (l *lsm303) probe() error {
	var id [1]byte
	if err := l.mag.ReadRegister(magRegIRA, id[:]); err != nil {
		return errors.Wrap(err, "accelerometer/compass not responding")
	}
	if id[0] != magIDResponse {
		return errors.Errorf("accelerometer/compass: unexpected device id %#x", id[0])
	}
	return nil
}

func (l *lsm303) wake() error {
	if err := l.accel.WriteRegister(accelRegCtrl1, accelCtrl1Enable); err != nil {
		return errors.Wrap(err, "accelerometer wake")
	}
	if err := l.mag.WriteRegister(magRegCRA, magCRA15Hz); err != nil {
		return errors.Wrap(err, "compass rate setup")
	}
	if err := l.mag.WriteRegister(magRegCRB, magCRBGain13); err != nil {
		return errors.Wrap(err, "compass gain setup")
	}
	if err := l.mag.WriteRegister(magRegMR, magMRContinuous); err != nil {
		return errors.Wrap(err, "compass mode setup")
	}
	return nil
}

// readAccel returns linear acceleration in m/s^2.
func (l *lsm303) readAccel() ([3]float64, error) {
	var buf [6]byte
	if err := l.accel.ReadRegister(accelRegOutXL|accelAutoIncrement, buf[:]); err != nil {
		return [3]float64{}, errors.Wrap(err, "accelerometer read")
	}
	var acc [3]float64
	for i := 0; i < 3; i++ {
		raw := int16(uint16(buf[2*i])|uint16(buf[2*i+1])<<8) >> 4
		acc[i] = float64(raw) * accelGPerCount * gravityMetersPerSec2
	}
	return acc, nil
}

// readMag returns the magnetic field vector in gauss. The chip emits the
// axes high byte first in X, Z, Y order.
func (l *lsm303) readMag() ([3]float64, error) {
	var buf [6]byte
	if err := l.mag.ReadRegister(magRegOutX, buf[:]); err != nil {
		return [3]float64{}, errors.Wrap(err, "compass read")
	}
	x := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	z := int16(uint16(buf[2])<<8 | uint16(buf[3]))
	y := int16(uint16(buf[4])<<8 | uint16(buf[5]))
	return [3]float64{
		float64(x) / magCountsPerGaussXY,
		float64(y) / magCountsPerGaussXY,
		float64(z) / magCountsPerGaussZ,
	}, nil
}
