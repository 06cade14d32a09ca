package imu

import (
	"github.com/pkg/errors"

	"github.com/Maximiliano2107/penguins/internal/hal"
)

// L3GD20 three-axis gyroscope. Register map from the ST datasheet; the
// default I2C address is 0x6B (SDO high).
const (
	L3GD20Addr = 0x6b

	gyroRegWhoAmI = 0x0f
	gyroRegCtrl1  = 0x20
	gyroRegOutXL  = 0x28

	// WHO_AM_I responses for the L3GD20 and the L3GD20H revision.
	gyroIDL3GD20  = 0xd4
	gyroIDL3GD20H = 0xd7

	// Normal mode, X/Y/Z enabled.
	gyroCtrl1Enable = 0x0f

	// MSB of the register address enables sub-address auto-increment.
	gyroAutoIncrement = 0x80

	// 8.75 mdps per digit at the default 250 dps full scale.
	gyroDegPerSecPerCount = 0.00875
)

type l3gd20 struct {
	bus hal.RegisterBus
}

func (g *l3gd20) probe() error {
	var id [1]byte
	if err := g.bus.ReadRegister(gyroRegWhoAmI, id[:]); err != nil {
		return errors.Wrap(err, "gyroscope not responding")
	}
	if id[0] != gyroIDL3GD20 && id[0] != gyroIDL3GD20H {
		return errors.Errorf("gyroscope: unexpected device id %#x", id[0])
	}
	return nil
}

func (g *l3gd20) wake() error {
	if err := g.bus.WriteRegister(gyroRegCtrl1, gyroCtrl1Enable); err != nil {
		return errors.Wrap(err, "gyroscope wake")
	}
	return nil
}

// read returns the angular rate vector in degrees per second.
func (g *l3gd20) read() ([3]float64, error) {
	var buf [6]byte
	if err := g.bus.ReadRegister(gyroRegOutXL|gyroAutoIncrement, buf[:]); err != nil {
		return [3]float64{}, errors.Wrap(err, "gyroscope read")
	}
	var rate [3]float64
	for i := 0; i < 3; i++ {
		raw := int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
		rate[i] = float64(raw) * gyroDegPerSecPerCount
	}
	return rate, nil
}
