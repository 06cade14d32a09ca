package server

import (
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Maximiliano2107/penguins/internal/config"
	"github.com/Maximiliano2107/penguins/internal/hal"
	"github.com/Maximiliano2107/penguins/internal/output"
	"github.com/Maximiliano2107/penguins/internal/sensor"
	"github.com/Maximiliano2107/penguins/internal/sensor/imu"
)

// HardwareRegistry builds the configured sensors against real hardware:
// analog channels behind the ADS1015 ADC and, when enabled, the
// inertial/magnetic breakout, all sharing one I2C bus. The bus is closed
// together with the emitter when the manager stops.
func HardwareRegistry(opt *config.SensordOpt) ([]sensor.Sensor, output.Emitter, error) {
	bus, err := hal.OpenBus(opt.IMU.Bus)
	if err != nil {
		return nil, nil, err
	}

	fail := func(sensors []sensor.Sensor, err error) ([]sensor.Sensor, output.Emitter, error) {
		for _, s := range sensors {
			if cerr := s.Close(); cerr != nil {
				log.Warnln(cerr)
			}
		}
		if cerr := bus.Close(); cerr != nil {
			log.Warnln(cerr)
		}
		return nil, nil, err
	}

	var sensors []sensor.Sensor
	for _, a := range opt.Sensors {
		in, err := hal.NewADS1015Reader(bus, a.Channel)
		if err != nil {
			return fail(sensors, errors.Wrapf(err, "sensor %s", a.Prefix))
		}
		switch a.Type {
		case config.TypePotentiometer:
			sensors = append(sensors, sensor.NewPotentiometer(a.Prefix, in))
		case config.TypeSonar:
			sensors = append(sensors, sensor.NewSonar(a.Prefix, in))
		default:
			return fail(sensors, errors.Errorf("unknown sensor type %q", a.Type))
		}
	}

	if opt.IMU.Enabled {
		d := imu.New(opt.IMU.Prefix,
			hal.NewI2CDevice(bus, imu.L3GD20Addr),
			hal.NewI2CDevice(bus, imu.LSM303AccelAddr),
			hal.NewI2CDevice(bus, imu.LSM303MagAddr),
			opt.IMU.InitRetries)
		// Deferred init keeps a dead or absent breakout from taking the
		// analog sensors down with it: the poll loop reports it as a
		// fault line until it responds.
		sensors = append(sensors, imu.NewDeferred(d))
	}

	emitter, err := newEmitter(&opt.Output)
	if err != nil {
		return fail(sensors, err)
	}
	return sensors, &emitterWithBus{Emitter: emitter, bus: bus}, nil
}

func newEmitter(opt *config.OutputOpt) (output.Emitter, error) {
	switch opt.Mode {
	case "serial":
		return output.NewSerial(opt.Port, opt.Baud)
	default:
		return output.NewStdout(), nil
	}
}

type emitterWithBus struct {
	output.Emitter
	bus io.Closer
}

func (e *emitterWithBus) Close() error {
	err := e.Emitter.Close()
	if cerr := e.bus.Close(); err == nil {
		err = cerr
	}
	return err
}
