package server

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Maximiliano2107/penguins/internal/config"
	"github.com/Maximiliano2107/penguins/internal/hal"
	"github.com/Maximiliano2107/penguins/internal/sensor/imu"
)

// probeIMU checks the inertial/magnetic breakout's identity registers on
// the configured bus and returns the names of the sub-peripherals found.
func probeIMU(opt *config.SensordOpt) ([]string, error) {
	bus, err := hal.OpenBus(opt.IMU.Bus)
	if err != nil {
		return nil, err
	}
	defer func() { _ = bus.Close() }()

	var found []string
	d := imu.New(opt.IMU.Prefix,
		hal.NewI2CDevice(bus, imu.L3GD20Addr),
		hal.NewI2CDevice(bus, imu.LSM303AccelAddr),
		hal.NewI2CDevice(bus, imu.LSM303MagAddr),
		1)
	if err := d.Init(); err != nil {
		return nil, errors.Wrap(err, "imu probe")
	}
	_ = d.Close()
	found = append(found, "l3gd20 gyroscope", "lsm303 accelerometer/compass")
	return found, nil
}

// listSerialPorts lists candidate serial output ports per platform.
func listSerialPorts() []string {
	var ports []string
	switch runtime.GOOS {
	case "windows":
		for i := 1; i <= 256; i++ {
			ports = append(ports, fmt.Sprintf("COM%d", i))
		}
	case "linux":
		files, err := os.ReadDir("/dev")
		if err != nil {
			log.Errorln("error reading /dev:", err)
		}
		for _, file := range files {
			if strings.Contains(file.Name(), "tty") && strings.Contains(file.Name(), "USB") {
				ports = append(ports, "/dev/"+file.Name())
			}
		}
	case "darwin":
		files, err := os.ReadDir("/dev")
		if err != nil {
			log.Errorln("error reading /dev:", err)
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if strings.HasPrefix(file.Name(), "tty.") {
				ports = append(ports, "/dev/"+file.Name())
			}
		}
	default:
		log.Warnf("unsupported platform: %s", runtime.GOOS)
	}
	return ports
}
