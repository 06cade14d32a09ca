package imu

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maximiliano2107/penguins/internal/hal"
	"github.com/Maximiliano2107/penguins/internal/sensor"
)

// fakeBuses wires up fake register buses answering like the real
// breakout: gyro at rest, acceleration (0, 0, 9.80665) m/s^2, field
// (0.3, 0.1, 0.5) gauss.
func fakeBuses() (gyro, accel, mag *hal.FakeRegisterBus) {
	gyro = hal.NewFakeRegisterBus()
	gyro.Registers[gyroRegWhoAmI] = []byte{gyroIDL3GD20}
	gyro.Registers[gyroRegOutXL|gyroAutoIncrement] = []byte{0, 0, 0, 0, 0, 0}

	accel = hal.NewFakeRegisterBus()
	// 1000 counts on Z, left-aligned 12-bit little-endian.
	accel.Registers[accelRegOutXL|accelAutoIncrement] = []byte{0, 0, 0, 0, 0x80, 0x3e}

	mag = hal.NewFakeRegisterBus()
	mag.Registers[magRegIRA] = []byte{magIDResponse}
	// Big-endian X, Z, Y: 330, 490, 110 counts.
	mag.Registers[magRegOutX] = []byte{0x01, 0x4a, 0x01, 0xea, 0x00, 0x6e}
	return gyro, accel, mag
}

func newTestDevice() (*Device, *hal.FakeRegisterBus, *hal.FakeRegisterBus, *hal.FakeRegisterBus) {
	gyro, accel, mag := fakeBuses()
	return New("IM", gyro, accel, mag, 1), gyro, accel, mag
}

func TestUseBeforeInitFails(t *testing.T) {
	d, _, _, _ := newTestDevice()

	assert.ErrorIs(t, d.Read(context.Background()), ErrNotInitialized)
	_, err := d.Data()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitChecksGyroIdentity(t *testing.T) {
	d, gyro, _, _ := newTestDevice()
	gyro.Registers[gyroRegWhoAmI] = []byte{0x00}

	err := d.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gyroscope")
}

func TestInitChecksCompassIdentity(t *testing.T) {
	d, _, _, mag := newTestDevice()
	mag.Registers[magRegIRA] = []byte{0x00}

	err := d.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accelerometer/compass")
}

func TestInitRetriesTransientBusFailure(t *testing.T) {
	gyro, accel, mag := fakeBuses()
	gyro.FailReads = 2
	d := New("IM", gyro, accel, mag, 3)

	require.NoError(t, d.Init())
}

func TestInitGivesUpAfterBoundedRetries(t *testing.T) {
	gyro, accel, mag := fakeBuses()
	gyro.FailReads = 10
	d := New("IM", gyro, accel, mag, 2)

	assert.Error(t, d.Init())
}

func TestInitConfiguresBothPeripherals(t *testing.T) {
	d, gyro, accel, mag := newTestDevice()
	require.NoError(t, d.Init())

	assert.Equal(t, byte(gyroCtrl1Enable), gyro.Written[gyroRegCtrl1])
	assert.Equal(t, byte(accelCtrl1Enable), accel.Written[accelRegCtrl1])
	assert.Equal(t, byte(magMRContinuous), mag.Written[magRegMR])
}

func TestDataBeforeFirstRead(t *testing.T) {
	d, _, _, _ := newTestDevice()
	require.NoError(t, d.Init())

	_, err := d.Data()
	assert.ErrorIs(t, err, sensor.ErrNoReading)
}

func TestReadAndDataNineFieldsInOrder(t *testing.T) {
	d, _, _, _ := newTestDevice()
	require.NoError(t, d.Init())
	require.NoError(t, d.Read(context.Background()))

	data, err := d.Data()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(data, "IM:"))

	fields := strings.Split(strings.TrimPrefix(data, "IM:"), ",")
	require.Len(t, fields, 9)
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		require.NoError(t, err, "field %d", i)
		values[i] = v
	}

	// ax, ay, az, mx, my, mz, gx, gy, gz
	assert.InDelta(t, 0, values[0], 1e-9)
	assert.InDelta(t, 0, values[1], 1e-9)
	assert.InDelta(t, 9.80665, values[2], 1e-4)
	assert.InDelta(t, 0.3, values[3], 1e-4)
	assert.InDelta(t, 0.1, values[4], 1e-4)
	assert.InDelta(t, 0.5, values[5], 1e-4)
	assert.InDelta(t, 0, values[6], 1e-9)
	assert.InDelta(t, 0, values[7], 1e-9)
	assert.InDelta(t, 0, values[8], 1e-9)
}

func TestDataStableBetweenReads(t *testing.T) {
	d, _, _, _ := newTestDevice()
	require.NoError(t, d.Init())
	require.NoError(t, d.Read(context.Background()))

	first, err := d.Data()
	require.NoError(t, err)
	second, err := d.Data()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReadFailureKeepsLastVectors(t *testing.T) {
	d, gyro, _, _ := newTestDevice()
	require.NoError(t, d.Init())
	require.NoError(t, d.Read(context.Background()))
	before, err := d.Data()
	require.NoError(t, err)

	gyro.FailReads = 1
	assert.Error(t, d.Read(context.Background()))

	after, err := d.Data()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeferredInitRunsOnRead(t *testing.T) {
	gyro, accel, mag := fakeBuses()
	gyro.Registers[gyroRegWhoAmI] = []byte{0x00}
	d := NewDeferred(New("IM", gyro, accel, mag, 1))

	// Hardware not answering: every Read reports the init failure.
	err := d.Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gyroscope")
	_, err = d.Data()
	assert.ErrorIs(t, err, ErrNotInitialized)

	// Once the breakout responds, the next Read brings it up.
	gyro.Registers[gyroRegWhoAmI] = []byte{gyroIDL3GD20}
	require.NoError(t, d.Read(context.Background()))
	data, err := d.Data()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "IM:"))
}

func TestClosePowersDownGyro(t *testing.T) {
	d, gyro, _, _ := newTestDevice()
	require.NoError(t, d.Init())
	require.NoError(t, d.Close())

	assert.Equal(t, byte(0), gyro.Written[gyroRegCtrl1])
	assert.ErrorIs(t, d.Read(context.Background()), ErrNotInitialized)
}
