package hal

import (
	"context"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

// The ADS1015 stores its 12-bit conversion left-aligned in a signed
// 16-bit register and the ads1x15 driver reports it unshifted, so
// positive full scale is 0x7ff0. Shifting by 5 lands that on 1023, the
// top of the 10-bit range the analog drivers expect.
const ads1015Shift = 5

const adcMax = 1023

var channels = [...]ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

type ads1015Reader struct {
	pin analog.PinADC
}

// NewADS1015Reader binds one single-ended channel of an ADS1015 ADC on
// bus as an AnalogReader.
func NewADS1015Reader(bus i2c.Bus, channel int) (AnalogReader, error) {
	if channel < 0 || channel >= len(channels) {
		return nil, errors.Errorf("analog channel %d out of range 0..%d", channel, len(channels)-1)
	}
	adc, err := ads1x15.NewADS1015(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, errors.Wrap(err, "ads1015 setup")
	}
	pin, err := adc.PinForChannel(channels[channel], 3300*physic.MilliVolt, 32*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return nil, errors.Wrapf(err, "ads1015 channel %d", channel)
	}
	return &ads1015Reader{pin: pin}, nil
}

func (r *ads1015Reader) Read(_ context.Context) (int, error) {
	sample, err := r.pin.Read()
	if err != nil {
		return 0, errors.Wrap(err, "adc read")
	}
	return CountsFromRaw(sample.Raw), nil
}

func (r *ads1015Reader) Close() error {
	return r.pin.Halt()
}

// CountsFromRaw converts a raw ADS1015 sample into 10-bit counts.
// Negative samples (a floating differential input) clamp to zero.
func CountsFromRaw(raw int32) int {
	counts := int(raw >> ads1015Shift)
	if counts < 0 {
		return 0
	}
	if counts > adcMax {
		return adcMax
	}
	return counts
}
