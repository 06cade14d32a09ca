package sensor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Maximiliano2107/penguins/internal/hal"
)

const adcMax = 1023

// analogSensor caches the last raw count read from an analog input.
// Out-of-range samples are clamped into the converter's 0..1023 range.
type analogSensor struct {
	prefix string
	in     hal.AnalogReader
	last   int
	valid  bool
}

func (s *analogSensor) Prefix() string {
	return s.prefix
}

func (s *analogSensor) Read(ctx context.Context) error {
	raw, err := s.in.Read(ctx)
	if err != nil {
		return errors.Wrapf(err, "%s: analog read", s.prefix)
	}
	if raw < 0 {
		raw = 0
	}
	if raw > adcMax {
		raw = adcMax
	}
	s.last = raw
	s.valid = true
	return nil
}

func (s *analogSensor) Data() (string, error) {
	if !s.valid {
		return "", ErrNoReading
	}
	return fmt.Sprintf("%s:%d", s.prefix, s.last), nil
}

func (s *analogSensor) Close() error {
	return s.in.Close()
}

// Potentiometer reads a raw ADC count from an analog input.
type Potentiometer struct {
	analogSensor
}

func NewPotentiometer(prefix string, in hal.AnalogReader) *Potentiometer {
	return &Potentiometer{analogSensor{prefix: prefix, in: in}}
}

// Sonar reads an ultrasonic rangefinder whose analog output is already
// scaled to distance units by the hardware, so the raw count is reported
// without conversion.
type Sonar struct {
	analogSensor
}

func NewSonar(prefix string, in hal.AnalogReader) *Sonar {
	return &Sonar{analogSensor{prefix: prefix, in: in}}
}
