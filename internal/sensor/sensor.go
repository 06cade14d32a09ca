package sensor

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoReading is returned by Data before the first successful Read.
var ErrNoReading = errors.New("no reading acquired yet")

// Sensor is the capability every driver implements. Read performs one
// synchronous acquisition and refreshes the cached reading; Data formats
// the cached reading without touching hardware, so its output is stable
// between reads and always reflects the most recent successful Read.
type Sensor interface {
	// Prefix is the display label readings are tagged with.
	Prefix() string
	// Read acquires one sample from the peripheral and caches it.
	Read(ctx context.Context) error
	// Data returns the cached reading as a "<prefix>:<payload>" line.
	Data() (string, error)
	Close() error
}
