package hal

import (
	"context"

	"github.com/pkg/errors"
)

// FakeAnalog is an AnalogReader for tests: it replays Samples in order,
// repeating the last one, or fails with Err when set.
type FakeAnalog struct {
	Samples []int
	Err     error
	Closed  bool

	next int
}

func (f *FakeAnalog) Read(_ context.Context) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("fake analog: no samples scripted")
	}
	s := f.Samples[f.next]
	if f.next < len(f.Samples)-1 {
		f.next++
	}
	return s, nil
}

func (f *FakeAnalog) Close() error {
	f.Closed = true
	return nil
}

// FakeRegisterBus is an in-memory RegisterBus for tests. Registers maps a
// register address to the bytes a read from it returns; reads of n bytes
// take the first n. FailReads/FailWrites make the next that many
// operations fail, which exercises transient-fault retry paths.
type FakeRegisterBus struct {
	Registers  map[byte][]byte
	Written    map[byte]byte
	FailReads  int
	FailWrites int
}

func NewFakeRegisterBus() *FakeRegisterBus {
	return &FakeRegisterBus{
		Registers: make(map[byte][]byte),
		Written:   make(map[byte]byte),
	}
}

func (f *FakeRegisterBus) ReadRegister(reg byte, buf []byte) error {
	if f.FailReads > 0 {
		f.FailReads--
		return errors.New("fake bus: read nack")
	}
	data, ok := f.Registers[reg]
	if !ok || len(data) < len(buf) {
		return errors.Errorf("fake bus: no data at register %#x", reg)
	}
	copy(buf, data)
	return nil
}

func (f *FakeRegisterBus) WriteRegister(reg, value byte) error {
	if f.FailWrites > 0 {
		f.FailWrites--
		return errors.New("fake bus: write nack")
	}
	f.Written[reg] = value
	return nil
}
