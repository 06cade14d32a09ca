package sensor

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maximiliano2107/penguins/internal/hal"
)

func TestPotentiometerReadAndData(t *testing.T) {
	p := NewPotentiometer("P0", &hal.FakeAnalog{Samples: []int{512}})

	require.NoError(t, p.Read(context.Background()))
	data, err := p.Data()
	require.NoError(t, err)
	assert.Equal(t, "P0:512", data)
}

func TestSonarReadAndData(t *testing.T) {
	s := NewSonar("S0", &hal.FakeAnalog{Samples: []int{87}})

	require.NoError(t, s.Read(context.Background()))
	data, err := s.Data()
	require.NoError(t, err)
	assert.Equal(t, "S0:87", data)
}

func TestDataBeforeRead(t *testing.T) {
	p := NewPotentiometer("P0", &hal.FakeAnalog{Samples: []int{1}})

	_, err := p.Data()
	assert.ErrorIs(t, err, ErrNoReading)
}

func TestDataIsStableBetweenReads(t *testing.T) {
	p := NewPotentiometer("P0", &hal.FakeAnalog{Samples: []int{100, 200}})

	require.NoError(t, p.Read(context.Background()))
	first, err := p.Data()
	require.NoError(t, err)
	second, err := p.Data()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, p.Read(context.Background()))
	third, err := p.Data()
	require.NoError(t, err)
	assert.Equal(t, "P0:200", third)
}

func TestOutOfRangeSamplesClamp(t *testing.T) {
	p := NewPotentiometer("P0", &hal.FakeAnalog{Samples: []int{4000, -5}})

	require.NoError(t, p.Read(context.Background()))
	data, err := p.Data()
	require.NoError(t, err)
	assert.Equal(t, "P0:1023", data)

	require.NoError(t, p.Read(context.Background()))
	data, err = p.Data()
	require.NoError(t, err)
	assert.Equal(t, "P0:0", data)
}

func TestReadErrorKeepsLastValue(t *testing.T) {
	in := &hal.FakeAnalog{Samples: []int{300}}
	p := NewPotentiometer("P0", in)
	require.NoError(t, p.Read(context.Background()))

	in.Err = errors.New("adc gone")
	assert.Error(t, p.Read(context.Background()))

	data, err := p.Data()
	require.NoError(t, err)
	assert.Equal(t, "P0:300", data)
}

func TestCloseReleasesInput(t *testing.T) {
	in := &hal.FakeAnalog{Samples: []int{1}}
	p := NewPotentiometer("P0", in)
	require.NoError(t, p.Close())
	assert.True(t, in.Closed)
}
