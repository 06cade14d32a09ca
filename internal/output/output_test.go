package output

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterEmitterFraming(t *testing.T) {
	var buf bytes.Buffer
	e := NewWriter(&buf)

	require.NoError(t, e.Emit("P0:512"))
	require.NoError(t, e.Emit("S0:87"))

	assert.Equal(t, "P0:512\nS0:87\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("pipe gone")
}

func TestWriterEmitterError(t *testing.T) {
	e := NewWriter(failingWriter{})
	assert.Error(t, e.Emit("P0:1"))
}

func TestWriterEmitterCloseWithoutCloser(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, NewWriter(&buf).Close())
}
