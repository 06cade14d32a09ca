// Package output carries formatted sensor lines to their consumer: a
// writer (normally stdout) or a serial port, one line per reading.
package output

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// Emitter transmits one formatted reading per call.
type Emitter interface {
	Emit(line string) error
	Close() error
}

type writerEmitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter emits newline-terminated lines on w.
func NewWriter(w io.Writer) Emitter {
	return &writerEmitter{w: w}
}

// NewStdout emits newline-terminated lines on standard output.
func NewStdout() Emitter {
	return NewWriter(os.Stdout)
}

func (e *writerEmitter) Emit(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := io.WriteString(e.w, line+"\n"); err != nil {
		return errors.Wrap(err, "emit")
	}
	return nil
}

func (e *writerEmitter) Close() error {
	if c, ok := e.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type serialEmitter struct {
	port *serial.Port
}

// NewSerial emits CRLF-terminated lines on a serial port, the framing
// the original controller used on its wire.
func NewSerial(portName string, baud int) (Emitter, error) {
	c := &serial.Config{Name: portName, Baud: baud}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, errors.Wrapf(err, "open serial port %s", portName)
	}
	return &serialEmitter{port: port}, nil
}

func (e *serialEmitter) Emit(line string) error {
	if _, err := e.port.Write([]byte(line + "\r\n")); err != nil {
		return errors.Wrap(err, "serial emit")
	}
	return nil
}

func (e *serialEmitter) Close() error {
	return e.port.Close()
}
