// Package poll implements the controller loop: it owns one instance of
// each enabled sensor and, every tick, reads them sequentially in
// registration order and emits one formatted line per sensor.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Maximiliano2107/penguins/internal/config"
	"github.com/Maximiliano2107/penguins/internal/manager"
	"github.com/Maximiliano2107/penguins/internal/output"
	"github.com/Maximiliano2107/penguins/internal/sensor"
)

// Registry builds the sensor set and the output emitter from the
// configuration. Start owns everything it returns and closes it on Stop.
type Registry func(opt *config.SensordOpt) ([]sensor.Sensor, output.Emitter, error)

type pollManager struct {
	opt      *config.SensordOpt
	clk      clock.Clock
	registry Registry

	sensors []sensor.Sensor
	emitter output.Emitter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	lock   sync.RWMutex

	readings        map[string]string
	manuallyStopped bool
	faulted         bool
}

// NewManager builds a poll manager around a sensor registry. clk may be
// nil, in which case the wall clock is used.
func NewManager(opt *config.SensordOpt, clk clock.Clock, registry Registry) manager.Manager {
	if clk == nil {
		clk = clock.New()
	}
	return &pollManager{
		opt:      opt,
		clk:      clk,
		registry: registry,
		readings: make(map[string]string),
	}
}

func (m *pollManager) Running() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.sensors != nil && !m.faulted
}

func (m *pollManager) Faulted() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.faulted
}

func (m *pollManager) ManuallyStopped() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.manuallyStopped
}

func (m *pollManager) Readings() map[string]string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	res := make(map[string]string, len(m.readings))
	for k, v := range m.readings {
		res[k] = v
	}
	return res
}

// Start builds the sensors from the registry and launches the loop.
func (m *pollManager) Start() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.manuallyStopped = false

	if m.sensors == nil {
		sensors, emitter, err := m.registry(m.opt)
		if err != nil {
			return errors.Wrap(err, "build sensor registry")
		}
		if len(sensors) == 0 {
			closeEmitter(emitter)
			return errors.New("no sensors configured")
		}
		m.sensors = sensors
		m.emitter = emitter
		m.faulted = false
		m.ctx, m.cancel = context.WithCancel(context.Background())
		m.wg.Add(1)
		go m.pollAll()
		log.Infof("manager started with %d sensors", len(sensors))
	}
	return nil
}

// Stop halts the loop and closes every sensor and the emitter.
func (m *pollManager) Stop() error {
	m.lock.Lock()
	if m.sensors == nil {
		m.manuallyStopped = true
		m.lock.Unlock()
		return nil
	}
	m.cancel()
	m.lock.Unlock()
	// The loop takes the lock per cycle; wait for it outside.
	m.wg.Wait()

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.sensors == nil {
		// lost the race with a concurrent Stop
		m.manuallyStopped = true
		return nil
	}
	var firstErr error
	for _, s := range m.sensors {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	closeEmitter(m.emitter)
	m.sensors = nil
	m.emitter = nil
	m.faulted = false
	m.manuallyStopped = true
	m.readings = make(map[string]string)
	log.Infof("manager stopped")
	return firstErr
}

func (m *pollManager) Restart() error {
	if err := m.Stop(); err != nil {
		return err
	}
	return m.Start()
}

func (m *pollManager) pollAll() {
	defer m.wg.Done()
	interval := time.Duration(m.opt.Poll.IntervalMs) * time.Millisecond
	ticker := m.clk.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if !m.pollOnce() {
				return
			}
		}
	}
}

// pollOnce reads every sensor in registration order. A sensor fault is
// local: the loop reports it and moves on. An emitter fault marks the
// whole manager faulted and stops the loop; returns false in that case.
func (m *pollManager) pollOnce() bool {
	for _, s := range m.sensors {
		line := m.readOne(s)

		m.lock.Lock()
		m.readings[s.Prefix()] = line
		m.lock.Unlock()

		if err := m.emitter.Emit(line); err != nil {
			log.Errorln("output channel failed:", err)
			m.lock.Lock()
			m.faulted = true
			m.lock.Unlock()
			return false
		}
	}
	return true
}

func (m *pollManager) readOne(s sensor.Sensor) string {
	if err := s.Read(m.ctx); err != nil {
		log.Warnf("sensor %s faulted: %v", s.Prefix(), err)
		return faultLine(s.Prefix(), err)
	}
	data, err := s.Data()
	if err != nil {
		log.Warnf("sensor %s faulted: %v", s.Prefix(), err)
		return faultLine(s.Prefix(), err)
	}
	return data
}

// faultLine is deliberately distinguishable from a value line: a value
// payload never starts with "fault".
func faultLine(prefix string, err error) string {
	return prefix + ":fault " + err.Error()
}

func closeEmitter(e output.Emitter) {
	if e == nil {
		return
	}
	if err := e.Close(); err != nil {
		log.Warnln("close emitter:", err)
	}
}

// Daemon supervises a manager: it restarts one that faulted and starts
// one that is down unless it was stopped on purpose.
func Daemon(m manager.Manager) {
	for {
		if m.Faulted() {
			log.Infoln("manager is faulted, restarting")
			if err := m.Restart(); err != nil {
				log.Errorln(err)
			}
		}
		if !m.Running() && !m.ManuallyStopped() {
			if err := m.Start(); err != nil {
				log.Errorln(err)
			}
		}
		time.Sleep(time.Second)
	}
}
