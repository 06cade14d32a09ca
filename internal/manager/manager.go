package manager

// Manager owns the sensor instances and the loop that polls them.
type Manager interface {
	Start() error
	Stop() error
	Restart() error
	Running() bool
	Faulted() bool
	ManuallyStopped() bool
	// Readings returns the last emitted line per sensor prefix.
	Readings() map[string]string
}
