package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	opt := NewSensordOpt()
	require.NoError(t, opt.Validate())
	assert.Equal(t, DefaultPollIntervalMs, opt.Poll.IntervalMs)
	assert.Equal(t, "stdout", opt.Output.Mode)
	assert.Len(t, opt.Sensors, 2)
	assert.False(t, opt.IMU.Enabled)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SensordOpt)
	}{
		{"zero interval", func(o *SensordOpt) { o.Poll.IntervalMs = 0 }},
		{"unknown output mode", func(o *SensordOpt) { o.Output.Mode = "udp" }},
		{"serial without port", func(o *SensordOpt) { o.Output.Mode = "serial"; o.Output.Port = "" }},
		{"unknown sensor type", func(o *SensordOpt) { o.Sensors[0].Type = "thermocouple" }},
		{"empty prefix", func(o *SensordOpt) { o.Sensors[0].Prefix = "" }},
		{"duplicate prefix", func(o *SensordOpt) { o.Sensors[1].Prefix = o.Sensors[0].Prefix }},
		{"imu reuses prefix", func(o *SensordOpt) { o.IMU.Enabled = true; o.IMU.Prefix = o.Sensors[0].Prefix }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opt := NewSensordOpt()
			tc.mutate(&opt)
			assert.Error(t, opt.Validate())
		})
	}
}

func TestParseConfigFile(t *testing.T) {
	content := `
poll:
  interval_ms: 100
output:
  mode: stdout
sensors:
  - type: potentiometer
    prefix: HS
    channel: 0
  - type: sonar
    prefix: LS
    channel: 2
imu:
  enabled: true
  prefix: IM
  init_retries: 5
debug: true
`
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", cfgPath, "")

	desc := NewSensordDesc()
	require.NoError(t, desc.Parse(cmd))

	assert.Equal(t, 100, desc.Opt.Poll.IntervalMs)
	require.Len(t, desc.Opt.Sensors, 2)
	assert.Equal(t, "HS", desc.Opt.Sensors[0].Prefix)
	assert.Equal(t, TypeSonar, desc.Opt.Sensors[1].Type)
	assert.Equal(t, 2, desc.Opt.Sensors[1].Channel)
	assert.True(t, desc.Opt.IMU.Enabled)
	assert.Equal(t, 5, desc.Opt.IMU.InitRetries)
	assert.True(t, desc.Opt.Debug)
}
