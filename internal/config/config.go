package config

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Maximiliano2107/penguins/internal/utils"
)

const DefaultAppName = "sensord"
const DefaultConfigName = "config"
const DefaultPollIntervalMs = 500
const DefaultOutputMode = "stdout"
const DefaultSerialBaud = 9600
const DefaultIMUPrefix = "IM"

var userHomeDir, _ = os.UserHomeDir()
var DefaultConfig = path.Join(userHomeDir, ".config/"+DefaultAppName+"/"+DefaultConfigName+".yaml")
var DefaultConfigSearchPath0 = path.Join(userHomeDir, ".config", DefaultAppName)

const DefaultConfigSearchPath1 = "/etc/" + DefaultAppName
const DefaultConfigSearchPath2 = "./"
const DefaultConfigSearchPath3 = "/config"

// Sensor type names accepted in the analog sensor list.
const (
	TypePotentiometer = "potentiometer"
	TypeSonar         = "sonar"
)

type PollOpt struct {
	IntervalMs int `yaml:"interval_ms" mapstructure:"interval_ms"`
}

type OutputOpt struct {
	Mode string `yaml:"mode"` // stdout or serial
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

type AnalogOpt struct {
	Type    string `yaml:"type"`
	Prefix  string `yaml:"prefix"`
	Channel int    `yaml:"channel"`
}

type IMUOpt struct {
	Enabled     bool   `yaml:"enabled"`
	Bus         string `yaml:"bus"`
	Prefix      string `yaml:"prefix"`
	InitRetries int    `yaml:"init_retries" mapstructure:"init_retries"`
}

type SensordOpt struct {
	Poll    PollOpt     `yaml:"poll"`
	Output  OutputOpt   `yaml:"output"`
	Sensors []AnalogOpt `yaml:"sensors"`
	IMU     IMUOpt      `yaml:"imu"`
	Debug   bool        `yaml:"debug"`
}

type SensordDesc struct {
	Opt   SensordOpt
	Viper *viper.Viper
}

func NewSensordDesc() SensordDesc {
	return SensordDesc{
		Opt:   NewSensordOpt(),
		Viper: nil,
	}
}

func NewSensordOpt() SensordOpt {
	return SensordOpt{
		Poll: PollOpt{
			IntervalMs: DefaultPollIntervalMs,
		},
		Output: OutputOpt{
			Mode: DefaultOutputMode,
			Baud: DefaultSerialBaud,
		},
		Sensors: []AnalogOpt{
			{Type: TypePotentiometer, Prefix: "P0", Channel: 0},
			{Type: TypeSonar, Prefix: "S0", Channel: 1},
		},
		IMU: IMUOpt{
			Enabled: false,
			Prefix:  DefaultIMUPrefix,
		},
		Debug: false,
	}
}

// Validate rejects configurations the sensor registry cannot build.
func (o *SensordOpt) Validate() error {
	if o.Poll.IntervalMs <= 0 {
		return errors.New("poll.interval_ms must be positive")
	}
	switch o.Output.Mode {
	case "stdout":
	case "serial":
		if o.Output.Port == "" {
			return errors.New("output.port is required in serial mode")
		}
	default:
		return errors.Errorf("unknown output.mode %q", o.Output.Mode)
	}
	seen := make(map[string]bool, len(o.Sensors)+1)
	for _, s := range o.Sensors {
		if s.Type != TypePotentiometer && s.Type != TypeSonar {
			return errors.Errorf("unknown sensor type %q", s.Type)
		}
		if s.Prefix == "" {
			return errors.New("empty sensor prefix")
		}
		if seen[s.Prefix] {
			return errors.Errorf("duplicate sensor prefix %q", s.Prefix)
		}
		seen[s.Prefix] = true
	}
	if o.IMU.Enabled {
		if o.IMU.Prefix == "" {
			return errors.New("empty imu prefix")
		}
		if seen[o.IMU.Prefix] {
			return errors.Errorf("duplicate sensor prefix %q", o.IMU.Prefix)
		}
	}
	return nil
}

func (o *SensordDesc) Parse(cmd *cobra.Command) error {
	vipCfg := viper.New()
	vipCfg.SetDefault("poll.interval_ms", DefaultPollIntervalMs)
	vipCfg.SetDefault("output.mode", DefaultOutputMode)
	vipCfg.SetDefault("output.baud", DefaultSerialBaud)
	vipCfg.SetDefault("imu.prefix", DefaultIMUPrefix)
	vipCfg.SetDefault("debug", false)

	if configFileCmd, err := cmd.Flags().GetString("config"); err == nil && configFileCmd != "" {
		vipCfg.SetConfigFile(configFileCmd)
	} else {
		configFileEnv := os.Getenv("SENSORD_CONFIG")
		if configFileEnv != "" {
			vipCfg.SetConfigFile(configFileEnv)
		} else {
			vipCfg.SetConfigName(DefaultConfigName)
			vipCfg.SetConfigType("yaml")
			vipCfg.AddConfigPath(DefaultConfigSearchPath0)
			vipCfg.AddConfigPath(DefaultConfigSearchPath1)
			vipCfg.AddConfigPath(DefaultConfigSearchPath2)
			vipCfg.AddConfigPath(DefaultConfigSearchPath3)
		}
	}
	vipCfg.WatchConfig()

	vipCfg.SetEnvPrefix(strings.ToUpper(DefaultAppName))
	vipCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vipCfg.AutomaticEnv()

	_ = vipCfg.BindPFlag("poll.interval_ms", cmd.Flags().Lookup("interval"))
	_ = vipCfg.BindPFlag("output.mode", cmd.Flags().Lookup("output-mode"))
	_ = vipCfg.BindPFlag("output.port", cmd.Flags().Lookup("serial-port"))
	_ = vipCfg.BindPFlag("imu.enabled", cmd.Flags().Lookup("imu"))
	_ = vipCfg.BindPFlag("debug", cmd.Flags().Lookup("debug"))

	// If a config file is found, read it in.
	if err := vipCfg.ReadInConfig(); err == nil {
		log.Debugln("using config file:", vipCfg.ConfigFileUsed())
	} else {
		log.Debugln(err)
	}

	if err := vipCfg.Unmarshal(&o.Opt); err != nil {
		return errors.Wrap(err, "unmarshal config")
	}

	o.Viper = vipCfg
	return o.Opt.Validate()
}

func (o *SensordDesc) PostParse() {
	if o.Opt.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func (o *SensordDesc) SaveConfig() error {
	if o.Viper == nil {
		return errors.New("viper is nil")
	}
	f, err := os.OpenFile(o.Viper.ConfigFileUsed(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w := bufio.NewWriter(f)
	s, _ := yaml.Marshal(o.Opt)
	if _, err = w.Write(s); err != nil {
		return err
	}
	return w.Flush()
}

// InitCfg prepares a configuration template for the application.
func InitCfg(cmd *cobra.Command, _ []string) error {
	printFlag, _ := cmd.Flags().GetBool("print")
	outputPath, _ := cmd.Flags().GetString("output")
	overwriteFlag, _ := cmd.Flags().GetBool("yes")

	desc := NewSensordDesc()
	if err := desc.Parse(cmd); err != nil {
		log.Errorln(err)
		return err
	}

	if printFlag {
		configBuffer, _ := yaml.Marshal(desc.Opt)
		fmt.Println(string(configBuffer))
	} else {
		utils.DumpOption(desc.Opt, outputPath, overwriteFlag)
	}
	return nil
}
