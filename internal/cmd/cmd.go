package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Maximiliano2107/penguins/internal/config"
	"github.com/Maximiliano2107/penguins/internal/server"
)

var RootCmd = &cobra.Command{
	Use:   "sensord",
	Short: "sensor poll/report daemon for the penguin platform",
	Long:  "sensor poll/report daemon for the penguin platform",
}

func RunCmdRunE(cmd *cobra.Command, args []string) error {
	server.NewMainApp(cmd, args).PrepareRun().Run()
	return nil
}

func RunCmdFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "default configuration path")
	cmd.Flags().IntP("interval", "i", config.DefaultPollIntervalMs, "poll interval in milliseconds")
	cmd.Flags().String("output-mode", config.DefaultOutputMode, "output channel: stdout or serial")
	cmd.Flags().String("serial-port", "", "serial port for output.mode=serial")
	cmd.Flags().Bool("imu", false, "enable the inertial/magnetic sensor")
	cmd.Flags().Bool("debug", false, "toggle debug logging")
}

var RunCmd = &cobra.Command{
	Use: "run",
	SuggestFor: []string{
		"ru", "star",
	},
	Short: "run starts the sensor daemon using predefined configs.",
	Long: `run starts the sensor daemon using predefined configs, by the following order:
1. path specified in --config flag
2. path defined in the SENSORD_CONFIG environment variable
3. default location $HOME/.config/sensord/config.yaml, /etc/sensord/config.yaml, current directory
The parameters in the configuration file will be overwritten by the following order:
1. command line arguments
2. environment variables
`,
	Example: `  sensord run --config=/path/to/config`,
	RunE:    RunCmdRunE,
}

func InitCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("print", false, "print config to stdout")
	cmd.Flags().BoolP("yes", "y", false, "overwrite")
	cmd.Flags().StringP("output", "o", config.DefaultConfig, "specify output path")
}

var InitCmd = &cobra.Command{
	Use: "init",
	SuggestFor: []string{
		"ini", "in",
	},
	Short: "init creates a configuration template",
	Long: `init creates a configuration template.
The configuration file can be used to launch the sensor daemon.
If --print flag is present, the configuration will be printed to stdout.
If --output / -o flag is present, the configuration will be saved to the path specified.
Otherwise init will write the configuration to $HOME/.config/sensord/config.yaml.
If --yes / -y flag is present, an existing file is overwritten without confirmation.
`,
	Example: `  sensord init --print
  sensord init --output /path/to/config.yaml
  sensord init -o /path/to/config.yaml -y`,
	RunE: config.InitCfg,
}

var ProbeCmd = &cobra.Command{
	Use: "probe",
	SuggestFor: []string{
		"pro", "pr", "prob",
	},
	Short: "probe for compatible devices",
	Long: `probe for compatible devices.
The probe command scans the I2C bus for the known inertial/magnetic
sub-peripherals and lists candidate serial output ports.
`,
	Example: `  sensord probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.NewMainApp(cmd, args).PrepareRun().ProbeSensor()
	},
}

func getRootCmd() *cobra.Command {
	RunCmdFlags(RunCmd)
	RootCmd.AddCommand(RunCmd)

	InitCmdFlags(InitCmd)
	RootCmd.AddCommand(InitCmd)

	RunCmdFlags(ProbeCmd)
	RootCmd.AddCommand(ProbeCmd)

	return RootCmd
}

func Execute() {
	rootCmd := getRootCmd()
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
