package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Maximiliano2107/penguins/internal/config"
	"github.com/Maximiliano2107/penguins/internal/manager/poll"
	"github.com/Maximiliano2107/penguins/pkg/version"
)

type MainApp interface {
	Run()
	PrepareRun() MainApp
	GetOpt() *config.SensordOpt
	ProbeSensor() error
}

type mainApp struct {
	name string
	cmd  *cobra.Command
	args []string
	opt  *config.SensordOpt
}

func NewMainApp(cmd *cobra.Command, args []string) MainApp {
	return &mainApp{
		cmd:  cmd,
		args: args,
	}
}

func (a *mainApp) GetOpt() *config.SensordOpt {
	return a.opt
}

func (a *mainApp) PrepareRun() MainApp {
	desc := config.NewSensordDesc()
	if err := desc.Parse(a.cmd); err != nil {
		log.Errorln(err)
		os.Exit(1)
		return nil
	}
	desc.PostParse()
	a.opt = &desc.Opt
	a.name = config.DefaultAppName
	return a
}

// Run starts the supervised poll manager and blocks until a termination
// signal arrives.
func (a *mainApp) Run() {
	log.Infoln("version:", version.GitVersion)
	log.Infoln("poll.interval_ms:", a.opt.Poll.IntervalMs)
	log.Infoln("output.mode:", a.opt.Output.Mode)
	log.Infoln("imu.enabled:", a.opt.IMU.Enabled)
	log.Infoln("debug:", a.opt.Debug)
	for _, s := range a.opt.Sensors {
		log.Infof("sensor: %s %s on channel %d", s.Prefix, s.Type, s.Channel)
	}

	m := poll.NewManager(a.opt, nil, HardwareRegistry)
	go poll.Daemon(m)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Infoln("received", s, "- shutting down")
	if err := m.Stop(); err != nil {
		log.Errorln(err)
	}
}

// ProbeSensor scans for the IMU on the configured bus and lists
// candidate serial output ports.
func (a *mainApp) ProbeSensor() error {
	log.Infoln("probing IMU devices...")
	found, err := probeIMU(a.opt)
	if err != nil {
		log.Warnln(err)
	} else {
		log.Infof("found %d devices:", len(found))
		for _, v := range found {
			fmt.Printf("- %s\n", v)
		}
	}

	ports := listSerialPorts()
	log.Infof("found %d candidate serial ports:", len(ports))
	for _, p := range ports {
		fmt.Printf("- %s\n", p)
	}
	return nil
}
