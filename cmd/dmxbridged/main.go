package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/stagelink/dmxbridge/pkg/bridge"
	"github.com/stagelink/dmxbridge/pkg/bridge/artnet"
	"github.com/stagelink/dmxbridge/pkg/bridge/mqttin"
	"github.com/stagelink/dmxbridge/pkg/bridge/sacn"
	"github.com/stagelink/dmxbridge/pkg/config"
	"github.com/stagelink/dmxbridge/pkg/runner"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "", "Path to configuration file.")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		glog.Exit(err)
	}
	if err := cfg.Validate(); err != nil {
		glog.Exit(err)
	}

	port, err := serial.Open(cfg.Serial.Port, &serial.Mode{BaudRate: cfg.Serial.Baud})
	if err != nil {
		glog.Exitf("open %s: %v", cfg.Serial.Port, err)
	}
	defer port.Close()

	b := bridge.New(port, cfg.Output.FPS, cfg.Output.QueueSize)
	b.StatsInterval = time.Duration(cfg.Output.StatsInterval) * time.Second

	var input runner.Runnable
	switch cfg.Protocol {
	case config.ProtocolSACN:
		input = sacn.NewReceiver(cfg.SACN.Universe, b)
	case config.ProtocolArtNet:
		input = artnet.NewReceiver(cfg.ArtNet.Universe, b)
	case config.ProtocolMQTT:
		input = mqttin.NewInput(cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.ClientID, b)
	}

	glog.Infof("bridging %s to %s at %d fps", cfg.Protocol, cfg.Serial.Port, cfg.Output.FPS)
	if err := runner.NewRunner().HandleSignals().Go(b, input).Wait(); err != nil {
		glog.Exit(err)
	}
}
