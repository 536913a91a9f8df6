// Package config loads the bridge daemon configuration.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Protocol names accepted in the configuration.
const (
	ProtocolSACN   = "sacn"
	ProtocolArtNet = "artnet"
	ProtocolMQTT   = "mqtt"
)

// Config is the daemon configuration.
type Config struct {
	Protocol string     `toml:"protocol"` // sacn, artnet or mqtt
	Serial   SerialConf `toml:"serial"`
	SACN     SACNConf   `toml:"sacn"`
	ArtNet   ArtNetConf `toml:"artnet"`
	MQTT     MQTTConf   `toml:"mqtt"`
	Output   OutputConf `toml:"output"`
	Device   DeviceConf `toml:"device"`
}

// SerialConf configures the device link.
type SerialConf struct {
	Port string `toml:"port"` // e.g. /dev/ttyUSB0
	Baud int    `toml:"baud"`
}

// SACNConf configures the sACN receiver.
type SACNConf struct {
	Universe uint16 `toml:"universe"`
}

// ArtNetConf configures the Art-Net receiver.
type ArtNetConf struct {
	Universe uint16 `toml:"universe"`
}

// MQTTConf configures the MQTT input.
type MQTTConf struct {
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"clientID"` // empty derives from the machine ID
}

// OutputConf configures the serial output worker.
type OutputConf struct {
	FPS           int `toml:"fps"`
	QueueSize     int `toml:"queue-size"`
	StatsInterval int `toml:"stats-interval"` // seconds, 0 disables
}

// DeviceConf configures the device boot behavior, used by the simulator.
type DeviceConf struct {
	TestChannels int `toml:"test-channels"` // boot pattern width
	TestHoldMS   int `toml:"test-hold-ms"`  // boot pattern hold time
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Protocol: ProtocolSACN,
		Serial:   SerialConf{Port: "/dev/ttyUSB0", Baud: 250000},
		SACN:     SACNConf{Universe: 1},
		ArtNet:   ArtNetConf{Universe: 0},
		MQTT:     MQTTConf{Broker: "tcp://localhost:1883", Topic: "dmx/channels"},
		Output:   OutputConf{FPS: 88, QueueSize: 50, StatsInterval: 10},
		Device:   DeviceConf{TestChannels: 100, TestHoldMS: 500},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	switch c.Protocol {
	case ProtocolSACN, ProtocolArtNet, ProtocolMQTT:
	default:
		return fmt.Errorf("unknown protocol %q", c.Protocol)
	}
	if c.Serial.Port == "" {
		return fmt.Errorf("serial port not set")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Serial.Baud)
	}
	if c.Output.FPS <= 0 {
		return fmt.Errorf("invalid output fps %d", c.Output.FPS)
	}
	if c.Output.QueueSize <= 0 {
		return fmt.Errorf("invalid queue size %d", c.Output.QueueSize)
	}
	if c.Protocol == ProtocolMQTT && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker not set")
	}
	if c.Device.TestChannels < 1 || c.Device.TestChannels > 512 {
		return fmt.Errorf("invalid test channel count %d", c.Device.TestChannels)
	}
	if c.Device.TestHoldMS < 0 {
		return fmt.Errorf("invalid test hold %dms", c.Device.TestHoldMS)
	}
	return nil
}
