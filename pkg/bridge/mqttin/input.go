// Package mqttin accepts channel-set commands over MQTT and feeds the
// resulting universe state to the bridge.
package mqttin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/stagelink/dmxbridge/pkg/dmx"
)

// Input subscribes to a topic of JSON channel commands. Unlike the
// network receivers it is stateful: commands patch a locally held
// universe and every accepted message submits a fresh snapshot.
type Input struct {
	Broker   string
	Topic    string
	ClientID string

	sink     Sink
	universe *dmx.Universe
}

// NewInput creates an Input. An empty clientID is derived from the
// machine ID so reconnects keep a stable broker session.
func NewInput(broker, topic, clientID string, sink Sink) *Input {
	return &Input{
		Broker:   broker,
		Topic:    topic,
		ClientID: clientID,
		sink:     sink,
		universe: dmx.NewUniverse(),
	}
}

// Name implements runner.Named.
func (in *Input) Name() string {
	return "mqtt"
}

func (in *Input) clientID() (string, error) {
	if in.ClientID != "" {
		return in.ClientID, nil
	}
	id, err := machineid.ID()
	if err != nil {
		return "", fmt.Errorf("mqtt: derive client ID: %w", err)
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return "dmxbridge-" + id, nil
}

// Run connects to the broker and processes commands until the context
// ends. Reconnects are left to the client; subscription is re-established
// from the connect handler.
func (in *Input) Run(ctx context.Context) error {
	clientID, err := in.clientID()
	if err != nil {
		return err
	}

	opts := paho.NewClientOptions().
		AddBroker(in.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			glog.Infof("connected to %s", in.Broker)
			token := c.Subscribe(in.Topic, 0, func(_ paho.Client, msg paho.Message) {
				if err := in.handleMessage(msg.Payload()); err != nil {
					glog.Warningf("message on %q: %v", msg.Topic(), err)
				}
			})
			token.Wait()
			if err := token.Error(); err != nil {
				glog.Errorf("subscribe %q: %v", in.Topic, err)
				return
			}
			glog.V(2).Infof("SUB %q", in.Topic)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			glog.Warningf("connection lost: %v", err)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt: connect %s: %w", in.Broker, err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	<-ctx.Done()
	client.Disconnect(250)
	return ctx.Err()
}

// handleMessage applies one command payload and submits the updated
// universe. Every command is validated before any is applied, so a bad
// payload leaves no partial patch behind and never submits.
func (in *Input) handleMessage(payload []byte) error {
	var cmds []ChannelCommand
	if err := json.Unmarshal(payload, &cmds); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	for _, cmd := range cmds {
		if cmd.Channel < 1 || cmd.Channel > dmx.MaxChannels {
			return fmt.Errorf("channel %d: %w", cmd.Channel, dmx.ErrChannelRange)
		}
	}
	for _, cmd := range cmds {
		if err := in.universe.Write(cmd.Channel, cmd.Value); err != nil {
			return fmt.Errorf("channel %d: %w", cmd.Channel, err)
		}
	}
	in.sink.Submit(in.universe.Snapshot())
	return nil
}
