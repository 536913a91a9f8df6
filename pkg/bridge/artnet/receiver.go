package artnet

import (
	"context"
	"fmt"
	"net"

	"github.com/golang/glog"

	"github.com/stagelink/dmxbridge/pkg/dmx"
	"github.com/stagelink/dmxbridge/pkg/runner"
)

// Sink accepts universe snapshots from the receiver.
type Sink interface {
	Submit(frame [dmx.MaxChannels]byte)
}

// Receiver listens for ArtDMX packets addressed to one universe and
// submits channel data to the sink. Art-Net is broadcast or unicast UDP,
// no group membership is needed.
type Receiver struct {
	Universe uint16

	sink Sink
}

// NewReceiver creates a Receiver for a universe.
func NewReceiver(universe uint16, sink Sink) *Receiver {
	return &Receiver{Universe: universe, sink: sink}
}

// Name implements runner.Named.
func (r *Receiver) Name() string {
	return "artnet"
}

// Run listens until the context ends.
func (r *Receiver) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp4", fmt.Sprintf(":%d", Port))
	if err != nil {
		return fmt.Errorf("artnet: listen: %w", err)
	}
	glog.Infof("Art-Net listening on :%d universe %d", Port, r.Universe)

	return runner.RunWithContextCloser(ctx, conn, func() error {
		return r.readLoop(ctx, conn)
	})
}

func (r *Receiver) readLoop(ctx context.Context, conn net.PacketConn) error {
	buf := make([]byte, 1500)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("artnet: read: %w", err)
			}
		}

		p, err := Parse(buf[:n])
		if err != nil {
			glog.V(2).Infof("drop packet from %v: %v", src, err)
			continue
		}
		if p.Universe != r.Universe {
			continue
		}

		var frame [dmx.MaxChannels]byte
		copy(frame[:], p.ChannelData)
		r.sink.Submit(frame)
	}
}
