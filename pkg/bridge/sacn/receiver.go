package sacn

import (
	"context"
	"fmt"
	"net"

	"github.com/golang/glog"
	"golang.org/x/net/ipv4"

	"github.com/stagelink/dmxbridge/pkg/dmx"
	"github.com/stagelink/dmxbridge/pkg/runner"
)

// Sink accepts universe snapshots from the receiver.
type Sink interface {
	Submit(frame [dmx.MaxChannels]byte)
}

// Receiver listens for E1.31 packets addressed to one universe and
// submits channel data to the sink. It joins the universe's multicast
// group on every multicast-capable interface; unicast packets to the
// same socket are handled identically.
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
	return "sacn"
}

// Run listens until the context ends.
func (r *Receiver) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp4", fmt.Sprintf(":%d", Port))
	if err != nil {
		return fmt.Errorf("sacn: listen: %w", err)
	}

	pc := ipv4.NewPacketConn(conn)
	r.joinGroup(pc)
	glog.Infof("sACN listening on :%d universe %d", Port, r.Universe)

	return runner.RunWithContextCloser(ctx, conn, func() error {
		return r.readLoop(ctx, pc)
	})
}

func (r *Receiver) joinGroup(pc *ipv4.PacketConn) {
	group := net.ParseIP(MulticastGroup(r.Universe))
	ifaces, err := net.Interfaces()
	if err != nil {
		glog.Warningf("list interfaces: %v", err)
		return
	}
	joined := 0
	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		if err := pc.JoinGroup(iface, &net.UDPAddr{IP: group}); err != nil {
			glog.V(2).Infof("join %s on %s: %v", group, iface.Name, err)
			continue
		}
		joined++
	}
	if joined == 0 {
		glog.Warningf("no multicast membership for %s, unicast only", group)
	}
}

func (r *Receiver) readLoop(ctx context.Context, pc *ipv4.PacketConn) error {
	buf := make([]byte, 1500)
	var lastSeq uint8
	var seen bool
	for {
		n, _, src, err := pc.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("sacn: read: %w", err)
			}
		}

		p, err := Parse(buf[:n])
		if err != nil {
			glog.V(2).Infof("drop packet from %v: %v", src, err)
			continue
		}
		if p.Universe != r.Universe || p.StartCode != 0 {
			continue
		}
		if seen && p.Sequence == lastSeq {
			continue
		}
		lastSeq, seen = p.Sequence, true

		var frame [dmx.MaxChannels]byte
		copy(frame[:], p.ChannelData)
		r.sink.Submit(frame)
	}
}
