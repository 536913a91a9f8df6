// Package device implements the transmitter-side frame dispatcher: a
// single-threaded polling loop that drains the host byte stream through
// the wire parser and republishes payload bytes as DMX channel writes.
package device

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/stagelink/dmxbridge/pkg/dmx"
	"github.com/stagelink/dmxbridge/pkg/wire"
)

// Indicator signals frame activity, the equivalent of the status LED on
// the original hardware.
type Indicator interface {
	Set(on bool)
}

// IndicatorFunc is func type of Indicator.
type IndicatorFunc func(on bool)

// Set implements Indicator.
func (f IndicatorFunc) Set(on bool) { f(on) }

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	Bytes           uint64
	FramesCompleted uint64
	FramesRejected  uint64
	ChannelWrites   uint64
}

// DefaultPollInterval paces Run between polls. At 250000 baud one
// millisecond bounds the backlog to ~25 bytes per cycle.
const DefaultPollInterval = time.Millisecond

// Dispatcher owns the parser state and drives it from a ByteSource.
// Exactly one goroutine may call Poll; only Stats is safe to read from
// elsewhere.
type Dispatcher struct {
	Source ByteSource
	TX     dmx.Transmitter
	// Indicator is optional.
	Indicator Indicator
	// Interval paces Run. Zero means DefaultPollInterval.
	Interval time.Duration
	// StatsInterval enables periodic stats logging from Run when set.
	StatsInterval time.Duration

	parser  wire.Parser
	statsMu sync.Mutex
	stats   Stats
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(source ByteSource, tx dmx.Transmitter) *Dispatcher {
	return &Dispatcher{Source: source, TX: tx}
}

// Poll drains every currently available byte through the parser and
// applies the resulting channel writes. It never blocks and never
// returns an error: malformed input resolves by silent resynchronization.
// The count of consumed bytes is returned.
func (d *Dispatcher) Poll() int {
	n := 0
	for d.Source.Available() > 0 {
		b, err := d.Source.ReadByte()
		if err != nil {
			break
		}
		n++
		d.apply(d.parser.Parse(b))
	}
	if n > 0 {
		d.statsMu.Lock()
		d.stats.Bytes += uint64(n)
		d.statsMu.Unlock()
	}
	return n
}

func (d *Dispatcher) apply(pr wire.ParseResult) {
	if pr.FrameStart {
		d.signal(true)
	}
	if pr.Write != nil {
		if err := d.TX.Write(pr.Write.Channel, pr.Write.Value); err != nil {
			// Unreachable through dmx.Universe: the parser already
			// bounds the channel. Kept for foreign transmitters.
			glog.Warningf("write channel %d: %v", pr.Write.Channel, err)
		} else {
			d.statsMu.Lock()
			d.stats.ChannelWrites++
			d.statsMu.Unlock()
		}
	}
	if pr.Rejected {
		d.statsMu.Lock()
		d.stats.FramesRejected++
		d.statsMu.Unlock()
		glog.V(2).Info("frame length rejected, waiting for start marker")
	}
	if pr.FrameDone {
		d.statsMu.Lock()
		d.stats.FramesCompleted++
		d.statsMu.Unlock()
		d.signal(false)
	}
}

func (d *Dispatcher) signal(on bool) {
	if d.Indicator != nil {
		d.Indicator.Set(on)
	}
}

// Receiving indicates a frame is currently in progress.
func (d *Dispatcher) Receiving() bool {
	return d.parser.Receiving()
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

// Name implements runner.Named.
func (d *Dispatcher) Name() string {
	return "dispatcher"
}

// Run polls cooperatively until the context ends. Between polls the
// caller's other periodic duties (here: optional stats reporting) get
// their turn, matching the device control loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	interval := d.Interval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var statsCh <-chan time.Time
	if d.StatsInterval > 0 {
		statsTicker := time.NewTicker(d.StatsInterval)
		defer statsTicker.Stop()
		statsCh = statsTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Poll()
		case <-statsCh:
			s := d.Stats()
			glog.Infof("bytes=%d frames=%d rejected=%d writes=%d",
				s.Bytes, s.FramesCompleted, s.FramesRejected, s.ChannelWrites)
		}
	}
}
