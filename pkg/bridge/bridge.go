// Package bridge pumps universe snapshots from the network inputs onto
// the serial link at a fixed output rate.
package bridge

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/stagelink/dmxbridge/pkg/dmx"
	"github.com/stagelink/dmxbridge/pkg/wire"
)

// DefaultFPS doubles the standard 44 Hz DMX refresh so the device always
// has fresh data to repeat.
const DefaultFPS = 88

// DefaultQueueSize bounds the frames buffered between input and output.
const DefaultQueueSize = 50

// Bridge receives universe snapshots via Submit and streams them as
// encoded frames to Out. When no new frame is queued on an output tick,
// the last known universe is re-sent so the DMX line keeps refreshing.
type Bridge struct {
	Out io.Writer
	// FPS is the output rate. Zero means DefaultFPS.
	FPS int
	// StatsInterval enables periodic stats logging from Run when set.
	StatsInterval time.Duration

	queue *FrameQueue

	mu        sync.Mutex
	last      [dmx.MaxChannels]byte
	hasLast   bool
	active    bool
	submitted uint64
	sent      uint64
	rate      *rateWindow
}

// New creates a Bridge writing to out.
func New(out io.Writer, fps, queueSize int) *Bridge {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bridge{
		Out:   out,
		FPS:   fps,
		queue: NewFrameQueue(queueSize),
		rate:  newRateWindow(time.Second),
	}
}

// Submit hands a full universe snapshot to the output worker. It never
// blocks; under backlog the oldest queued frame is dropped.
func (b *Bridge) Submit(frame [dmx.MaxChannels]byte) {
	active := false
	for _, v := range frame {
		if v != 0 {
			active = true
			break
		}
	}
	b.mu.Lock()
	if active != b.active {
		b.active = active
		if active {
			glog.Info("DMX active")
		} else {
			glog.Info("DMX inactive")
		}
	}
	b.submitted++
	b.mu.Unlock()
	b.queue.Offer(frame)
}

// flush sends one frame: the next queued snapshot, or the last known one
// when the queue is empty. It is a no-op until the first Submit.
func (b *Bridge) flush() error {
	frame, ok := b.queue.Take()
	b.mu.Lock()
	if ok {
		b.last = frame
		b.hasLast = true
	} else if !b.hasLast {
		b.mu.Unlock()
		return nil
	} else {
		frame = b.last
	}
	b.mu.Unlock()

	enc, err := wire.EncodeFrame(frame[:])
	if err != nil {
		return err
	}
	if _, err := b.Out.Write(enc); err != nil {
		return err
	}

	now := time.Now()
	b.rate.mark(now)
	b.mu.Lock()
	b.sent++
	b.mu.Unlock()
	glog.V(2).Infof("SND frame, %d bytes", len(enc))
	return nil
}

// Stats returns a snapshot of the counters.
func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	s := Stats{Submitted: b.submitted, Sent: b.sent}
	b.mu.Unlock()
	s.Dropped = b.queue.Dropped()
	s.FPS = b.rate.rate(time.Now())
	return s
}

// Name implements runner.Named.
func (b *Bridge) Name() string {
	return "bridge"
}

// Run drives the output worker until the context ends. A write failure
// on the serial link stops the bridge: the device is gone and a restart
// with a fresh port is the recovery.
func (b *Bridge) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(b.FPS))
	defer ticker.Stop()

	var statsCh <-chan time.Time
	if b.StatsInterval > 0 {
		statsTicker := time.NewTicker(b.StatsInterval)
		defer statsTicker.Stop()
		statsCh = statsTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := b.flush(); err != nil {
				return err
			}
		case <-statsCh:
			s := b.Stats()
			glog.Infof("fps=%.1f sent=%d submitted=%d dropped=%d",
				s.FPS, s.Sent, s.Submitted, s.Dropped)
		}
	}
}
