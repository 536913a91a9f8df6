package bridge

import (
	"sync"

	"github.com/stagelink/dmxbridge/pkg/dmx"
)

// FrameQueue is a bounded buffer of universe snapshots between the
// network inputs and the serial output worker. When full the oldest
// frame is dropped so the freshest data always gets through.
type FrameQueue struct {
	mu       sync.Mutex
	frames   [][dmx.MaxChannels]byte
	capacity int
	dropped  uint64
}

// NewFrameQueue creates a queue holding up to capacity frames.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &FrameQueue{capacity: capacity}
}

// Offer enqueues a frame, evicting the oldest one when full.
func (q *FrameQueue) Offer(frame [dmx.MaxChannels]byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) >= q.capacity {
		q.frames = q.frames[1:]
		q.dropped++
	}
	q.frames = append(q.frames, frame)
}

// Take dequeues the oldest frame.
func (q *FrameQueue) Take() (frame [dmx.MaxChannels]byte, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return frame, false
	}
	frame = q.frames[0]
	q.frames = q.frames[1:]
	return frame, true
}

// Len returns the current queue depth.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// Dropped returns the count of evicted frames.
func (q *FrameQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
