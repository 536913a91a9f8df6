package bridge

import (
	"sync"
	"time"
)

// Stats is a snapshot of bridge counters.
type Stats struct {
	Submitted uint64
	Sent      uint64
	Dropped   uint64
	FPS       float64
}

// rateWindow estimates events per second over a sliding window.
type rateWindow struct {
	mu     sync.Mutex
	window time.Duration
	marks  []time.Time
}

func newRateWindow(window time.Duration) *rateWindow {
	return &rateWindow{window: window}
}

func (r *rateWindow) mark(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks = append(r.marks, now)
	r.prune(now)
}

func (r *rateWindow) rate(now time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(now)
	return float64(len(r.marks)) / r.window.Seconds()
}

func (r *rateWindow) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	kept := r.marks[:0]
	for _, m := range r.marks {
		if m.After(cutoff) {
			kept = append(kept, m)
		}
	}
	r.marks = kept
}
