package dmx

import "sync"

// Universe holds the 512 channel values of one DMX universe. Channels are
// 1-indexed; index 0 on the wire is the start code and is not stored here.
// All access is bounds-checked, there is no raw buffer exposure.
type Universe struct {
	mu       sync.RWMutex
	channels [MaxChannels]byte
}

// NewUniverse creates a universe with all channels at zero.
func NewUniverse() *Universe {
	return &Universe{}
}

// Write implements Transmitter.
func (u *Universe) Write(channel uint16, value byte) error {
	if channel < 1 || channel > MaxChannels {
		return ErrChannelRange
	}
	u.mu.Lock()
	u.channels[channel-1] = value
	u.mu.Unlock()
	return nil
}

// Get returns the value of a channel.
func (u *Universe) Get(channel uint16) (byte, error) {
	if channel < 1 || channel > MaxChannels {
		return 0, ErrChannelRange
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.channels[channel-1], nil
}

// Snapshot returns a copy of all channel values, channel N at index N-1.
func (u *Universe) Snapshot() [MaxChannels]byte {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.channels
}

// Blackout sets every channel to zero.
func (u *Universe) Blackout() {
	u.mu.Lock()
	u.channels = [MaxChannels]byte{}
	u.mu.Unlock()
}

// Active reports whether any channel is nonzero.
func (u *Universe) Active() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, v := range u.channels {
		if v != 0 {
			return true
		}
	}
	return false
}
