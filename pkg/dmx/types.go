// Package dmx models the DMX512 universe owned by the transmitter device.
package dmx

import "errors"

// MaxChannels is the number of channels in one DMX512 universe.
const MaxChannels = 512

// ErrChannelRange indicates a channel outside [1, MaxChannels].
var ErrChannelRange = errors.New("channel out of range")

// Transmitter is the channel-write capability handed to the frame
// dispatcher. Writes take effect immediately and hold until overwritten.
type Transmitter interface {
	Write(channel uint16, value byte) error
}

// WriterFunc is func type of Transmitter.
type WriterFunc func(channel uint16, value byte) error

// Write implements Transmitter.
func (f WriterFunc) Write(channel uint16, value byte) error {
	return f(channel, value)
}
