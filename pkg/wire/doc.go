// Package wire implements the serial framing protocol spoken between the
// host bridge and the DMX transmitter device.
package wire

// A frame is the only unit exchanged on the wire:
//
//	byte 0:         0xFF                  start marker
//	byte 1:         length & 0xFF         length low byte
//	byte 2:         (length >> 8) & 0xFF  length high byte
//	bytes 3..3+L-1: payload               one byte per channel, channel = index+1
//
// The start marker is not escaped and is not unique inside a frame: once a
// frame is active, a 0xFF length or payload byte is consumed as ordinary
// data. Framing relies purely on stream position. The receiver recovers
// from malformed input by silently discarding bytes until the next start
// marker; it never reports an error to its caller.
//
// Producer: host bridge
// Consumer: transmitter device
