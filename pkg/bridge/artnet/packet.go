// Package artnet receives DMX data over Art-Net and feeds it to the
// bridge.
package artnet

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Art-Net protocol constants.
const (
	Port        = 6454
	MaxChannels = 512
	headerSize  = 18
	opOutput    = 0x5000
)

var signature = []byte("Art-Net\x00")

// Packet is a decoded ArtDMX packet.
type Packet struct {
	Sequence    uint8
	Universe    uint16
	ChannelData []byte
}

// Parse decodes a raw ArtDMX datagram. Non-DMX opcodes (poll, reply,
// sync) are rejected like malformed packets; the bridge only consumes
// channel data.
func Parse(data []byte) (*Packet, error) {
	if len(data) < headerSize+1 {
		return nil, fmt.Errorf("artnet: packet too short (%d bytes)", len(data))
	}
	if !bytes.Equal(data[0:8], signature) {
		return nil, fmt.Errorf("artnet: invalid signature")
	}
	if op := binary.LittleEndian.Uint16(data[8:10]); op != opOutput {
		return nil, fmt.Errorf("artnet: ignored opcode 0x%04x", op)
	}

	length := int(binary.BigEndian.Uint16(data[16:18]))
	if length > len(data)-headerSize {
		length = len(data) - headerSize
	}
	if length > MaxChannels {
		length = MaxChannels
	}

	p := &Packet{
		Sequence:    data[12],
		Universe:    binary.LittleEndian.Uint16(data[14:16]),
		ChannelData: make([]byte, length),
	}
	copy(p.ChannelData, data[headerSize:headerSize+length])
	return p, nil
}
