// Package sacn receives DMX data over sACN (E1.31) and feeds it to the
// bridge.
package sacn

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// E1.31 protocol constants.
const (
	Port          = 5568
	MaxChannels   = 512
	headerSize    = 126
	rootVector    = 0x00000004
	framingVector = 0x00000002
	dmpVector     = 0x02
)

// acnIdentifier is the magic byte sequence in the root layer.
var acnIdentifier = []byte{0x41, 0x53, 0x43, 0x2d, 0x45, 0x31, 0x2e, 0x31, 0x37, 0x00, 0x00, 0x00}

// Packet is a decoded E1.31 data packet.
type Packet struct {
	SourceName  string
	Priority    uint8
	Sequence    uint8
	Universe    uint16
	StartCode   uint8
	ChannelData []byte
}

// Parse decodes a raw E1.31 datagram. Packets failing any layer
// validation are rejected with an error and never reach the bridge.
func Parse(data []byte) (*Packet, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("sacn: packet too short (%d bytes)", len(data))
	}
	if data[0] != 0x00 || data[1] != 0x10 {
		return nil, fmt.Errorf("sacn: invalid preamble size")
	}
	if !bytes.Equal(data[4:16], acnIdentifier) {
		return nil, fmt.Errorf("sacn: invalid ACN identifier")
	}
	if binary.BigEndian.Uint32(data[18:22]) != rootVector {
		return nil, fmt.Errorf("sacn: invalid root vector")
	}
	if binary.BigEndian.Uint32(data[40:44]) != framingVector {
		return nil, fmt.Errorf("sacn: invalid framing vector")
	}
	if data[117] != dmpVector {
		return nil, fmt.Errorf("sacn: invalid DMP vector")
	}

	p := &Packet{
		Priority:  data[108],
		Sequence:  data[111],
		Universe:  binary.BigEndian.Uint16(data[113:115]),
		StartCode: data[125],
	}

	// Source name: 64 bytes, null-terminated.
	name := data[44:108]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	p.SourceName = string(name)

	if n := len(data) - headerSize; n > 0 {
		if n > MaxChannels {
			n = MaxChannels
		}
		p.ChannelData = make([]byte, n)
		copy(p.ChannelData, data[headerSize:headerSize+n])
	}
	return p, nil
}

// MulticastGroup returns the 239.255.x.y group address for a universe.
func MulticastGroup(universe uint16) string {
	return fmt.Sprintf("239.255.%d.%d", byte(universe>>8), byte(universe))
}
