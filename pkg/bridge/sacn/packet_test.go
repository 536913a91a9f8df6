package sacn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildPacket assembles a valid E1.31 data packet.
func buildPacket(universe uint16, sequence uint8, sourceName string, channels []byte) []byte {
	size := headerSize + len(channels)
	p := make([]byte, size)

	// Root layer.
	p[0], p[1] = 0x00, 0x10
	copy(p[4:16], acnIdentifier)
	rootLen := uint16(size - 16)
	p[16], p[17] = 0x70|byte(rootLen>>8), byte(rootLen)
	p[21] = 0x04 // root vector

	// Framing layer.
	framingLen := uint16(size - 38)
	p[38], p[39] = 0x70|byte(framingLen>>8), byte(framingLen)
	p[43] = 0x02 // framing vector
	copy(p[44:108], sourceName)
	p[108] = 100 // priority
	p[111] = sequence
	p[113], p[114] = byte(universe>>8), byte(universe)

	// DMP layer.
	dmpLen := uint16(size - 115)
	p[115], p[116] = 0x70|byte(dmpLen>>8), byte(dmpLen)
	p[117] = 0x02 // DMP vector
	p[118] = 0xa1
	p[122] = 0x01
	propCount := uint16(1 + len(channels))
	p[123], p[124] = byte(propCount>>8), byte(propCount)
	p[125] = 0x00 // DMX start code
	copy(p[headerSize:], channels)

	return p
}

func TestParseValidPacket(t *testing.T) {
	channels := []byte{255, 128, 64, 0, 100}
	raw := buildPacket(7, 42, "desk-1", channels)

	p, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, uint16(7), p.Universe)
	require.Equal(t, uint8(42), p.Sequence)
	require.Equal(t, "desk-1", p.SourceName)
	require.Equal(t, uint8(100), p.Priority)
	require.Equal(t, uint8(0), p.StartCode)
	require.Equal(t, channels, p.ChannelData)
}

func TestParseRejectsGarbage(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func([]byte)
	}{
		{"bad preamble", func(p []byte) { p[0] = 0xff }},
		{"bad identifier", func(p []byte) { p[4] = 0x00 }},
		{"bad root vector", func(p []byte) { p[21] = 0x09 }},
		{"bad framing vector", func(p []byte) { p[43] = 0x09 }},
		{"bad dmp vector", func(p []byte) { p[117] = 0x01 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := buildPacket(1, 1, "x", []byte{1, 2, 3})
			tc.mutate(raw)
			_, err := Parse(raw)
			require.Error(t, err)
		})
	}
}

func TestParseRejectsShortPacket(t *testing.T) {
	_, err := Parse(make([]byte, headerSize-1))
	require.Error(t, err)
}

func TestParseTruncatesOversizedChannelData(t *testing.T) {
	raw := buildPacket(1, 1, "x", make([]byte, MaxChannels+8))
	p, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, p.ChannelData, MaxChannels)
}

func TestMulticastGroup(t *testing.T) {
	require.Equal(t, "239.255.0.1", MulticastGroup(1))
	require.Equal(t, "239.255.1.44", MulticastGroup(300))
}
