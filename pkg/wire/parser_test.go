package wire

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// feed runs bytes through a parser and collects the interesting outcomes.
type feedResult struct {
	writes    []ChannelWrite
	starts    int
	completed int
	rejected  int
}

func feed(p *Parser, in ...byte) feedResult {
	var r feedResult
	for _, b := range in {
		pr := p.Parse(b)
		if pr.Write != nil {
			r.writes = append(r.writes, *pr.Write)
		}
		if pr.FrameStart {
			r.starts++
		}
		if pr.FrameDone {
			r.completed++
		}
		if pr.Rejected {
			r.rejected++
		}
	}
	return r
}

func frameBytes(payload ...byte) []byte {
	b := []byte{StartByte, byte(len(payload)), byte(len(payload) >> 8)}
	return append(b, payload...)
}

func TestParserWellFormedFrame(t *testing.T) {
	var p Parser
	r := feed(&p, 0xff, 0x03, 0x00, 0x10, 0x20, 0x30)

	require.Equal(t, []ChannelWrite{
		{Channel: 1, Value: 0x10},
		{Channel: 2, Value: 0x20},
		{Channel: 3, Value: 0x30},
	}, r.writes)
	require.Equal(t, 1, r.completed)
	require.Equal(t, StateWaitStart, p.State())
}

func TestParserRejectsBadLengths(t *testing.T) {
	testCases := []struct {
		name string
		in   []byte
	}{
		{name: "zero length", in: []byte{0xff, 0x00, 0x00}},
		{name: "513 channels", in: []byte{0xff, 0x01, 0x02}},
		{name: "max uint16", in: []byte{0xff, 0xff, 0xff}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p Parser
			r := feed(&p, tc.in...)
			require.Empty(t, r.writes)
			require.Equal(t, 1, r.rejected)
			require.Equal(t, 0, r.starts)
			require.Equal(t, StateWaitStart, p.State())
		})
	}
}

func TestParserMaxLengthAccepted(t *testing.T) {
	var p Parser
	payload := make([]byte, MaxChannels)
	for i := range payload {
		payload[i] = byte(i)
	}
	r := feed(&p, frameBytes(payload...)...)

	require.Len(t, r.writes, MaxChannels)
	require.Equal(t, ChannelWrite{Channel: 1, Value: 0}, r.writes[0])
	require.Equal(t, ChannelWrite{Channel: MaxChannels, Value: payload[MaxChannels-1]}, r.writes[MaxChannels-1])
	require.Equal(t, 1, r.completed)
	require.Equal(t, StateWaitStart, p.State())
}

func TestParserResyncAfterNoise(t *testing.T) {
	var p Parser
	noise := []byte{0x01, 0x02, 0x7f, 0x00, 0xfe}
	r := feed(&p, append(noise, frameBytes(0xaa, 0xbb)...)...)

	require.Equal(t, []ChannelWrite{
		{Channel: 1, Value: 0xaa},
		{Channel: 2, Value: 0xbb},
	}, r.writes)
	require.Equal(t, 1, r.completed)
}

func TestParserConcatenatedFrames(t *testing.T) {
	var p Parser
	in := append(frameBytes(0x11), frameBytes(0x22, 0x33)...)
	r := feed(&p, in...)

	require.Equal(t, []ChannelWrite{
		{Channel: 1, Value: 0x11},
		{Channel: 1, Value: 0x22},
		{Channel: 2, Value: 0x33},
	}, r.writes)
	require.Equal(t, 2, r.completed)
	require.Equal(t, StateWaitStart, p.State())
}

func TestParserMarkerInsidePayloadIsData(t *testing.T) {
	var p Parser
	r := feed(&p, frameBytes(0xff, 0x01, 0xff)...)

	require.Equal(t, []ChannelWrite{
		{Channel: 1, Value: 0xff},
		{Channel: 2, Value: 0x01},
		{Channel: 3, Value: 0xff},
	}, r.writes)
	require.Equal(t, 1, r.completed)
}

func TestParserMarkerInsideLengthIsData(t *testing.T) {
	// 0xff as low byte gives length 0x01ff = 511: a valid frame, not a
	// restart.
	var p Parser
	r := feed(&p, 0xff, 0xff, 0x01)
	require.Equal(t, 1, r.starts)
	require.Equal(t, StateWaitPayload, p.State())
	require.Empty(t, r.writes)
}

func TestParserStalledMidPayload(t *testing.T) {
	var p Parser
	r := feed(&p, 0xff, 0x04, 0x00, 0x01, 0x02)
	require.Len(t, r.writes, 2)
	require.Equal(t, 0, r.completed)
	require.True(t, p.Receiving())

	// No timeout exists: further bytes are still payload, even 0xff.
	r = feed(&p, 0xff, 0x03)
	require.Equal(t, []ChannelWrite{
		{Channel: 3, Value: 0xff},
		{Channel: 4, Value: 0x03},
	}, r.writes)
	require.Equal(t, 1, r.completed)
	require.False(t, p.Receiving())
}

func TestParserReset(t *testing.T) {
	var p Parser
	feed(&p, 0xff, 0x04, 0x00, 0x01)
	require.Equal(t, StateWaitPayload, p.State())
	p.Reset()
	require.Equal(t, StateWaitStart, p.State())

	r := feed(&p, frameBytes(0x42)...)
	require.Equal(t, []ChannelWrite{{Channel: 1, Value: 0x42}}, r.writes)
}

func TestParserWritesAlwaysInRange(t *testing.T) {
	// Pseudo-random byte soup: whatever the input, no write may ever
	// leave [1, MaxChannels] and channels must be strictly increasing
	// within a frame.
	var p Parser
	seed := uint32(0x2545f491)
	last := uint16(0)
	for i := 0; i < 100000; i++ {
		seed = seed*1664525 + 1013904223
		pr := p.Parse(byte(seed >> 24))
		if pr.Write != nil {
			w := pr.Write
			require.GreaterOrEqual(t, w.Channel, uint16(1), "iteration %d", i)
			require.LessOrEqual(t, w.Channel, uint16(MaxChannels), "iteration %d", i)
			if last > 0 && w.Channel != 1 {
				require.Equal(t, last+1, w.Channel, fmt.Sprintf("iteration %d", i))
			}
			last = w.Channel
		}
		if pr.FrameDone || pr.Rejected {
			last = 0
		}
	}
}
