package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stagelink/dmxbridge/pkg/dmx"
	"github.com/stagelink/dmxbridge/pkg/wire"
)

// testSource is an in-memory ByteSource the tests refill between polls.
type testSource struct {
	buf []byte
}

func (s *testSource) push(b ...byte) {
	s.buf = append(s.buf, b...)
}

func (s *testSource) Available() int {
	return len(s.buf)
}

func (s *testSource) ReadByte() (byte, error) {
	if len(s.buf) == 0 {
		return 0, ErrNoData
	}
	b := s.buf[0]
	s.buf = s.buf[1:]
	return b, nil
}

type recordedWrite struct {
	channel uint16
	value   byte
}

func recordingTX(writes *[]recordedWrite) dmx.Transmitter {
	return dmx.WriterFunc(func(channel uint16, value byte) error {
		*writes = append(*writes, recordedWrite{channel, value})
		return nil
	})
}

func TestDispatcherAppliesFrame(t *testing.T) {
	src := &testSource{}
	var writes []recordedWrite
	d := NewDispatcher(src, recordingTX(&writes))

	src.push(0xff, 0x03, 0x00, 0x10, 0x20, 0x30)
	n := d.Poll()

	require.Equal(t, 6, n)
	require.Equal(t, []recordedWrite{
		{1, 0x10}, {2, 0x20}, {3, 0x30},
	}, writes)
	require.Equal(t, uint64(1), d.Stats().FramesCompleted)
	require.Equal(t, uint64(3), d.Stats().ChannelWrites)
	require.False(t, d.Receiving())
}

func TestDispatcherDrainsToEmpty(t *testing.T) {
	src := &testSource{}
	var writes []recordedWrite
	d := NewDispatcher(src, recordingTX(&writes))

	// Two frames plus noise arrive in one burst; a single poll must
	// consume everything.
	src.push(0x00, 0x01)
	src.push(0xff, 0x01, 0x00, 0xaa)
	src.push(0xff, 0x02, 0x00, 0xbb, 0xcc)
	n := d.Poll()

	require.Equal(t, 11, n)
	require.Equal(t, 0, src.Available())
	require.Equal(t, []recordedWrite{
		{1, 0xaa}, {1, 0xbb}, {2, 0xcc},
	}, writes)
	require.Equal(t, uint64(2), d.Stats().FramesCompleted)
}

func TestDispatcherFrameSplitAcrossPolls(t *testing.T) {
	src := &testSource{}
	var writes []recordedWrite
	d := NewDispatcher(src, recordingTX(&writes))

	src.push(0xff, 0x02)
	d.Poll()
	require.Empty(t, writes)

	src.push(0x00, 0x11)
	d.Poll()
	require.Equal(t, []recordedWrite{{1, 0x11}}, writes)
	require.True(t, d.Receiving())

	src.push(0x22)
	d.Poll()
	require.Equal(t, []recordedWrite{{1, 0x11}, {2, 0x22}}, writes)
	require.False(t, d.Receiving())
	require.Equal(t, uint64(1), d.Stats().FramesCompleted)
}

func TestDispatcherRejectsBadLength(t *testing.T) {
	src := &testSource{}
	var writes []recordedWrite
	d := NewDispatcher(src, recordingTX(&writes))

	src.push(0xff, 0x00, 0x00) // zero length
	src.push(0xff, 0x01, 0x02) // 513
	d.Poll()

	require.Empty(t, writes)
	require.Equal(t, uint64(2), d.Stats().FramesRejected)
	require.Equal(t, uint64(0), d.Stats().FramesCompleted)
	require.False(t, d.Receiving())
}

func TestDispatcherIndicator(t *testing.T) {
	src := &testSource{}
	var writes []recordedWrite
	var signals []bool
	d := NewDispatcher(src, recordingTX(&writes))
	d.Indicator = IndicatorFunc(func(on bool) {
		signals = append(signals, on)
	})

	src.push(0xff, 0x01, 0x00, 0x55)
	d.Poll()
	require.Equal(t, []bool{true, false}, signals)

	// A rejected length never turns the indicator on.
	signals = nil
	src.push(0xff, 0x00, 0x00)
	d.Poll()
	require.Empty(t, signals)
}

func TestDispatcherWritesToUniverse(t *testing.T) {
	src := &testSource{}
	u := dmx.NewUniverse()
	d := NewDispatcher(src, u)

	payload := make([]byte, 512)
	for i := range payload {
		payload[i] = byte(255 - i%256)
	}
	frame, err := wire.EncodeFrame(payload)
	require.NoError(t, err)

	src.push(frame...)
	d.Poll()

	snap := u.Snapshot()
	require.Equal(t, payload, snap[:])
	require.Equal(t, uint64(512), d.Stats().ChannelWrites)
}

func TestDispatcherStalledFrameResumes(t *testing.T) {
	src := &testSource{}
	var writes []recordedWrite
	d := NewDispatcher(src, recordingTX(&writes))

	// Host disconnects mid-payload: the dispatcher stays in the payload
	// state across any number of empty polls.
	src.push(0xff, 0x03, 0x00, 0x01)
	d.Poll()
	d.Poll()
	d.Poll()
	require.True(t, d.Receiving())

	// Input resumes and the frame completes.
	src.push(0x02, 0x03)
	d.Poll()
	require.Equal(t, []recordedWrite{{1, 1}, {2, 2}, {3, 3}}, writes)
	require.False(t, d.Receiving())
}
