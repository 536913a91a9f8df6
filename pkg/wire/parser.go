package wire

// Protocol constants.
const (
	// StartByte marks the beginning of a frame.
	StartByte byte = 0xff
	// MaxChannels is the DMX universe size and the frame payload ceiling.
	MaxChannels = 512
	// HeaderSize is the byte count of marker plus length field.
	HeaderSize = 3
	// MaxFrameSize is the largest encoded frame.
	MaxFrameSize = HeaderSize + MaxChannels
)

// ChannelWrite is one channel dispatch produced while decoding a payload.
type ChannelWrite struct {
	Channel uint16 // 1..MaxChannels
	Value   byte
}

// ParseState identifies the parser position within a frame.
type ParseState int

const (
	// StateWaitStart means scanning for the start marker.
	StateWaitStart ParseState = iota
	// StateWaitLenLow means waiting for the length low byte.
	StateWaitLenLow
	// StateWaitLenHigh means waiting for the length high byte.
	StateWaitLenHigh
	// StateWaitPayload means consuming payload bytes.
	StateWaitPayload
)

// ParseResult indicates the outcome after consuming one byte.
type ParseResult struct {
	State ParseState
	// Write is the channel dispatch for a payload byte, nil otherwise.
	Write *ChannelWrite
	// FrameStart is set when a valid length was accepted.
	FrameStart bool
	// FrameDone is set when the final payload byte was consumed.
	FrameDone bool
	// Rejected is set when the length field was 0 or above MaxChannels
	// and the partial frame was discarded.
	Rejected bool
}

// Parser decodes frames one byte at a time. The zero value is ready to
// use, waiting for a start marker. Parser carries the only state that
// persists between polls and is not safe for concurrent use; the device
// loop is its single driver.
type Parser struct {
	state       ParseState
	expectedLen uint16
	bytesRead   uint16
}

// State gets the current parse state.
func (p *Parser) State() ParseState {
	return p.state
}

// Receiving indicates a frame is in progress. It mirrors the activity
// indicator on the device.
func (p *Parser) Receiving() bool {
	return p.state == StateWaitPayload
}

// Reset discards any partial frame and waits for a start marker.
func (p *Parser) Reset() {
	p.state = StateWaitStart
	p.expectedLen = 0
	p.bytesRead = 0
}

// Parse consumes one byte. A payload byte yields exactly one ChannelWrite
// with channel = position+1, always within [1, MaxChannels]; the length
// field is validated before any payload byte is consumed. Malformed input
// never surfaces as an error, only as a silent return to StateWaitStart.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case StateWaitStart:
		if b == StartByte {
			p.expectedLen = 0
			p.bytesRead = 0
			p.state = StateWaitLenLow
		}
	case StateWaitLenLow:
		p.expectedLen = uint16(b)
		p.state = StateWaitLenHigh
	case StateWaitLenHigh:
		p.expectedLen |= uint16(b) << 8
		if p.expectedLen == 0 || p.expectedLen > MaxChannels {
			p.state = StateWaitStart
			pr.Rejected = true
			break
		}
		p.bytesRead = 0
		p.state = StateWaitPayload
		pr.FrameStart = true
	case StateWaitPayload:
		pr.Write = &ChannelWrite{Channel: p.bytesRead + 1, Value: b}
		p.bytesRead++
		if p.bytesRead >= p.expectedLen {
			p.state = StateWaitStart
			pr.FrameDone = true
		}
	}
	pr.State = p.state
	return
}
