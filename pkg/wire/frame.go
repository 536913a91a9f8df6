package wire

import (
	"errors"
	"io"
)

var (
	// ErrEmptyFrame indicates an attempt to encode a zero-length payload.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrFrameTooLarge indicates a payload above MaxChannels.
	ErrFrameTooLarge = errors.New("frame exceeds channel ceiling")
)

// Frame is one complete host-to-device message. Payload byte i addresses
// channel i+1.
type Frame struct {
	Payload []byte
}

// Validate checks the payload length against the protocol limits.
func (f Frame) Validate() error {
	if len(f.Payload) == 0 {
		return ErrEmptyFrame
	}
	if len(f.Payload) > MaxChannels {
		return ErrFrameTooLarge
	}
	return nil
}

// Bytes returns encoded bytes for sending.
func (f Frame) Bytes() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, HeaderSize+len(f.Payload))
	b[0] = StartByte
	b[1] = byte(len(f.Payload))
	b[2] = byte(len(f.Payload) >> 8)
	copy(b[HeaderSize:], f.Payload)
	return b, nil
}

// WriteTo writes encoded bytes.
func (f Frame) WriteTo(w io.Writer) (n int, err error) {
	b, err := f.Bytes()
	if err != nil {
		return 0, err
	}
	return w.Write(b)
}

// EncodeFrame encodes a payload into a single frame.
func EncodeFrame(payload []byte) ([]byte, error) {
	return Frame{Payload: payload}.Bytes()
}
