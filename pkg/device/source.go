package device

import (
	"errors"
	"io"
	"sync"
)

// ErrNoData indicates ReadByte was called with nothing available.
var ErrNoData = errors.New("no data available")

// ByteSource is the host communication channel capability: a reliable,
// in-order byte stream with non-blocking availability checks.
type ByteSource interface {
	// Available returns the count of bytes that can be read without
	// blocking.
	Available() int
	// ReadByte returns the next byte. It must only be called when
	// Available reports at least one byte.
	ReadByte() (byte, error)
}

// StreamSource adapts an io.Reader into a ByteSource. A pump goroutine
// moves bytes from the reader into an internal buffer so Available and
// ReadByte never block. Once the reader fails, ReadByte surfaces the
// error after the buffer drains.
type StreamSource struct {
	mu   sync.Mutex
	buf  []byte
	head int
	err  error
}

// NewStreamSource creates a StreamSource and starts its pump.
func NewStreamSource(r io.Reader) *StreamSource {
	s := &StreamSource{}
	go s.pump(r)
	return s
}

func (s *StreamSource) pump(r io.Reader) {
	chunk := make([]byte, 512)
	for {
		n, err := r.Read(chunk)
		s.mu.Lock()
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
		}
		if err != nil {
			s.err = err
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}

// Available implements ByteSource.
func (s *StreamSource) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf) - s.head
}

// ReadByte implements ByteSource.
func (s *StreamSource) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.head < len(s.buf) {
		b := s.buf[s.head]
		s.head++
		if s.head == len(s.buf) {
			s.buf = s.buf[:0]
			s.head = 0
		}
		return b, nil
	}
	if s.err != nil {
		return 0, s.err
	}
	return 0, ErrNoData
}

// Err returns the reader error once the stream ended, nil otherwise.
func (s *StreamSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.head < len(s.buf) {
		return nil
	}
	return s.err
}
