package hwserial

import (
	"io"

	"github.com/keke1008/meshd/internal/logging"
	"github.com/keke1008/meshd/internal/metrics"
	"github.com/keke1008/meshd/internal/poll"
)

// defaultBufferBytes bounds how far the background goroutines can run
// ahead of the scheduler tick before a read blocks the port or a write
// backpressures PollWritable.
const defaultBufferBytes = 512

// Stream wraps a Port with background read/write goroutines and exposes
// the byte stream through serde.ByteReader/serde.ByteWriter's non-blocking
// poll shape, so the media drivers above it never block the scheduler
// tick on hardware I/O.
type Stream struct {
	port Port
	rx   chan byte
	tx   chan byte

	pending []byte
}

// NewStream starts background pump goroutines over port and returns a
// Stream ready for serialmedium/uhfmedium to poll.
func NewStream(port Port) *Stream {
	s := &Stream{port: port, rx: make(chan byte, defaultBufferBytes), tx: make(chan byte, defaultBufferBytes)}
	go s.readLoop()
	go s.writeLoop()
	return s
}

func (s *Stream) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			// A read timeout is expected and not logged: the port reports it
			// as io.EOF with no data. Any other error (port unplugged,
			// closed) ends the pump.
			if err != io.EOF {
				return
			}
		}
		for i := 0; i < n; i++ {
			s.rx <- buf[i]
		}
	}
}

func (s *Stream) writeLoop() {
	for b := range s.tx {
		if _, err := s.port.Write([]byte{b}); err != nil {
			metrics.IncError(metrics.ErrSerialWrite)
			logging.L().Error("hwserial: write error", "error", err)
		}
	}
}

// PollReadable implements serde.ByteReader.
func (s *Stream) PollReadable(n int) poll.Void {
	for len(s.pending) < n {
		select {
		case b := <-s.rx:
			s.pending = append(s.pending, b)
		default:
			return poll.PendingVoid
		}
	}
	return poll.ReadyVoid
}

// ReadUnchecked implements serde.ByteReader.
func (s *Stream) ReadUnchecked() byte {
	b := s.pending[0]
	s.pending = s.pending[1:]
	return b
}

// PollWritable implements serde.ByteWriter: ready as long as the transmit
// pump's queue has room for n more bytes.
func (s *Stream) PollWritable(n int) poll.Void {
	if cap(s.tx)-len(s.tx) < n {
		return poll.PendingVoid
	}
	return poll.ReadyVoid
}

// WriteUnchecked implements serde.ByteWriter. Callers must have already
// confirmed budget via PollWritable, matching every other ByteWriter in
// this module.
func (s *Stream) WriteUnchecked(b byte) {
	s.tx <- b
}

// Close releases the underlying port. Background goroutines exit once the
// next Read/Write call observes the closed port.
func (s *Stream) Close() error {
	close(s.tx)
	return s.port.Close()
}
