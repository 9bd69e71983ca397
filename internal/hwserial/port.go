// Package hwserial adapts a real serial port to the serde.ByteReader/
// serde.ByteWriter capability interfaces the link layer's state machines
// poll instead of blocking.
package hwserial

import (
	"time"

	"github.com/tarm/serial"
)

// Port abstracts tarm/serial for testability, matching the subset of
// *serial.Port the Stream needs.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Open opens name at baud with the given per-read timeout, bounding how
// long the background read goroutine can block between checking for
// shutdown.
func Open(name string, baud int, readTimeout time.Duration) (Port, error) {
	cfg := &serial.Config{Name: name, Baud: baud, ReadTimeout: readTimeout}
	return serial.OpenPort(cfg)
}
