package netcore

import (
	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
)

// Frame is the unit handed between link sockets and media drivers: a
// protocol tag, the peer address it came from or is going to, and a reader
// over the payload's backing buffer. The Reader's ownership transfers with
// the Frame; whoever consumes it last must call Reader.Release.
type Frame struct {
	Protocol ProtocolNumber
	Peer     linkaddr.Address
	Reader   *framebuf.Reader
}
