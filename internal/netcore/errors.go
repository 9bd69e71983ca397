// Package netcore holds the types shared across every media driver and
// service in the mesh core: the protocol number space, the Frame value
// passed between sockets and drivers, and the common error taxonomy.
package netcore

import "errors"

var (
	// ErrNotEnoughLength means a frame's declared length ran out before a
	// field finished parsing.
	ErrNotEnoughLength = errors.New("netcore: not enough length")
	// ErrInvalidFrame means the bytes seen so far cannot form a valid frame.
	ErrInvalidFrame = errors.New("netcore: invalid frame")
	// ErrNoBufferAvailable means the frame buffer pool's relevant size
	// class is momentarily exhausted.
	ErrNoBufferAvailable = errors.New("netcore: no buffer available")
	// ErrTaskTimeout means a driver task (UHF command, CSMA attempt, ...)
	// exceeded its deadline without completing.
	ErrTaskTimeout = errors.New("netcore: task timeout")
	// ErrCSFailure means a UHF carrier-sense attempt never found the
	// channel clear within its retry budget, or a UHF send got an
	// interference report on every attempt of its retry budget.
	ErrCSFailure = errors.New("netcore: carrier sense failure")
	// ErrSendSupportedMediaNotFound means no attached medium can reach an
	// address of the requested type.
	ErrSendSupportedMediaNotFound = errors.New("netcore: no medium supports this address")
	// ErrSendUnreachableNode means the neighbor table has no entry, and the
	// discovery engine has no cached route, for the requested node.
	ErrSendUnreachableNode = errors.New("netcore: node unreachable")
	// ErrDiscoveryTimeout means a route discovery's in-flight entry expired
	// without ever receiving a reply.
	ErrDiscoveryTimeout = errors.New("netcore: discovery timeout")
)
