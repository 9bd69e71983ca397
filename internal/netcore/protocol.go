package netcore

// ProtocolNumber identifies which service owns a frame, scoped across both
// link-layer control protocols and application payloads.
type ProtocolNumber uint8

const (
	ProtocolSerialControl   ProtocolNumber = 1
	ProtocolUHFControl      ProtocolNumber = 2
	ProtocolRoutingNeighbor ProtocolNumber = 3
	ProtocolRoutingReactive ProtocolNumber = 4

	// ProtocolApplicationBase is the lowest number available to callers
	// above the mesh core; everything below it is reserved by this module.
	ProtocolApplicationBase ProtocolNumber = 0x10
)

// IsReserved reports whether p is one of this module's own control
// protocols rather than an application payload.
func (p ProtocolNumber) IsReserved() bool {
	return p < ProtocolApplicationBase
}

// String renders a label suitable for metrics and log fields.
func (p ProtocolNumber) String() string {
	switch p {
	case ProtocolSerialControl:
		return "serial_control"
	case ProtocolUHFControl:
		return "uhf_control"
	case ProtocolRoutingNeighbor:
		return "routing_neighbor"
	case ProtocolRoutingReactive:
		return "routing_reactive"
	default:
		return "application"
	}
}
