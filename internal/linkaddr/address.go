// Package linkaddr implements the mesh's link-layer address model: a
// medium-tagged byte string shared by every media driver, neighbor table,
// and discovery frame in the stack.
package linkaddr

import "fmt"

// MaxAddressLen bounds an address body; no medium in this stack needs more
// than 8 bytes.
const MaxAddressLen = 8

// Type identifies which medium an Address belongs to. Addresses from
// different media are never comparable to each other even if their bytes
// happen to match.
type Type uint8

const (
	TypeSerial Type = iota
	TypeUHF
)

func (t Type) String() string {
	switch t {
	case TypeSerial:
		return "serial"
	case TypeUHF:
		return "uhf"
	default:
		return fmt.Sprintf("linkaddr.Type(%d)", uint8(t))
	}
}

// Address is a tagged, fixed-capacity byte string: {Type, bytes<=8}.
type Address struct {
	Type Type
	Body [MaxAddressLen]byte
	Len  uint8
}

// Bytes returns the address body truncated to its declared length.
func (a Address) Bytes() []byte { return a.Body[:a.Len] }

// Equal compares type and body; addresses of different types are never
// equal even with identical bytes.
func (a Address) Equal(other Address) bool {
	if a.Type != other.Type || a.Len != other.Len {
		return false
	}
	for i := uint8(0); i < a.Len; i++ {
		if a.Body[i] != other.Body[i] {
			return false
		}
	}
	return true
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%x", a.Type, a.Bytes())
}

func single(t Type, b byte) Address {
	addr := Address{Type: t, Len: 1}
	addr.Body[0] = b
	return addr
}

// SerialAddress builds the per-medium single-byte subtype used by the
// serial driver's learned local/remote addresses.
func SerialAddress(id byte) Address { return single(TypeSerial, id) }

// UHFAddress builds a UHF modem node-id address.
func UHFAddress(id byte) Address { return single(TypeUHF, id) }

// UHFBroadcastID is the reserved modem id meaning "every node" (spec §4.1).
const UHFBroadcastID byte = 0x00

// UHFBroadcast is the UHF medium's reserved broadcast address.
var UHFBroadcast = UHFAddress(UHFBroadcastID)

// IsBroadcast reports whether this address is the reserved broadcast value
// for its medium.
func (a Address) IsBroadcast() bool {
	return a.Type == TypeUHF && a.Len == 1 && a.Body[0] == UHFBroadcastID
}
