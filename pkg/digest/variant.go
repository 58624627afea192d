package digest

import "strings"

// Variant selects how a digest walks the message: byte order, bit order within a byte, and the
// direction the key register shifts.
type Variant uint8

const (
	// ReverseBytes walks the bytes from last to first.
	ReverseBytes Variant = 1 << iota
	// ReflectBits walks each byte from bit 7 down to bit 0 instead of bit 0 up.
	ReflectBits
	// ShiftLeft shifts the key register left instead of right.
	ShiftLeft
)

// NumVariants is the number of structural variants.
const NumVariants = 8

// AllVariants lists every structural variant in job order.
func AllVariants() []Variant {
	vs := make([]Variant, NumVariants)
	for i := range vs {
		vs[i] = Variant(i)
	}
	return vs
}

// String names the variant the way search reports print it.
func (v Variant) String() string {
	var parts []string
	if v&ShiftLeft != 0 {
		parts = append(parts, "REV")
	}
	if v&ReflectBits != 0 {
		parts = append(parts, "BIT_REFLECT")
	}
	if v&ReverseBytes != 0 {
		parts = append(parts, "BYTE_REFLECT")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// byteAt returns the y-th byte in walk order.
func byteAt(msg []byte, y int, v Variant) uint8 {
	if v&ReverseBytes != 0 {
		return msg[len(msg)-1-y]
	}
	return msg[y]
}

// bitOf returns the i-th bit of data in walk order.
func bitOf(data uint8, i int, v Variant) uint8 {
	if v&ReflectBits != 0 {
		return data >> uint(7-i) & 1
	}
	return data >> uint(i) & 1
}
