// Package digest implements the candidate checksum algorithms the searches try: LFSR based
// digests with an 8 or 16 bit key register, Fletcher style nibble sums and simple folds.
package digest

import (
	"fmt"
	"strings"

	"github.com/Davincible/checkrev/pkg/bits"
)

// Family is an 8 bit digest algorithm parameterized by a generator, an initial key and a
// structural Variant.
type Family int

const (
	Galois Family = iota
	Fibonacci
	Fletcher
	Shift16
	ElCheapo
	GatedCRC
)

var familyNames = [...]string{
	Galois:    "galois",
	Fibonacci: "fibonacci",
	Fletcher:  "fletcher",
	Shift16:   "shift16",
	ElCheapo:  "elcheapo",
	GatedCRC:  "gatedcrc",
}

// Families lists every 8 bit family in search order.
func Families() []Family {
	return []Family{Galois, Fibonacci, Fletcher, Shift16, ElCheapo, GatedCRC}
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("family(%d)", int(f))
	}
	return familyNames[f]
}

// ParseFamily looks a family up by name, ignoring case.
func ParseFamily(name string) (Family, error) {
	for i, n := range familyNames {
		if strings.EqualFold(n, name) {
			return Family(i), nil
		}
	}
	return 0, fmt.Errorf("unknown digest family %q", name)
}

// UsesGenerator reports whether the generator parameter changes the result. Searches iterate a
// single generator for families that ignore it.
func (f Family) UsesGenerator() bool {
	return f != Fletcher
}

// Variants lists the structural variants that are distinct for the family.
func (f Family) Variants() []Variant {
	if f == ElCheapo {
		return []Variant{0, ReverseBytes}
	}
	return AllVariants()
}

// Sum8 runs the family over msg and returns both accumulations of the key stream: the sum and
// the xor. Families with a single output return it twice.
func (f Family) Sum8(msg []byte, gen, key uint8, v Variant) (sum, xor uint8) {
	switch f {
	case Galois:
		return lfsr8(msg, gen, key, v, galoisStep8)
	case Fibonacci:
		return lfsr8(msg, gen, key, v, fibonacciStep8)
	case Fletcher:
		s := fletcher8(msg, key, v)
		return s, s
	case Shift16:
		return shift16(msg, gen, key, v)
	case ElCheapo:
		return elCheapo(msg, gen, key, v)
	case GatedCRC:
		return gatedCRC(msg, gen, key, v)
	}
	return 0, 0
}

func lfsr8(msg []byte, gen, key uint8, v Variant, step func(key, gen uint8, left bool) uint8) (sum, xor uint8) {
	left := v&ShiftLeft != 0
	for y := range msg {
		data := byteAt(msg, y, v)
		for i := 0; i < 8; i++ {
			if bitOf(data, i, v) != 0 {
				sum += key
				xor ^= key
			}
			key = step(key, gen, left)
		}
	}
	return sum, xor
}

// fletcher8 keeps two mod 15 nibble accumulators seeded from the key nibbles and feeds each
// byte high nibble first.
func fletcher8(msg []byte, key uint8, v Variant) uint8 {
	c0, c1 := uint(key&0x0f), uint(key>>4)
	for y := range msg {
		data := byteAt(msg, y, v)
		if v&ReflectBits != 0 {
			data = bits.Reflect8(data)
		}
		c0 = (c0 + uint(data>>4)) % 15
		c1 = (c1 + c0) % 15
		c0 = (c0 + uint(data&0x0f)) % 15
		c1 = (c1 + c0) % 15
	}
	if v&ShiftLeft != 0 {
		return uint8(c0<<4 | c1)
	}
	return uint8(c1<<4 | c0)
}

// shift16 rotates a 16 bit register built from gen:key and accumulates its low byte.
func shift16(msg []byte, gen, key uint8, v Variant) (sum, xor uint8) {
	reg := uint16(gen)<<8 | uint16(key)
	left := v&ShiftLeft != 0
	for y := range msg {
		data := byteAt(msg, y, v)
		for i := 0; i < 8; i++ {
			if bitOf(data, i, v) != 0 {
				sum += uint8(reg)
				xor ^= uint8(reg)
			}
			if left {
				reg = reg<<1 | reg>>15
			} else {
				reg = reg>>1 | reg<<15
			}
		}
	}
	return sum, xor
}

// elCheapo adds or xors each byte shifted by every set bit position of gen, with the xor
// accumulator shifted once per byte.
func elCheapo(msg []byte, gen, key uint8, v Variant) (sum, xor uint8) {
	sum, xor = key, key
	for y := range msg {
		data := byteAt(msg, y, v)
		xor <<= 1
		for i := uint(0); i < 8; i++ {
			if gen>>i&1 != 0 {
				sum += data << i
				xor ^= data << i
			}
		}
	}
	return sum, xor
}

// gatedCRC only feeds the generator back into the key when the message bit is set.
func gatedCRC(msg []byte, gen, key uint8, v Variant) (sum, xor uint8) {
	left := v&ShiftLeft != 0
	for y := range msg {
		data := byteAt(msg, y, v)
		for i := 0; i < 8; i++ {
			var next uint8
			if left {
				next = key << 1
			} else {
				next = key >> 1
			}
			if bitOf(data, i, v) != 0 {
				sum += key
				xor ^= key
				next ^= gen
			}
			key = next
		}
	}
	return sum, xor
}
