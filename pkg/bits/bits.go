// Package bits provides the bit level primitives shared by the checksum search tools.
package bits

import mathbits "math/bits"

// Popcount returns the number of set bits in x.
func Popcount(x uint) int {
	return mathbits.OnesCount(x)
}

// Parity returns 1 if x has an odd number of set bits, 0 otherwise.
func Parity(x uint) int {
	return mathbits.OnesCount(x) & 1
}

// Reflect8 reverses the bit order of a byte.
func Reflect8(x uint8) uint8 {
	x = (x&0xf0)>>4 | (x&0x0f)<<4
	x = (x&0xcc)>>2 | (x&0x33)<<2
	x = (x&0xaa)>>1 | (x&0x55)<<1
	return x
}

// Reflect4 reverses the bit order within each nibble of a byte.
func Reflect4(x uint8) uint8 {
	x = (x&0xcc)>>2 | (x&0x33)<<2
	x = (x&0xaa)>>1 | (x&0x55)<<1
	return x
}

// ReflectBytes reflects every byte of msg in place.
func ReflectBytes(msg []byte) {
	for i := range msg {
		msg[i] = Reflect8(msg[i])
	}
}

// ReflectNibbles reflects every nibble of msg in place.
func ReflectNibbles(msg []byte) {
	for i := range msg {
		msg[i] = Reflect4(msg[i])
	}
}

// InvertBytes flips every bit of msg in place.
func InvertBytes(msg []byte) {
	for i := range msg {
		msg[i] ^= 0xff
	}
}

// XorBytes folds msg with XOR.
func XorBytes(msg []byte) uint8 {
	var result uint8
	for _, b := range msg {
		result ^= b
	}
	return result
}

// AddBytes returns the plain sum of all bytes. Callers truncate to the register width they need.
func AddBytes(msg []byte) int {
	result := 0
	for _, b := range msg {
		result += int(b)
	}
	return result
}

// AddNibbles returns the sum of all high and low nibbles.
func AddNibbles(msg []byte) int {
	result := 0
	for _, b := range msg {
		result += int(b>>4) + int(b&0x0f)
	}
	return result
}

// CRC4 computes a bit-serial, MSB-first CRC-4. The remainder is kept in the high nibble of the
// working register and the result is returned in the low nibble.
func CRC4(msg []byte, poly, init uint8) uint8 {
	remainder := uint(init) << 4
	p := uint(poly) << 4
	for _, b := range msg {
		remainder ^= uint(b)
		for bit := 0; bit < 8; bit++ {
			if remainder&0x80 != 0 {
				remainder = remainder<<1 ^ p
			} else {
				remainder <<= 1
			}
		}
	}
	return uint8(remainder>>4) & 0x0f
}

// CRC8 computes a bit-serial, MSB-first CRC-8 without final XOR.
func CRC8(msg []byte, poly, init uint8) uint8 {
	remainder := init
	for _, b := range msg {
		remainder ^= b
		for bit := 0; bit < 8; bit++ {
			if remainder&0x80 != 0 {
				remainder = remainder<<1 ^ poly
			} else {
				remainder <<= 1
			}
		}
	}
	return remainder
}

// CRC16 computes a bit-serial, MSB-first CRC-16 without final XOR.
func CRC16(msg []byte, poly, init uint16) uint16 {
	remainder := init
	for _, b := range msg {
		remainder ^= uint16(b) << 8
		for bit := 0; bit < 8; bit++ {
			if remainder&0x8000 != 0 {
				remainder = remainder<<1 ^ poly
			} else {
				remainder <<= 1
			}
		}
	}
	return remainder
}

// CRC16LSB computes a reflected (LSB-first) CRC-16. poly must be given in reflected form.
func CRC16LSB(msg []byte, poly, init uint16) uint16 {
	remainder := init
	for _, b := range msg {
		remainder ^= uint16(b)
		for bit := 0; bit < 8; bit++ {
			if remainder&1 != 0 {
				remainder = remainder>>1 ^ poly
			} else {
				remainder >>= 1
			}
		}
	}
	return remainder
}
