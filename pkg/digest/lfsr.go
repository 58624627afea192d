package digest

import (
	"fmt"

	"github.com/Davincible/checkrev/pkg/bits"
)

// The key register steps once per message bit. gen must include the bit that falls off the
// register (LSB for right shifts, MSB for left shifts).

func galoisStep8(key, gen uint8, left bool) uint8 {
	if left {
		if key&0x80 != 0 {
			return key<<1 ^ gen
		}
		return key << 1
	}
	if key&1 != 0 {
		return key>>1 ^ gen
	}
	return key >> 1
}

func fibonacciStep8(key, gen uint8, left bool) uint8 {
	fb := bits.Parity(uint(key&gen)) != 0
	if left {
		if fb {
			return key<<1 | 1
		}
		return key << 1
	}
	if fb {
		return key>>1 | 0x80
	}
	return key >> 1
}

func galoisStep16(key, gen uint16, left bool) uint16 {
	if left {
		if key&0x8000 != 0 {
			return key<<1 ^ gen
		}
		return key << 1
	}
	if key&1 != 0 {
		return key>>1 ^ gen
	}
	return key >> 1
}

func fibonacciStep16(key, gen uint16, left bool) uint16 {
	fb := bits.Parity(uint(key&gen)) != 0
	if left {
		if fb {
			return key<<1 | 1
		}
		return key << 1
	}
	if fb {
		return key>>1 | 0x8000
	}
	return key >> 1
}

// Galois16 is the 16 bit LFSR digest with a Galois key register.
func Galois16(msg []byte, gen, key uint16, v Variant) (sum, xor uint16) {
	left := v&ShiftLeft != 0
	for y := range msg {
		data := byteAt(msg, y, v)
		for i := 0; i < 8; i++ {
			if bitOf(data, i, v) != 0 {
				sum += key
				xor ^= key
			}
			key = galoisStep16(key, gen, left)
		}
	}
	return sum, xor
}

// Fibonacci16 is the 16 bit LFSR digest with a Fibonacci key register.
func Fibonacci16(msg []byte, gen, key uint16, v Variant) (sum, xor uint16) {
	left := v&ShiftLeft != 0
	for y := range msg {
		data := byteAt(msg, y, v)
		for i := 0; i < 8; i++ {
			if bitOf(data, i, v) != 0 {
				sum += key
				xor ^= key
			}
			key = fibonacciStep16(key, gen, left)
		}
	}
	return sum, xor
}

// Keys8 lists the key sequence of an 8 bit LFSR from init until it returns to init, hits zero,
// or 256 rounds pass. Only Galois and Fibonacci registers are supported.
func Keys8(f Family, left bool, gen, init uint8) ([]uint8, error) {
	var step func(key, gen uint8, left bool) uint8
	switch f {
	case Galois:
		step = galoisStep8
	case Fibonacci:
		step = fibonacciStep8
	default:
		return nil, fmt.Errorf("%s is not an LFSR", f)
	}

	var keys []uint8
	key := init
	for rounds := 0; ; {
		keys = append(keys, key)
		key = step(key, gen, left)
		rounds++
		if rounds >= 256 || key == 0 || key == init {
			break
		}
	}
	return keys, nil
}

// Keys16 is Keys8 for 16 bit registers, bounded at 65536 rounds.
func Keys16(f Family, left bool, gen, init uint16) ([]uint16, error) {
	var step func(key, gen uint16, left bool) uint16
	switch f {
	case Galois:
		step = galoisStep16
	case Fibonacci:
		step = fibonacciStep16
	default:
		return nil, fmt.Errorf("%s is not an LFSR", f)
	}

	var keys []uint16
	key := init
	for rounds := 0; ; {
		keys = append(keys, key)
		key = step(key, gen, left)
		rounds++
		if rounds >= 1<<16 || key == 0 || key == init {
			break
		}
	}
	return keys, nil
}
