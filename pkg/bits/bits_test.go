package bits

import (
	"testing"

	"github.com/go-daq/crc8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkInput = []byte("123456789")

func referenceCRC8(t *testing.T, data []byte, poly uint8) uint8 {
	t.Helper()
	h := crc8.New(crc8.MakeTable(poly))
	_, err := h.Write(data)
	require.NoError(t, err)
	return h.Sum8()
}

func TestReflectInvolution(t *testing.T) {
	for x := 0; x <= 0xff; x++ {
		assert.Equal(t, uint8(x), Reflect8(Reflect8(uint8(x))), "reflect8 0x%02x", x)
	}
	for x := 0; x <= 0x0f; x++ {
		assert.Equal(t, uint8(x), Reflect4(Reflect4(uint8(x))), "reflect4 0x%x", x)
	}
}

func TestReflectValues(t *testing.T) {
	assert.Equal(t, uint8(0x80), Reflect8(0x01))
	assert.Equal(t, uint8(0x0f), Reflect8(0xf0))
	assert.Equal(t, uint8(0xa5), Reflect8(0xa5))
	assert.Equal(t, uint8(0x08), Reflect4(0x01))
	assert.Equal(t, uint8(0x18), Reflect4(0x81))
}

func TestPopcountParity(t *testing.T) {
	tests := []struct {
		x      uint
		pop    int
		parity int
	}{
		{0x00, 0, 0},
		{0x01, 1, 1},
		{0xff, 8, 0},
		{0x1021, 3, 1},
		{0x8000, 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.pop, Popcount(tt.x), "popcount 0x%x", tt.x)
		assert.Equal(t, tt.parity, Parity(tt.x), "parity 0x%x", tt.x)
	}
}

func TestFolds(t *testing.T) {
	msg := []byte{0xaa, 0x01, 0x02}
	assert.Equal(t, uint8(0xa9), XorBytes(msg))
	assert.Equal(t, 0xad, AddBytes(msg))
	assert.Equal(t, 0xa+0xa+0x1+0x2, AddNibbles(msg))

	inv := []byte{0x00, 0xf0}
	InvertBytes(inv)
	assert.Equal(t, []byte{0xff, 0x0f}, inv)

	refl := []byte{0x01, 0x81}
	ReflectBytes(refl)
	assert.Equal(t, []byte{0x80, 0x81}, refl)
	ReflectNibbles(refl)
	assert.Equal(t, []byte{0x10, 0x18}, refl)
}

func TestCRCCheckValues(t *testing.T) {
	// catalogue check values over "123456789"
	assert.Equal(t, uint8(0xf4), CRC8(checkInput, 0x07, 0x00), "CRC-8/SMBUS")
	assert.Equal(t, uint8(0xf7), CRC8(checkInput, 0x31, 0xff), "CRC-8/NRSC-5")
	assert.Equal(t, uint16(0x31c3), CRC16(checkInput, 0x1021, 0x0000), "CRC-16/XMODEM")
	assert.Equal(t, uint16(0x29b1), CRC16(checkInput, 0x1021, 0xffff), "CRC-16/CCITT-FALSE")
	assert.Equal(t, uint16(0xbb3d), CRC16LSB(checkInput, 0xa001, 0x0000), "CRC-16/ARC")
	assert.Equal(t, uint8(0x0b), CRC4(checkInput, 0x3, 0xf)^0xf, "CRC-4/INTERLAKEN")
}

func TestCRC8MatchesReference(t *testing.T) {
	vectors := [][]byte{
		checkInput,
		{0x00},
		{0xff, 0xff, 0xff},
		{0xaa, 0x01, 0x02, 0xab, 0x55, 0x10},
	}
	for _, poly := range []uint8{0x07, 0x31, 0x1d, 0xd5, 0x9b} {
		for _, v := range vectors {
			assert.Equal(t, referenceCRC8(t, v, poly), CRC8(v, poly, 0x00), "poly 0x%02x over % x", poly, v)
		}
	}
}

func TestCRC8InitLinearity(t *testing.T) {
	// a non-zero init equals the zero-init CRC of the same data with init xored into the first byte
	msg := []byte{0x12, 0x34, 0x56}
	shifted := []byte{0x12 ^ 0x5a, 0x34, 0x56}
	assert.Equal(t, CRC8(shifted, 0x31, 0x00), CRC8(msg, 0x31, 0x5a))
}

func TestCRCEmpty(t *testing.T) {
	assert.Equal(t, uint8(0x42), CRC8(nil, 0x31, 0x42))
	assert.Equal(t, uint16(0x1234), CRC16(nil, 0x1021, 0x1234))
	assert.Equal(t, uint8(0x05), CRC4(nil, 0x3, 0x5))
}
