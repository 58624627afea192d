package synth

import (
	"testing"

	"github.com/Davincible/checkrev/pkg/bits"
	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomIsDeterministic(t *testing.T) {
	a, err := Random(20, 6, 42)
	require.NoError(t, err)
	b, err := Random(20, 6, 42)
	require.NoError(t, err)
	c, err := Random(20, 6, 43)
	require.NoError(t, err)

	assert.Equal(t, a.Messages, b.Messages)
	assert.NotEqual(t, a.Messages, c.Messages)
	assert.Equal(t, 6, a.Len)
	assert.Len(t, a.Messages, 20)

	_, err = Random(1, 0, 1)
	assert.Error(t, err)
}

func TestWithCRC8(t *testing.T) {
	c, err := WithCRC8(16, 5, 7, 0x31, 0xff, 0x00)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len)
	for _, m := range c.Messages {
		assert.Equal(t, bits.CRC8(m.Data[:5], 0x31, 0xff), m.Chk)
		assert.Equal(t, 48, m.BitLen)
	}
}

func TestWithCRC16(t *testing.T) {
	c, err := WithCRC16(8, 4, 7, 0x1021, 0xffff, 0x0000)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len)
	for _, m := range c.Messages {
		assert.Equal(t, bits.CRC16(m.Data[:4], 0x1021, 0xffff), m.Chk16)
	}
}

func TestWithDigest8(t *testing.T) {
	c, err := WithDigest8(8, 4, 3, digest.Galois, 0x8c, 0x42, digest.ReflectBits, true, 0x5a)
	require.NoError(t, err)
	for _, m := range c.Messages {
		_, xor := digest.Galois.Sum8(m.Data[:4], 0x8c, 0x42, digest.ReflectBits)
		assert.Equal(t, xor^0x5a, m.Chk)
	}
}

func TestKeystreamChecksum(t *testing.T) {
	key := make([]uint8, 16)
	for k := range key {
		key[k] = uint8(k + 1)
	}
	sum := Keystream(key, 0xa0)
	// bits 0 and 15 set
	assert.Equal(t, []byte{0xa0 ^ 0x01 ^ 0x10}, sum([]byte{0x80, 0x01}))
	assert.Equal(t, []byte{0xa0}, sum([]byte{0x00, 0x00}))

	_, err := WithKeystream(4, 2, 1, key[:8], 0)
	assert.Error(t, err)
}

func TestWithSyncPrefix(t *testing.T) {
	base, err := WithCRC8(12, 4, 9, 0x07, 0x00, 0x00)
	require.NoError(t, err)
	pattern, err := codes.ParseCode("{12}a5c")
	require.NoError(t, err)

	c, offsets, err := WithSyncPrefix(base, pattern, 13, 5)
	require.NoError(t, err)
	require.Len(t, offsets, len(base.Messages))

	for i, m := range c.Messages {
		offs := offsets[i]
		assert.LessOrEqual(t, offs, 13)
		assert.Equal(t, offs+12+40, m.BitLen)
		for k := 0; k < offs; k++ {
			assert.False(t, m.Bit(k), "message %d prefix bit %d", i, k)
		}
		for k := 0; k < pattern.BitLen; k++ {
			assert.Equal(t, pattern.Bit(k), m.Bit(offs+k), "message %d pattern bit %d", i, k)
		}
		orig := base.Messages[i]
		for k := 0; k < orig.BitLen; k++ {
			assert.Equal(t, orig.Bit(k), m.Bit(offs+12+k), "message %d payload bit %d", i, k)
		}
	}
}
