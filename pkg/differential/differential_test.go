package differential

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpusOf(rows ...[]byte) *codes.Corpus {
	c := &codes.Corpus{Len: len(rows[0])}
	for _, r := range rows {
		c.Messages = append(c.Messages, codes.NewMessage(r))
	}
	return c
}

func quietRecover() RecoverOptions {
	return RecoverOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSingleBits(t *testing.T) {
	c := corpusOf(
		[]byte{0x80, 0x00, 0x11},
		[]byte{0x00, 0x00, 0x22},
		[]byte{0x00, 0x01, 0x33},
		[]byte{0x80, 0x01, 0x11},
	)

	ps := SingleBits(c)
	require.Len(t, ps, 4)
	// bit 0: (0,1) and (2,3); bit 15: (0,3) and (1,2)
	assert.Equal(t, 0, ps[0].Bit)
	assert.Equal(t, [2]int{0, 1}, [2]int{ps[0].I, ps[0].J})
	assert.Equal(t, uint8(0x33), ps[0].Xor())
	assert.Equal(t, uint8(0x33), ps[0].Add())
	assert.Equal(t, uint8(0xef), ps[0].Sub())
	assert.Equal(t, 0, ps[1].Bit)
	assert.Equal(t, 15, ps[2].Bit)
	assert.Equal(t, 15, ps[3].Bit)

	only := SingleBit(c, 15)
	require.Len(t, only, 2)
	assert.Equal(t, []byte{0x00, 0x01}, only[0].Diff)
	assert.Empty(t, SingleBit(c, 3))
}

func TestNBitsAndCollisions(t *testing.T) {
	c := corpusOf(
		[]byte{0xf0, 0xaa},
		[]byte{0x0f, 0xaa},
		[]byte{0xf1, 0xbb},
	)

	eight := NBits(c, 8)
	require.Len(t, eight, 1)
	assert.Equal(t, -1, eight[0].Bit)
	assert.Equal(t, 8, eight[0].Weight())

	one := NBits(c, 1)
	require.Len(t, one, 1)
	assert.Equal(t, 7, one[0].Bit)

	coll := Collisions(c)
	require.Len(t, coll, 1)
	assert.Equal(t, [2]int{0, 1}, [2]int{coll[0].I, coll[0].J})
}

func TestKeystream(t *testing.T) {
	ks := NewKeystream(4)
	require.NoError(t, ks.Set(1, 0xab))
	assert.ErrorIs(t, ks.Set(1, 0xcd), ErrResolved)
	assert.Error(t, ks.Set(4, 0))

	v, ok := ks.Get(1)
	assert.True(t, ok)
	assert.Equal(t, uint8(0xab), v)
	_, ok = ks.Get(0)
	assert.False(t, ok)

	assert.Equal(t, []int{0, 2, 3}, ks.Unresolved())
	assert.Equal(t, "?? ab ?? ??", ks.String())
}

func testKey(n int) []uint8 {
	key := make([]uint8, n)
	for k := range key {
		key[k] = uint8(k*37 + 11)
	}
	return key
}

func TestRecoverKeystreamSingleRound(t *testing.T) {
	const payload = 4
	key := testKey(payload * 8)

	// a base code and every single bit flip of it
	rows := [][]byte{{0x3c, 0xa5, 0x0f, 0x81}}
	for k := 0; k < payload*8; k++ {
		r := append([]byte(nil), rows[0]...)
		r[k/8] ^= 0x80 >> (k % 8)
		rows = append(rows, r)
	}
	c, err := synth.Append(corpusOf(rows...), synth.Keystream(key, 0x5a))
	require.NoError(t, err)

	rec, err := RecoverKeystream(c, quietRecover())
	require.NoError(t, err)

	assert.Empty(t, rec.Keystream.Unresolved())
	for k, want := range key {
		got, ok := rec.Keystream.Get(k)
		require.True(t, ok)
		assert.Equal(t, want, got, "bit %d", k)
	}
	assert.Equal(t, 1, rec.Rounds)
	assert.LessOrEqual(t, rec.Rounds, payload*8)

	// every bit stripped: all residual checksums collapse to the base
	for _, m := range rec.Residual.Messages {
		assert.Equal(t, uint8(0x5a), m.Chk)
	}
}

func TestRecoverKeystreamTwoRounds(t *testing.T) {
	key := testKey(8)
	// bit 1 only gets a single bit pair once bits 0 and 2 are stripped
	c, err := synth.Append(corpusOf(
		[]byte{0xc0},
		[]byte{0x00},
		[]byte{0xa0},
		[]byte{0x20},
	), synth.Keystream(key, 0x00))
	require.NoError(t, err)

	rec, err := RecoverKeystream(c, quietRecover())
	require.NoError(t, err)

	assert.Equal(t, 2, rec.Rounds)
	assert.Equal(t, [][]int{{0, 2}, {1}}, rec.Resolved)
	for _, k := range []int{0, 1, 2} {
		got, ok := rec.Keystream.Get(k)
		require.True(t, ok)
		assert.Equal(t, key[k], got, "bit %d", k)
	}
	assert.Equal(t, []int{3, 4, 5, 6, 7}, rec.Keystream.Unresolved())
}

func TestRecoverKeystreamRandomCorpus(t *testing.T) {
	key := testKey(16)
	// 3000 random 16 bit payloads give about 68 single bit pairs per position
	c, err := synth.WithKeystream(3000, 2, 12, key, 0x77)
	require.NoError(t, err)

	rec, err := RecoverKeystream(c, quietRecover())
	require.NoError(t, err)

	assert.Empty(t, rec.Keystream.Unresolved())
	for k := range key {
		got, ok := rec.Keystream.Get(k)
		require.True(t, ok, "bit %d", k)
		assert.Equal(t, key[k], got, "bit %d", k)
	}
	assert.GreaterOrEqual(t, rec.Rounds, 1)
	assert.LessOrEqual(t, rec.Rounds, 16)

	for _, m := range rec.Residual.Messages {
		assert.Equal(t, uint8(0x77), m.Chk)
	}
}

func TestRecoverKeystreamRejectsShortCorpus(t *testing.T) {
	_, err := RecoverKeystream(corpusOf([]byte{0x01}), quietRecover())
	assert.ErrorIs(t, err, codes.ErrMessageTooShort)
}
