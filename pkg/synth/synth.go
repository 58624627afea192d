// Package synth builds deterministic corpora with known checksums, keystreams and sync words.
// They drive the ground truth tests of the searches and the gen command.
package synth

import (
	"encoding/binary"
	"fmt"

	"github.com/Davincible/checkrev/pkg/bits"
	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/digest"
	"golang.org/x/crypto/chacha20"
)

// Source is a seeded byte stream. The same seed always yields the same bytes.
type Source struct {
	cipher *chacha20.Cipher
}

// NewSource keys a ChaCha20 stream with seed.
func NewSource(seed uint64) *Source {
	key := make([]byte, chacha20.KeySize)
	binary.LittleEndian.PutUint64(key, seed)
	c, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSize))
	if err != nil {
		// key and nonce sizes are fixed above
		panic(err)
	}
	return &Source{cipher: c}
}

// Read fills p with the next bytes of the stream.
func (s *Source) Read(p []byte) (int, error) {
	clear(p)
	s.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// Byte returns the next byte of the stream.
func (s *Source) Byte() uint8 {
	var b [1]byte
	_, _ = s.Read(b[:])
	return b[0]
}

// Random returns n messages of payloadLen random bytes.
func Random(n, payloadLen int, seed uint64) (*codes.Corpus, error) {
	if payloadLen < 1 || payloadLen > codes.Capacity {
		return nil, fmt.Errorf("payload length %d out of range 1..%d", payloadLen, codes.Capacity)
	}
	src := NewSource(seed)
	c := &codes.Corpus{Len: payloadLen, Messages: make([]codes.Message, n)}
	buf := make([]byte, payloadLen)
	for i := range c.Messages {
		_, _ = src.Read(buf)
		c.Messages[i] = codes.NewMessage(buf)
	}
	return c, nil
}

// Checksum computes the trailing bytes for one payload.
type Checksum func(payload []byte) []byte

// Append returns a copy of c with sum(payload) appended to every message. The payload is the
// first c.Len bytes.
func Append(c *codes.Corpus, sum Checksum) (*codes.Corpus, error) {
	out := c.Clone()
	grow := -1
	for i := range out.Messages {
		m := &out.Messages[i]
		tail := sum(m.Payload(out.Len))
		if out.Len+len(tail) > codes.Capacity {
			return nil, fmt.Errorf("message %d: %d bytes exceed capacity %d", i, out.Len+len(tail), codes.Capacity)
		}
		copy(m.Data[out.Len:], tail)
		m.Len = out.Len + len(tail)
		m.BitLen = m.Len * 8
		m.SyncChecksums()
		grow = len(tail)
	}
	if grow > 0 {
		out.Len += grow
	}
	return out, nil
}

// CRC8 is an MSB-first CRC-8 with a final xor.
func CRC8(poly, init, xorout uint8) Checksum {
	return func(p []byte) []byte {
		return []byte{bits.CRC8(p, poly, init) ^ xorout}
	}
}

// CRC16 is an MSB-first CRC-16 with a final xor, appended big-endian.
func CRC16(poly, init, xorout uint16) Checksum {
	return func(p []byte) []byte {
		v := bits.CRC16(p, poly, init) ^ xorout
		return []byte{uint8(v >> 8), uint8(v)}
	}
}

// AddBytes is the byte sum plus final.
func AddBytes(final uint8) Checksum {
	return func(p []byte) []byte {
		return []byte{uint8(bits.AddBytes(p)) + final}
	}
}

// XorBytes is the byte xor with final.
func XorBytes(final uint8) Checksum {
	return func(p []byte) []byte {
		return []byte{bits.XorBytes(p) ^ final}
	}
}

// Digest8 is a digest family output (the xor accumulation when useXor is set, the sum otherwise)
// xored with final.
func Digest8(f digest.Family, gen, key uint8, v digest.Variant, useXor bool, final uint8) Checksum {
	return func(p []byte) []byte {
		sum, xor := f.Sum8(p, gen, key, v)
		if useXor {
			return []byte{xor ^ final}
		}
		return []byte{sum ^ final}
	}
}

// Keystream xors key[k] into base for every set payload bit k, counting bits MSB-first. key
// must cover every payload bit.
func Keystream(key []uint8, base uint8) Checksum {
	return func(p []byte) []byte {
		chk := base
		for k := 0; k < len(p)*8 && k < len(key); k++ {
			if p[k/8]&(0x80>>(k%8)) != 0 {
				chk ^= key[k]
			}
		}
		return []byte{chk}
	}
}

// WithCRC8 returns n random messages of payloadLen bytes followed by their CRC-8.
func WithCRC8(n, payloadLen int, seed uint64, poly, init, xorout uint8) (*codes.Corpus, error) {
	c, err := Random(n, payloadLen, seed)
	if err != nil {
		return nil, err
	}
	return Append(c, CRC8(poly, init, xorout))
}

// WithCRC16 returns n random messages of payloadLen bytes followed by their big-endian CRC-16.
func WithCRC16(n, payloadLen int, seed uint64, poly, init, xorout uint16) (*codes.Corpus, error) {
	c, err := Random(n, payloadLen, seed)
	if err != nil {
		return nil, err
	}
	return Append(c, CRC16(poly, init, xorout))
}

// WithDigest8 returns n random messages followed by an 8 bit digest.
func WithDigest8(n, payloadLen int, seed uint64, f digest.Family, gen, key uint8, v digest.Variant, useXor bool, final uint8) (*codes.Corpus, error) {
	c, err := Random(n, payloadLen, seed)
	if err != nil {
		return nil, err
	}
	return Append(c, Digest8(f, gen, key, v, useXor, final))
}

// WithKeystream returns n random messages followed by a keystream checksum. key must hold one
// byte per payload bit.
func WithKeystream(n, payloadLen int, seed uint64, key []uint8, base uint8) (*codes.Corpus, error) {
	if len(key) < payloadLen*8 {
		return nil, fmt.Errorf("keystream has %d bytes, need %d", len(key), payloadLen*8)
	}
	c, err := Random(n, payloadLen, seed)
	if err != nil {
		return nil, err
	}
	return Append(c, Keystream(key, base))
}

// WithSyncPrefix places pattern at a random bit offset in [0, maxOffset] in front of every
// message of c. The bits before the pattern are zero, so a pattern starting with a set bit
// first occurs exactly at its offset. It returns the new corpus and the offsets used.
func WithSyncPrefix(c *codes.Corpus, pattern codes.Message, maxOffset int, seed uint64) (*codes.Corpus, []int, error) {
	if maxOffset < 0 {
		return nil, nil, fmt.Errorf("negative offset %d", maxOffset)
	}
	src := NewSource(seed)
	out := c.Clone()
	offsets := make([]int, len(out.Messages))
	for i := range out.Messages {
		m := &out.Messages[i]
		offs := int(src.Byte()) % (maxOffset + 1)
		total := offs + pattern.BitLen + m.BitLen
		if total > codes.Capacity*8 {
			return nil, nil, fmt.Errorf("message %d: %d bits exceed capacity", i, total)
		}

		var w bitWriter
		w.pos = offs
		for k := 0; k < pattern.BitLen; k++ {
			w.put(pattern.Bit(k))
		}
		for k := 0; k < m.BitLen; k++ {
			w.put(m.Bit(k))
		}

		m.Data = w.buf
		m.BitLen = total
		m.Len = (total + 7) / 8
		m.SyncChecksums()
		offsets[i] = offs
	}
	grow := (maxOffset + pattern.BitLen + 7) / 8
	out.Len = min(out.Len+grow, codes.Capacity)
	return out, offsets, nil
}

type bitWriter struct {
	buf [codes.Capacity]byte
	pos int
}

func (w *bitWriter) put(bit bool) {
	if bit {
		w.buf[w.pos/8] |= 0x80 >> (w.pos % 8)
	}
	w.pos++
}
