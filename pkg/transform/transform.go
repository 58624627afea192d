// Package transform normalizes a corpus at the bit level before a search. Every transform
// returns a new corpus version and leaves its input untouched, so a search running on one
// version never observes another being built.
package transform

import (
	"fmt"

	"github.com/Davincible/checkrev/pkg/bits"
	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/zeebo/xxh3"
)

// Invert flips every significant bit of each message, stopping exactly at BitLen, and both
// checksum views.
func Invert(c *codes.Corpus) *codes.Corpus {
	out := c.Clone()
	for i := range out.Messages {
		m := &out.Messages[i]
		whole := m.BitLen / 8
		for k := 0; k < whole; k++ {
			m.Data[k] ^= 0xff
		}
		if rem := m.BitLen % 8; rem != 0 {
			m.Data[whole] ^= uint8(0xff) << uint(8-rem)
		}
		m.Chk ^= 0xff
		m.Chk16 ^= 0xffff
	}
	return out
}

// Reflect reverses the bit order of every populated byte.
func Reflect(c *codes.Corpus) *codes.Corpus {
	out := c.Clone()
	for i := range out.Messages {
		m := &out.Messages[i]
		bits.ReflectBytes(m.Bytes())
		m.SyncChecksums()
	}
	return out
}

// ReflectNibbles reverses the bit order of every populated nibble.
func ReflectNibbles(c *codes.Corpus) *codes.Corpus {
	out := c.Clone()
	for i := range out.Messages {
		m := &out.Messages[i]
		bits.ReflectNibbles(m.Bytes())
		m.SyncChecksums()
	}
	return out
}

// shiftRight moves the whole buffer right by n bits. Bits pushed past the capacity are lost.
func shiftRight(buf *[codes.Capacity]byte, n int) {
	if n <= 0 {
		return
	}
	bytes, rem := n/8, uint(n%8)
	for k := codes.Capacity - 1; k >= 0; k-- {
		var v uint8
		if src := k - bytes; src >= 0 {
			v = buf[src] >> rem
			if rem != 0 && src >= 1 {
				v |= buf[src-1] << (8 - rem)
			}
		}
		buf[k] = v
	}
}

// shiftLeft moves the whole buffer left by n bits, zero filling from the end.
func shiftLeft(buf *[codes.Capacity]byte, n int) {
	if n <= 0 {
		return
	}
	bytes, rem := n/8, uint(n%8)
	for k := 0; k < codes.Capacity; k++ {
		var v uint8
		if src := k + bytes; src < codes.Capacity {
			v = buf[src] << rem
			if rem != 0 && src+1 < codes.Capacity {
				v |= buf[src+1] >> (8 - rem)
			}
		}
		buf[k] = v
	}
}

func clampLen(n int) int {
	if n < 0 {
		return 0
	}
	if n > codes.Capacity {
		return codes.Capacity
	}
	return n
}

// Shift moves every message right by bits (or left for negative bits). The shared code length
// grows or shrinks by the whole bytes moved; the sub-byte remainder carries across byte
// boundaries and spilled bits stay in the buffer, counted by BitLen, so shifting back restores
// the payload and its bit length.
func Shift(c *codes.Corpus, n int) *codes.Corpus {
	out := c.Clone()
	if n == 0 {
		return out
	}
	delta := n / 8
	for i := range out.Messages {
		m := &out.Messages[i]
		if n > 0 {
			shiftRight(&m.Data, n)
		} else {
			shiftLeft(&m.Data, -n)
		}
		m.Len = clampLen(m.Len + delta)
		m.BitLen = min(max(m.BitLen+n, 0), codes.Capacity*8)
		m.SyncChecksums()
	}
	out.Len = clampLen(out.Len + delta)
	return out
}

// Trim cuts bits off the end of every message: whole bytes shrink the length and the remainder
// is masked off the new last byte. Negative bits pad the end with zero bytes instead.
func Trim(c *codes.Corpus, n int) *codes.Corpus {
	out := c.Clone()
	switch {
	case n > 0:
		bytes := n / 8
		mask := uint8(0xff << uint(n%8))
		out.Len = clampLen(out.Len - bytes)
		for i := range out.Messages {
			m := &out.Messages[i]
			m.Len = clampLen(m.Len - bytes)
			for k := m.Len; k < codes.Capacity; k++ {
				m.Data[k] = 0
			}
			if m.Len > 0 {
				m.Data[m.Len-1] &= mask
			}
			m.BitLen = min(m.BitLen, m.Len*8)
			m.SyncChecksums()
		}
	case n < 0:
		bytes := (-n + 7) / 8
		out.Len = clampLen(out.Len + bytes)
		for i := range out.Messages {
			m := &out.Messages[i]
			grown := clampLen(m.Len + bytes)
			for k := m.Len; k < grown; k++ {
				m.Data[k] = 0
			}
			m.BitLen = min(m.BitLen, m.Len*8)
			m.Len = grown
			m.SyncChecksums()
		}
	}
	return out
}

// window returns 64 bits of m starting at bit offset pos, MSB-first, zero filled past the buffer.
func window(m *codes.Message, pos int) uint64 {
	first, rem := pos/8, uint(pos%8)
	at := func(i int) uint64 {
		if i < codes.Capacity {
			return uint64(m.Data[i])
		}
		return 0
	}
	var w uint64
	for i := 0; i < 8; i++ {
		w = w<<8 | at(first+i)
	}
	if rem != 0 {
		w = w<<rem | at(first+8)>>(8-rem)
	}
	return w
}

// FindOffset returns the first bit offset at which pattern occurs in m, or -1.
func FindOffset(m, pattern *codes.Message) (int, error) {
	if pattern.BitLen > 64 {
		return -1, fmt.Errorf("%w (%d bits, max 64 bits)", codes.ErrPatternTooLong, pattern.BitLen)
	}
	if pattern.BitLen == 0 {
		return 0, nil
	}
	mask := ^uint64(0) << uint(64-pattern.BitLen)
	patt := window(pattern, 0) & mask
	for pos := 0; pos <= m.BitLen-pattern.BitLen; pos++ {
		if (window(m, pos)^patt)&mask == 0 {
			return pos, nil
		}
	}
	return -1, nil
}

// Sync anchors pattern at bit 0 of every message. Messages without the pattern are dropped,
// keeping the relative order of the rest. The common length becomes the shortest kept message.
func Sync(c *codes.Corpus, pattern codes.Message) (*codes.Corpus, error) {
	if pattern.BitLen > 64 {
		return nil, fmt.Errorf("%w (%d bits, max 64 bits)", codes.ErrPatternTooLong, pattern.BitLen)
	}
	out := c.Clone()
	if pattern.BitLen == 0 {
		return out, nil
	}

	kept := out.Messages[:0]
	shortest := -1
	for i := range out.Messages {
		m := out.Messages[i]
		offs, err := FindOffset(&m, &pattern)
		if err != nil {
			return nil, err
		}
		if offs < 0 {
			continue
		}
		shiftLeft(&m.Data, offs)
		m.BitLen -= offs
		m.Len = (m.BitLen + 7) / 8
		for k := m.Len; k < codes.Capacity; k++ {
			m.Data[k] = 0
		}
		m.SyncChecksums()
		if shortest < 0 || m.Len < shortest {
			shortest = m.Len
		}
		kept = append(kept, m)
	}
	out.Messages = kept
	if shortest >= 0 {
		out.Len = shortest
	}
	return out, nil
}

// SwapChecksum16 swaps the byte order of every 16 bit checksum view.
func SwapChecksum16(c *codes.Corpus) *codes.Corpus {
	out := c.Clone()
	for i := range out.Messages {
		m := &out.Messages[i]
		m.Chk16 = m.Chk16<<8 | m.Chk16>>8
	}
	return out
}

// Dedup drops repeated captures: rows whose bytes at the common length match an earlier row.
// It returns the new corpus and the number of rows dropped.
func Dedup(c *codes.Corpus) (*codes.Corpus, int) {
	out := c.Clone()
	seen := make(map[uint64][]int, len(out.Messages))
	kept := out.Messages[:0]
	for i := range out.Messages {
		m := out.Messages[i]
		payload := m.Payload(out.Len)
		h := xxh3.Hash(payload)

		dup := false
		for _, j := range seen[h] {
			if string(kept[j].Payload(out.Len)) == string(payload) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[h] = append(seen[h], len(kept))
		kept = append(kept, m)
	}
	dropped := len(out.Messages) - len(kept)
	out.Messages = kept
	return out, dropped
}
