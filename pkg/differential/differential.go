// Package differential compares pairs of codes: which pairs differ in a single bit or in n bits,
// which share a checksum, and how a per-bit keystream can be voted out of those pairs.
package differential

import (
	"sort"

	"github.com/Davincible/checkrev/pkg/bits"
	"github.com/Davincible/checkrev/pkg/codes"
)

// Pair is two codes i < j and how they differ. Bit is the flipped payload bit counted MSB-first
// for single bit pairs, -1 otherwise.
type Pair struct {
	I, J       int
	Bit        int
	Diff       []byte
	ChkI, ChkJ uint8
}

func (p Pair) Xor() uint8 { return p.ChkI ^ p.ChkJ }
func (p Pair) Add() uint8 { return p.ChkI + p.ChkJ }
func (p Pair) Sub() uint8 { return p.ChkI - p.ChkJ }

// Weight is the number of differing payload bits.
func (p Pair) Weight() int {
	w := 0
	for _, b := range p.Diff {
		w += bits.Popcount(uint(b))
	}
	return w
}

func diff(a, b []byte) []byte {
	d := make([]byte, len(a))
	for i := range a {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// singleBit returns the only set bit of d, or -1.
func singleBit(d []byte) int {
	pos := -1
	for i, b := range d {
		if b == 0 {
			continue
		}
		if pos >= 0 || bits.Popcount(uint(b)) != 1 {
			return -1
		}
		k := 0
		for b&0x80 == 0 {
			b <<= 1
			k++
		}
		pos = i*8 + k
	}
	return pos
}

// pairs calls fn for every i < j over the payloads in front of the 8 bit checksum.
func pairs(c *codes.Corpus, fn func(p Pair)) {
	n := c.PayloadLen(1)
	for i := range c.Messages {
		mi := &c.Messages[i]
		for j := i + 1; j < len(c.Messages); j++ {
			mj := &c.Messages[j]
			fn(Pair{
				I:    i,
				J:    j,
				Bit:  -1,
				Diff: diff(mi.Payload(n), mj.Payload(n)),
				ChkI: mi.Chk,
				ChkJ: mj.Chk,
			})
		}
	}
}

// SingleBits returns every pair whose payloads differ in exactly one bit, ordered by bit then
// by pair.
func SingleBits(c *codes.Corpus) []Pair {
	var out []Pair
	pairs(c, func(p Pair) {
		if k := singleBit(p.Diff); k >= 0 {
			p.Bit = k
			out = append(out, p)
		}
	})
	sort.SliceStable(out, func(a, b int) bool { return out[a].Bit < out[b].Bit })
	return out
}

// SingleBit returns the pairs whose payloads differ exactly in bit k.
func SingleBit(c *codes.Corpus, k int) []Pair {
	var out []Pair
	pairs(c, func(p Pair) {
		if singleBit(p.Diff) == k {
			p.Bit = k
			out = append(out, p)
		}
	})
	return out
}

// NBits returns the pairs whose payloads differ in exactly n bits.
func NBits(c *codes.Corpus, n int) []Pair {
	var out []Pair
	pairs(c, func(p Pair) {
		if p.Weight() == n {
			if n == 1 {
				p.Bit = singleBit(p.Diff)
			}
			out = append(out, p)
		}
	})
	return out
}

// Collisions returns the pairs sharing a checksum, whatever their payloads.
func Collisions(c *codes.Corpus) []Pair {
	var out []Pair
	pairs(c, func(p Pair) {
		if p.ChkI == p.ChkJ {
			out = append(out, p)
		}
	})
	return out
}
