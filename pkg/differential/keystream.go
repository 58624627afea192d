package differential

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Davincible/checkrev/pkg/codes"
)

// ErrResolved is returned when a keystream position is set twice.
var ErrResolved = errors.New("keystream position already resolved")

// Keystream maps payload bit positions to the checksum byte each one contributes. Positions
// are only ever added.
type Keystream struct {
	keys  []uint8
	known []bool
}

// NewKeystream returns an unresolved keystream over n bit positions.
func NewKeystream(n int) *Keystream {
	return &Keystream{keys: make([]uint8, n), known: make([]bool, n)}
}

// Len is the number of bit positions.
func (k *Keystream) Len() int {
	return len(k.keys)
}

// Set resolves position pos.
func (k *Keystream) Set(pos int, key uint8) error {
	if pos < 0 || pos >= len(k.keys) {
		return fmt.Errorf("keystream position %d out of range 0..%d", pos, len(k.keys)-1)
	}
	if k.known[pos] {
		return fmt.Errorf("%w: %d", ErrResolved, pos)
	}
	k.keys[pos] = key
	k.known[pos] = true
	return nil
}

// Get returns the key at pos and whether it is resolved.
func (k *Keystream) Get(pos int) (uint8, bool) {
	if pos < 0 || pos >= len(k.keys) {
		return 0, false
	}
	return k.keys[pos], k.known[pos]
}

// Unresolved lists the positions without a key.
func (k *Keystream) Unresolved() []int {
	var out []int
	for i, ok := range k.known {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

// String renders one hex byte per position, "??" where unresolved.
func (k *Keystream) String() string {
	parts := make([]string, len(k.keys))
	for i, key := range k.keys {
		if k.known[i] {
			parts[i] = fmt.Sprintf("%02x", key)
		} else {
			parts[i] = "??"
		}
	}
	return strings.Join(parts, " ")
}

// RecoverOptions tunes keystream recovery.
type RecoverOptions struct {
	// Threshold is the share of a position's colliding pairs the dominant checksum xor must
	// exceed. Zero selects 0.5.
	Threshold float64
	Logger    *slog.Logger
}

// Recovery is the outcome of RecoverKeystream.
type Recovery struct {
	Keystream *Keystream
	// Residual is the corpus with every resolved bit cleared and its key folded out of the
	// checksum.
	Residual *codes.Corpus
	Rounds   int
	// Resolved lists the positions resolved in each round.
	Resolved [][]int
}

// RecoverKeystream votes a per-bit keystream out of single bit pairs. Each round, every
// unresolved position takes the checksum xor that more than Threshold of its pairs agree on.
// The resolved bits are then cleared from every code that has them set and their keys are
// xored out of the checksum, which can expose new single bit pairs for the next round. It stops
// when a round finds no pairs, resolves nothing, or after one round per payload bit.
func RecoverKeystream(c *codes.Corpus, opts RecoverOptions) (*Recovery, error) {
	if err := c.Validate(1); err != nil {
		return nil, err
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 0.5
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	payload := c.PayloadLen(1)
	bitLen := payload * 8
	rec := &Recovery{
		Keystream: NewKeystream(bitLen),
		Residual:  c.Clone(),
	}

	for rec.Rounds < bitLen {
		hist := make([][256]int, bitLen)
		seen := make([]int, bitLen)
		collided := false
		for _, p := range SingleBits(rec.Residual) {
			if _, ok := rec.Keystream.Get(p.Bit); ok {
				continue
			}
			hist[p.Bit][p.Xor()]++
			seen[p.Bit]++
			collided = true
		}
		if !collided {
			break
		}

		var resolved []int
		for k := 0; k < bitLen; k++ {
			if seen[k] == 0 {
				continue
			}
			key, top := 0, 0
			for v, n := range hist[k] {
				if n > top {
					key, top = v, n
				}
			}
			if float64(top) > opts.Threshold*float64(seen[k]) {
				if err := rec.Keystream.Set(k, uint8(key)); err != nil {
					return nil, err
				}
				resolved = append(resolved, k)
			}
		}
		if len(resolved) == 0 {
			break
		}

		rec.Residual = strip(rec.Residual, rec.Keystream, resolved, payload)
		rec.Rounds++
		rec.Resolved = append(rec.Resolved, resolved)
		opts.Logger.Debug("keystream round", "round", rec.Rounds, "resolved", len(resolved))
	}

	opts.Logger.Info("keystream recovery done", "rounds", rec.Rounds,
		"resolved", bitLen-len(rec.Keystream.Unresolved()), "bits", bitLen)
	return rec, nil
}

// strip clears the resolved bits and folds their keys out of the checksum byte.
func strip(c *codes.Corpus, ks *Keystream, resolved []int, payload int) *codes.Corpus {
	out := c.Clone()
	for i := range out.Messages {
		m := &out.Messages[i]
		if m.Len <= payload {
			continue
		}
		for _, k := range resolved {
			mask := uint8(0x80) >> (k % 8)
			if m.Data[k/8]&mask == 0 {
				continue
			}
			key, _ := ks.Get(k)
			m.Data[k/8] &^= mask
			m.Data[m.Len-1] ^= key
		}
		m.SyncChecksums()
	}
	return out
}
