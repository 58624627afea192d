package search

import (
	"fmt"

	"github.com/Davincible/checkrev/pkg/bits"
	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/digest"
	"github.com/Davincible/checkrev/pkg/job"
	"github.com/Davincible/checkrev/pkg/transform"
)

// SumsSpace selects the optional scans of Sums.
type SumsSpace struct {
	// Masks adds the xor_shift scan over every pair of up and down shift masks.
	Masks bool
}

// window is a run of payload bytes and the index of the byte holding the checksum.
type window struct {
	name     string
	off, len int
	chk      int
}

func sumWindows(n int) []window {
	ws := []window{{"complete", 0, n - 1, n - 1}}
	if n > 2 {
		ws = append(ws,
			window{"skip first", 1, n - 2, n - 1},
			window{"omit last", 0, n - 2, n - 2},
		)
	}
	return ws
}

// mode returns the most common value among vs and how often it occurs. Ties go to the value
// that occurs first.
func mode(vs []uint8) (uint8, int) {
	var counts [256]int
	var first [256]int
	for i, v := range vs {
		if counts[v] == 0 {
			first[v] = i
		}
		counts[v]++
	}
	var best uint8
	top := 0
	for v := range counts {
		c := counts[v]
		if c > top || (c == top && c > 0 && first[v] < first[best]) {
			best, top = uint8(v), c
		}
	}
	return best, top
}

// Sums scans simple byte and nibble sums, the byte xor, zero init CRC-8s and xor-shift folds.
// Each runs over three windows (the complete message, skipping the first byte, omitting the
// last byte) on the corpus as read, inverted, reflected, and inverted and reflected. Unlike the
// digest search the residual is voted by mode over all messages rather than against message 0.
func Sums(c *codes.Corpus, space SumsSpace, opts Options) error {
	if err := c.Validate(1); err != nil {
		return err
	}
	opts = opts.withDefaults(DefaultSumsThreshold)

	inverted := transform.Invert(c)
	versions := []struct {
		name   string
		corpus *codes.Corpus
	}{
		{"", c},
		{"INVERT", inverted},
		{"BYTE_REFLECT", transform.Reflect(c)},
		{"INVERT BYTE_REFLECT", transform.Reflect(inverted)},
	}
	windows := sumWindows(c.Len)

	count := len(versions) * len(windows)
	opts.Logger.Info("sums search", "jobs", count, "codes", len(c.Messages), "bytes", c.Len)
	opts.run(job.Func(func(i int) int {
		if i < 0 {
			return count
		}
		ver := versions[i/len(windows)]
		sumsJob(ver.corpus, ver.name, windows[i%len(windows)], space, opts)
		return 0
	}))
	return nil
}

type sumScan struct {
	name string
	ops  []Op
	fold func(msg []byte) uint8
}

func sumsJob(c *codes.Corpus, variant string, w window, space SumsSpace, opts Options) {
	total := len(c.Messages)
	payloads := make([][]byte, total)
	chks := make([]uint8, total)
	for i := range c.Messages {
		m := &c.Messages[i]
		payloads[i] = m.Payload(c.Len)[w.off : w.off+w.len]
		chks[i] = m.Data[w.chk]
	}
	residuals := make([]uint8, total)

	vote := func(fold func([]byte) uint8, op Op) (uint8, int) {
		for i, p := range payloads {
			residuals[i] = op.Apply8(fold(p), chks[i])
		}
		return mode(residuals)
	}
	report := func(algo, params string, op Op, residual uint8, matches int) {
		if !opts.accepts(matches, total) {
			return
		}
		opts.Sink.Report(Found{
			Algorithm: algo,
			Variant:   variant,
			Params:    params,
			Checksum:  fmt.Sprintf("b[%d]", w.chk),
			Op:        op,
			Residual:  uint16(residual),
			Width:     8,
			Matches:   matches,
			Total:     total,
		})
	}
	span := fmt.Sprintf("b[%d], %d", w.off, w.len)

	scans := []sumScan{
		{"add_bytes", Ops(), func(p []byte) uint8 { return uint8(bits.AddBytes(p)) }},
		{"add_nibbles", Ops(), func(p []byte) uint8 { return uint8(bits.AddNibbles(p)) }},
		{"xor_bytes", []Op{Xor}, bits.XorBytes},
	}
	for _, s := range scans {
		for _, op := range s.ops {
			r, n := vote(s.fold, op)
			report(s.name, span, op, r, n)
		}
	}

	for poly := 1; poly <= 0xff; poly++ {
		p := uint8(poly)
		r, n := vote(func(msg []byte) uint8 { return bits.CRC8(msg, p, 0) }, Xor)
		report("crc8", fmt.Sprintf("%s, poly=0x%02x, init=0x00", span, p), Xor, r, n)
	}

	for shift := -4; shift <= 4; shift++ {
		s := shift
		r, n := vote(func(msg []byte) uint8 { return digest.XorShift(msg, s) }, Xor)
		report("xor_shift", fmt.Sprintf("%s, %d", span, s), Xor, r, n)
	}

	if space.Masks {
		for up := 0; up < 0x80; up++ {
			for down := 0; down < 0x80; down++ {
				u, d := uint8(up), uint8(down)
				r, n := vote(func(msg []byte) uint8 { return digest.XorShiftMask(msg, u, d) }, Xor)
				report("xor_shift_mask", fmt.Sprintf("%s, up=0x%02x, down=0x%02x", span, u, d), Xor, r, n)
			}
		}
	}
	opts.Logger.Debug("sums job done", "variant", variant, "window", w.name)
}

// Weights summarizes the number of set bits per row.
type Weights struct {
	Max, Min int
	Avg      float64
	Bits     int // bits per row
}

func (w Weights) String() string {
	pct := func(v float64) float64 {
		if w.Bits == 0 {
			return 0
		}
		return v * 100 / float64(w.Bits)
	}
	return fmt.Sprintf("Row weights:  Max %d /%d bit (%.1f%%)  Min %d /%d bit (%.1f%%)  Avg %.1f /%d bit (%.1f%%)",
		w.Max, w.Bits, pct(float64(w.Max)), w.Min, w.Bits, pct(float64(w.Min)), w.Avg, w.Bits, pct(w.Avg))
}

// RowWeights counts the set bits of each message at the common length.
func RowWeights(c *codes.Corpus) (Weights, error) {
	if err := c.Validate(0); err != nil {
		return Weights{}, err
	}
	w := Weights{Bits: c.Len * 8, Min: c.Len * 8}
	sum := 0
	for i := range c.Messages {
		weight := 0
		for _, b := range c.Messages[i].Payload(c.Len) {
			weight += bits.Popcount(uint(b))
		}
		w.Max = max(w.Max, weight)
		w.Min = min(w.Min, weight)
		sum += weight
	}
	w.Avg = float64(sum) / float64(len(c.Messages))
	return w, nil
}
