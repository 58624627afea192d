package search

import (
	"fmt"
	"sync/atomic"

	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/digest"
	"github.com/Davincible/checkrev/pkg/job"
	"github.com/Davincible/checkrev/pkg/transform"
)

// Space8 bounds the generator and key scan of the 8 bit digest search, inclusive.
type Space8 struct {
	GenMin, GenMax uint8
	KeyMin, KeyMax uint8
}

// FullSpace8 scans every generator and key.
func FullSpace8() Space8 {
	return Space8{GenMin: 0, GenMax: 0xff, KeyMin: 0, KeyMax: 0xff}
}

type best8 struct {
	matches  int
	gen, key uint8
	residual uint8
}

// Digest8 runs every family and structural variant over the space against the trailing
// checksum byte. Message 0 is the reference: a candidate's agreement is the number of messages
// whose residual equals message 0's. Per job, the best (gen, key) for each output and operator
// is reported when it clears the threshold.
func Digest8(c *codes.Corpus, families []digest.Family, space Space8, opts Options) error {
	if err := c.Validate(1); err != nil {
		return err
	}
	opts = opts.withDefaults(DefaultDigestThreshold)
	v := newView(c, 1)

	type task struct {
		family  digest.Family
		variant digest.Variant
	}
	var tasks []task
	for _, f := range families {
		for _, vr := range f.Variants() {
			tasks = append(tasks, task{f, vr})
		}
	}

	opts.Logger.Info("digest search", "jobs", len(tasks), "codes", len(v.payloads), "bytes", c.PayloadLen(1))
	opts.run(job.Func(func(i int) int {
		if i < 0 {
			return len(tasks)
		}
		digest8Job(v, tasks[i].family, tasks[i].variant, space, opts)
		return 0
	}))
	return nil
}

func digest8Job(v view, f digest.Family, vr digest.Variant, space Space8, opts Options) {
	outputs := 2
	if !f.UsesGenerator() {
		outputs = 1
	}
	genMax := int(space.GenMax)
	if !f.UsesGenerator() {
		genMax = int(space.GenMin)
	}
	ops := Ops()
	total := len(v.payloads)

	var best [2][3]best8
	var ref [2][3]uint8
	var count [2][3]int

	for g := int(space.GenMin); g <= genMax; g++ {
		for k := int(space.KeyMin); k <= int(space.KeyMax); k++ {
			gen, key := uint8(g), uint8(k)

			s, x := f.Sum8(v.payloads[0], gen, key, vr)
			out := [2]uint8{s, x}
			for o := 0; o < outputs; o++ {
				for j, op := range ops {
					ref[o][j] = op.Apply8(out[o], v.chk8[0])
					count[o][j] = 1
				}
			}

			for i := 1; i < total; i++ {
				s, x := f.Sum8(v.payloads[i], gen, key, vr)
				out := [2]uint8{s, x}
				for o := 0; o < outputs; o++ {
					for j, op := range ops {
						if op.Apply8(out[o], v.chk8[i]) == ref[o][j] {
							count[o][j]++
						}
					}
				}
			}

			for o := 0; o < outputs; o++ {
				for j := range ops {
					if count[o][j] > best[o][j].matches {
						best[o][j] = best8{matches: count[o][j], gen: gen, key: key, residual: ref[o][j]}
					}
				}
			}
		}
	}

	names := [2]string{"sum", "xor"}
	for o := 0; o < outputs; o++ {
		for j, op := range ops {
			b := best[o][j]
			if !opts.accepts(b.matches, total) {
				continue
			}
			params := fmt.Sprintf("gen=0x%02x, key=0x%02x", b.gen, b.key)
			output := names[o]
			if !f.UsesGenerator() {
				params = fmt.Sprintf("key=0x%02x", b.key)
				output = ""
			}
			opts.Sink.Report(Found{
				Algorithm: f.String(),
				Variant:   vr.String(),
				Params:    params,
				Output:    output,
				Op:        op,
				Residual:  uint16(b.residual),
				Width:     8,
				Matches:   b.matches,
				Total:     total,
			})
		}
	}
	opts.Logger.Debug("digest job done", "family", f.String(), "variant", vr.String())
}

// Space16 configures the 16 bit digest search.
type Space16 struct {
	Family         digest.Family // Galois or Fibonacci
	Variants       []digest.Variant
	GenMin, GenMax uint16
	KeyMin, KeyMax uint16

	// StopOnFound stops claiming new generators once any candidate was reported. Jobs already
	// running finish, so a few extra reports near the stop are possible.
	StopOnFound bool

	// Swap runs a second pass with the checksum bytes swapped.
	Swap bool
}

// DefaultSpace16 is the classic search: a Galois register shifting right, bits walked MSB
// first, generators with the top bit set, every key, both checksum byte orders.
func DefaultSpace16() Space16 {
	return Space16{
		Family:      digest.Galois,
		Variants:    []digest.Variant{digest.ReflectBits},
		GenMin:      0x8000,
		GenMax:      0xffff,
		KeyMin:      0,
		KeyMax:      0xffff,
		StopOnFound: true,
		Swap:        true,
	}
}

// Digest16 searches 16 bit LFSR digests against the trailing two checksum bytes. Only exact
// agreement across the whole corpus is reported; a candidate is abandoned at the first message
// that disagrees on every output and operator.
func Digest16(c *codes.Corpus, space Space16, opts Options) error {
	if err := c.Validate(2); err != nil {
		return err
	}
	var sum16 func(msg []byte, gen, key uint16, v digest.Variant) (uint16, uint16)
	switch space.Family {
	case digest.Galois:
		sum16 = digest.Galois16
	case digest.Fibonacci:
		sum16 = digest.Fibonacci16
	default:
		return fmt.Errorf("no 16 bit %s digest", space.Family)
	}
	if len(space.Variants) == 0 {
		space.Variants = []digest.Variant{digest.ReflectBits}
	}
	opts = opts.withDefaults(1)

	type phase struct {
		corpus *codes.Corpus
		suffix string
	}
	phases := []phase{{c, ""}}
	if space.Swap {
		phases = append(phases, phase{transform.SwapChecksum16(c), "BYTE_SWAP"})
	}

	gens := int(space.GenMax) - int(space.GenMin) + 1
	for _, p := range phases {
		v := newView(p.corpus, 2)
		var found atomic.Bool

		count := gens * len(space.Variants)
		opts.Logger.Info("digest16 search", "jobs", count, "codes", len(v.payloads), "swapped", p.suffix != "")
		opts.run(job.Func(func(i int) int {
			if i < 0 {
				return count
			}
			if space.StopOnFound && found.Load() {
				return 0
			}
			vr := space.Variants[i/gens]
			gen := uint16(int(space.GenMin) + i%gens)
			if digest16Job(v, sum16, gen, vr, space, p.suffix, opts) {
				found.Store(true)
			}
			return 0
		}))
	}
	return nil
}

func digest16Job(v view, sum16 func([]byte, uint16, uint16, digest.Variant) (uint16, uint16),
	gen uint16, vr digest.Variant, space Space16, suffix string, opts Options,
) bool {
	ops := Ops()
	total := len(v.payloads)
	names := [2]string{"sum", "xor"}
	variant := vr.String()
	if suffix != "" {
		variant += " " + suffix
	}

	reported := false
	for k := int(space.KeyMin); k <= int(space.KeyMax); k++ {
		key := uint16(k)
		s, x := sum16(v.payloads[0], gen, key, vr)
		out := [2]uint16{s, x}
		var ref [2][3]uint16
		live := [2][3]bool{{true, true, true}, {true, true, true}}
		for o := range out {
			for j, op := range ops {
				ref[o][j] = op.Apply16(out[o], v.chk16[0])
			}
		}

		alive := true
		for i := 1; i < total && alive; i++ {
			s, x := sum16(v.payloads[i], gen, key, vr)
			out := [2]uint16{s, x}
			alive = false
			for o := range out {
				for j, op := range ops {
					live[o][j] = live[o][j] && op.Apply16(out[o], v.chk16[i]) == ref[o][j]
					alive = alive || live[o][j]
				}
			}
		}
		if !alive {
			continue
		}

		for o := range out {
			for j, op := range ops {
				if !live[o][j] {
					continue
				}
				reported = true
				opts.Sink.Report(Found{
					Algorithm: space.Family.String() + "16",
					Variant:   variant,
					Params:    fmt.Sprintf("gen=0x%04x, key=0x%04x", gen, key),
					Output:    names[o],
					Op:        op,
					Residual:  ref[o][j],
					Width:     16,
					Matches:   total,
					Total:     total,
				})
			}
		}
	}
	return reported
}
