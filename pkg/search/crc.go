package search

import (
	"fmt"

	"github.com/Davincible/checkrev/pkg/bits"
	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/job"
)

// polysPerJob is how many polynomials one CRC job scans.
const polysPerJob = 256

// CRCSpace bounds the CRC search, inclusive.
type CRCSpace struct {
	Width            int // 8 or 16
	PolyMin, PolyMax uint16
	InitMin, InitMax uint16
}

// DefaultCRCSpace scans every non-zero polynomial and every init for the width.
func DefaultCRCSpace(width int) CRCSpace {
	if width == 16 {
		return CRCSpace{Width: 16, PolyMin: 1, PolyMax: 0xffff, InitMin: 0, InitMax: 0xffff}
	}
	return CRCSpace{Width: 8, PolyMin: 1, PolyMax: 0xff, InitMin: 0, InitMax: 0xff}
}

func (s CRCSpace) validate() error {
	switch s.Width {
	case 8:
		if s.PolyMax > 0xff || s.InitMax > 0xff {
			return fmt.Errorf("crc8 space exceeds 8 bits: poly max 0x%x, init max 0x%x", s.PolyMax, s.InitMax)
		}
	case 16:
	default:
		return fmt.Errorf("unsupported crc width %d", s.Width)
	}
	if s.PolyMin > s.PolyMax || s.InitMin > s.InitMax {
		return fmt.Errorf("empty crc space")
	}
	return nil
}

func crc8(msg []byte, poly, init uint16) uint16 {
	return uint16(bits.CRC8(msg, uint8(poly), uint8(init)))
}

func chk8(v view, i int) uint16  { return uint16(v.chk8[i]) }
func chk16(v view, i int) uint16 { return v.chk16[i] }

// crcFunc returns the MSB-first CRC of the width and the matching checksum view.
func crcFunc(width int) (func(msg []byte, poly, init uint16) uint16, func(v view, i int) uint16) {
	if width == 16 {
		return bits.CRC16, chk16
	}
	return crc8, chk8
}

// CRC runs the two phase CRC search. Phase one fixes init to zero and votes on the xor residual
// of each polynomial: for a fixed length the init only adds a constant, so the right polynomial
// agrees whatever the init. Phase two scans the init of every accepted polynomial for one that
// leaves no residual; without one the phase one residual is reported as a final xor.
func CRC(c *codes.Corpus, space CRCSpace, opts Options) error {
	if err := space.validate(); err != nil {
		return err
	}
	width := space.Width / 8
	if err := c.Validate(width); err != nil {
		return err
	}
	opts = opts.withDefaults(DefaultDigestThreshold)
	v := newView(c, width)
	crc, chk := crcFunc(space.Width)

	polys := int(space.PolyMax) - int(space.PolyMin) + 1
	count := (polys + polysPerJob - 1) / polysPerJob
	opts.Logger.Info("crc search", "width", space.Width, "jobs", count, "codes", len(v.payloads))

	opts.run(job.Func(func(i int) int {
		if i < 0 {
			return count
		}
		first := int(space.PolyMin) + i*polysPerJob
		last := min(first+polysPerJob-1, int(space.PolyMax))
		for p := first; p <= last; p++ {
			crcPoly(v, crc, chk, uint16(p), space, opts)
		}
		return 0
	}))
	return nil
}

func crcPoly(v view, crc func([]byte, uint16, uint16) uint16, chk func(view, int) uint16,
	poly uint16, space CRCSpace, opts Options,
) {
	total := len(v.payloads)
	ref := crc(v.payloads[0], poly, 0) ^ chk(v, 0)
	matches := 1
	for i := 1; i < total; i++ {
		if crc(v.payloads[i], poly, 0)^chk(v, i) == ref {
			matches++
		}
	}
	if !opts.accepts(matches, total) {
		return
	}

	name := fmt.Sprintf("crc%d", space.Width)
	digits := space.Width / 4
	for init := int(space.InitMin); init <= int(space.InitMax); init++ {
		if crc(v.payloads[0], poly, uint16(init)) != chk(v, 0) {
			continue
		}
		exact := 1
		for i := 1; i < total; i++ {
			if crc(v.payloads[i], poly, uint16(init)) == chk(v, i) {
				exact++
			}
		}
		if opts.accepts(exact, total) {
			opts.Sink.Report(Found{
				Algorithm: name,
				Params:    fmt.Sprintf("poly=0x%0*x, init=0x%0*x", digits, poly, digits, init),
				Op:        Xor,
				Width:     space.Width,
				Matches:   exact,
				Total:     total,
			})
			return
		}
	}

	opts.Sink.Report(Found{
		Algorithm: name,
		Params:    fmt.Sprintf("poly=0x%0*x, init=0x%0*x", digits, poly, digits, 0),
		Op:        Xor,
		Residual:  ref,
		Width:     space.Width,
		Matches:   matches,
		Total:     total,
	})
}

// CheckCRC recomputes the CRC over each whole code, checksum included, and marks the rows whose
// result differs from residue with a "BAD CRC" annotation. It returns the annotated corpus and
// the number of bad rows.
func CheckCRC(c *codes.Corpus, width int, poly, init, residue uint16) (*codes.Corpus, int, error) {
	if err := c.Validate(width / 8); err != nil {
		return nil, 0, err
	}
	if width != 8 && width != 16 {
		return nil, 0, fmt.Errorf("unsupported crc width %d", width)
	}
	crc, _ := crcFunc(width)
	out := c.Clone()
	bad := 0
	for i := range out.Messages {
		m := &out.Messages[i]
		if crc(m.Payload(out.Len), poly, init) != residue {
			m.Comment = "BAD CRC"
			bad++
		}
	}
	return out, bad, nil
}
