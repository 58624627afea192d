package search

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Op combines a candidate output with the observed checksum into a residual.
type Op uint8

const (
	Xor Op = iota
	Add
	Sub
)

// Ops lists every combine operator.
func Ops() []Op {
	return []Op{Xor, Add, Sub}
}

func (o Op) String() string {
	switch o {
	case Xor:
		return "^"
	case Add:
		return "+"
	case Sub:
		return "-"
	}
	return "?"
}

// Apply8 combines an 8 bit output with the checksum.
func (o Op) Apply8(v, chk uint8) uint8 {
	switch o {
	case Add:
		return v + chk
	case Sub:
		return v - chk
	}
	return v ^ chk
}

// Apply16 combines a 16 bit output with the checksum.
func (o Op) Apply16(v, chk uint16) uint16 {
	switch o {
	case Add:
		return v + chk
	case Sub:
		return v - chk
	}
	return v ^ chk
}

// Found is one accepted candidate: the algorithm and parameters, how its output combines with
// the checksum, and how many messages agree on the residual.
type Found struct {
	Algorithm string
	Variant   string // structural variant or corpus transform, empty for none
	Params    string
	Output    string // "sum" or "xor" for two output digests
	Checksum  string // what the output is combined with, "checksum" when empty
	Op        Op
	Residual  uint16
	Width     int // residual width in bits
	Matches   int
	Total     int
}

// Percent is the share of the corpus agreeing on the residual.
func (f Found) Percent() float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Matches) * 100 / float64(f.Total)
}

func (f Found) body() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%s)", f.Algorithm, f.Params)
	if f.Variant != "" {
		fmt.Fprintf(&sb, " [%s]", f.Variant)
	}
	if f.Output != "" {
		sb.WriteString(" " + f.Output)
	}
	chk := f.Checksum
	if chk == "" {
		chk = "checksum"
	}
	digits := 2
	if f.Width > 8 {
		digits = 4
	}
	fmt.Fprintf(&sb, " %s %s == 0x%0*x", f.Op, chk, digits, f.Residual)
	return sb.String()
}

// String renders the report line, e.g.
// "Found: crc8(poly=0x31, init=0xff) ^ checksum == 0x00 (100.0%)".
func (f Found) String() string {
	return fmt.Sprintf("Found: %s (%.1f%%)", f.body(), f.Percent())
}

// Sink receives reports. Searches call Report from several goroutines.
type Sink interface {
	Report(f Found)
}

type discard struct{}

func (discard) Report(Found) {}

// Collector keeps every report.
type Collector struct {
	mu      sync.Mutex
	results []Found
}

func (c *Collector) Report(f Found) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, f)
}

// Results returns the reports in arrival order.
func (c *Collector) Results() []Found {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Found(nil), c.results...)
}

// Set returns the sorted distinct report lines. Parallel searches report in arbitrary order, so
// this is what two runs should be compared by.
func (c *Collector) Set() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]struct{}, len(c.results))
	for _, f := range c.results {
		seen[f.String()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Printer writes report lines as they arrive.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Report(f Found) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)

	p.mu.Lock()
	defer p.mu.Unlock()
	green.Fprint(p.w, "Found: ")
	fmt.Fprint(p.w, f.body()+" ")
	pct := fmt.Sprintf("(%.1f%%)", f.Percent())
	if f.Matches == f.Total {
		green.Fprintln(p.w, pct)
	} else {
		yellow.Fprintln(p.w, pct)
	}
}

// Multi fans reports out to several sinks.
type Multi []Sink

func (m Multi) Report(f Found) {
	for _, s := range m {
		s.Report(f)
	}
}
