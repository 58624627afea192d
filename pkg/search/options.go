// Package search drives the candidate checksum families over their parameter spaces and votes
// on the residual each candidate leaves against the observed checksums.
package search

import (
	"log/slog"

	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/job"
)

const (
	// DefaultDigestThreshold is the agreement share the digest and CRC searches require.
	DefaultDigestThreshold = 0.8

	// DefaultSumsThreshold is the agreement share the simple sum scans require.
	DefaultSumsThreshold = 0.5
)

// Options are shared by every search.
type Options struct {
	// Threshold is the share of the corpus that must agree on a residual, in (0, 1]. Zero selects
	// the search's default.
	Threshold float64
	Parallel  bool
	Threads   int
	Logger    *slog.Logger
	Sink      Sink
}

func (o Options) withDefaults(threshold float64) Options {
	if o.Threshold <= 0 {
		o.Threshold = threshold
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Sink == nil {
		o.Sink = discard{}
	}
	return o
}

// accepts reports whether matches out of total clear the threshold. A threshold of 1 or more
// accepts full agreement.
func (o Options) accepts(matches, total int) bool {
	if total == 0 {
		return false
	}
	if o.Threshold >= 1 {
		return matches == total
	}
	return float64(matches) > o.Threshold*float64(total)
}

func (o Options) run(jobs job.Jobs) {
	job.Run(jobs, o.Parallel, o.Threads)
}

// view is the read-only shape every search works on: payloads clamped to the common length and
// the checksum views.
type view struct {
	payloads [][]byte
	chk8     []uint8
	chk16    []uint16
}

func newView(c *codes.Corpus, width int) view {
	n := c.PayloadLen(width)
	v := view{
		payloads: make([][]byte, len(c.Messages)),
		chk8:     make([]uint8, len(c.Messages)),
		chk16:    make([]uint16, len(c.Messages)),
	}
	for i := range c.Messages {
		m := &c.Messages[i]
		v.payloads[i] = m.Payload(n)
		v.chk8[i] = m.Chk
		v.chk16[i] = m.Chk16
	}
	return v
}
