package codes

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FormatCode renders the first n bytes of m as space separated hex.
func FormatCode(m *Message, n int) string {
	var sb strings.Builder
	for i, b := range m.Payload(n) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}

// Write prints the corpus in the same line format Parse reads, one code per line at the common
// length, with annotations kept as trailing comments.
func Write(w io.Writer, c *Corpus, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		fmt.Fprintf(bw, "; %d codes of len %d\n", len(c.Messages), c.Len)
	}
	for i := range c.Messages {
		m := &c.Messages[i]
		bw.WriteString(FormatCode(m, c.Len))
		if m.Comment != "" {
			bw.WriteString(" ; ")
			bw.WriteString(m.Comment)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// String renders the corpus with a header line.
func (c *Corpus) String() string {
	var sb strings.Builder
	_ = Write(&sb, c, true)
	return sb.String()
}
