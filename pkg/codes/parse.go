package codes

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// MaxLineBytes is the longest input line Parse reads. Anything after it on the same line is
// dropped.
const MaxLineBytes = 4096

// ParseOptions limits what Parse reads.
type ParseOptions struct {
	MaxBytes int // bytes per code, 0 = MaxMessageBytes
	MaxCodes int // codes per corpus, 0 = MaxCodes
	Logger   *slog.Logger
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = MaxMessageBytes
	}
	if o.MaxBytes > Capacity {
		o.Logger.Warn("maximum message bytes above capacity, clamped", "requested", o.MaxBytes, "capacity", Capacity)
		o.MaxBytes = Capacity
	}
	if o.MaxCodes <= 0 {
		o.MaxCodes = MaxCodes
	}
	return o
}

// readLine returns the next line without its line ending, cut at the reader's buffer size. cut
// reports whether the rest of the line was discarded.
func readLine(br *bufio.Reader) (line string, cut bool, err error) {
	chunk, err := br.ReadSlice('\n')
	line = string(chunk)
	for err == bufio.ErrBufferFull {
		cut = true
		_, err = br.ReadSlice('\n')
	}
	return strings.TrimRight(line, "\r\n"), cut, err
}

// lineScanner carries the multiline comment state across lines.
type lineScanner struct {
	inComment bool
	maxBytes  int
}

// scanLine decodes the hex nibbles of one line into m. It returns the nibble count and whether
// the byte limit cut the line short.
func (s *lineScanner) scanLine(line string, m *Message) (nibbles int, truncated bool) {
	explicitBits := -1
	var comment string

	for p := 0; p < len(line); p++ {
		if !s.inComment && strings.HasPrefix(line[p:], "/*") {
			s.inComment = true
			p += 2
		}
		if s.inComment {
			end := strings.Index(line[p:], "*/")
			if end < 0 {
				break
			}
			s.inComment = false
			p += end + 1
			continue
		}

		c := line[p]
		if c == ';' || c == '#' {
			comment = strings.TrimSpace(line[p+1:])
			break
		}
		if strings.HasPrefix(line[p:], "//") {
			comment = strings.TrimSpace(line[p+2:])
			break
		}
		if strings.HasPrefix(line[p:], "0x") {
			p++
			continue
		}
		if c == '{' {
			end := strings.IndexByte(line[p:], '}')
			if end > 0 {
				if n, err := strconv.Atoi(strings.TrimSpace(line[p+1 : p+end])); err == nil {
					explicitBits = n
				}
				p += end
				continue
			}
		}

		digit, ok := hexValue(c)
		if !ok {
			continue
		}
		if nibbles/2 >= s.maxBytes {
			truncated = true
			break
		}
		if nibbles&1 == 1 {
			m.Data[nibbles/2] |= digit
		} else {
			m.Data[nibbles/2] = digit << 4
		}
		nibbles++
	}

	m.Comment = comment
	m.Len = (nibbles + 1) / 2
	m.BitLen = nibbles * 4
	if explicitBits >= 0 && explicitBits < m.BitLen {
		m.BitLen = explicitBits
	}
	m.SyncChecksums()
	return nibbles, truncated
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Parse reads a code corpus. Each line with at least one hex digit becomes a message; the first
// code fixes the common length. Length mismatches and capacity limits are logged and recorded
// as warnings, they do not fail the parse.
func Parse(r io.Reader, opts ParseOptions) (*Corpus, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	c := &Corpus{}
	s := &lineScanner{maxBytes: opts.MaxBytes}
	br := bufio.NewReaderSize(r, MaxLineBytes)

	for {
		line, cut, err := readLine(br)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read codes: %w", err)
		}
		if err == io.EOF && line == "" {
			break
		}
		if cut {
			c.warn(log, fmt.Sprintf("line longer than %d bytes truncated", MaxLineBytes))
			c.Truncated = true
		}

		var m Message
		nibbles, truncated := s.scanLine(line, &m)
		if nibbles == 0 {
			if c.Header == "" && len(c.Messages) == 0 && m.Comment != "" {
				c.Header = m.Comment
			}
			if err == io.EOF {
				break
			}
			continue
		}
		if truncated {
			c.warn(log, fmt.Sprintf("maximum number of msg bytes (%d) reached", opts.MaxBytes))
			c.Truncated = true
		}

		if c.Len == 0 {
			c.Len = m.Len
			log.Info("code length", "bytes", c.Len, "nibbles", nibbles)
		} else if c.Len != m.Len {
			c.warn(log, fmt.Sprintf("code len mismatched %d bytes expected but got %d bytes (%d nibbles)",
				c.Len, m.Len, nibbles))
		}

		c.Messages = append(c.Messages, m)
		if len(c.Messages) >= opts.MaxCodes {
			c.warn(log, fmt.Sprintf("maximum number of input lines (%d) reached", opts.MaxCodes))
			c.Truncated = true
			break
		}
		if err == io.EOF {
			break
		}
	}

	log.Info("codes read", "count", len(c.Messages))
	if len(c.Messages) == 0 {
		return nil, ErrEmptyCorpus
	}
	return c, nil
}

func (c *Corpus) warn(log *slog.Logger, msg string) {
	c.Warnings = append(c.Warnings, msg)
	log.Warn(msg)
}

// ParseCode reads a single code, e.g. a sync pattern given on the command line.
func ParseCode(text string) (Message, error) {
	var m Message
	s := &lineScanner{maxBytes: Capacity}
	nibbles, _ := s.scanLine(text, &m)
	if nibbles == 0 {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidCode, text)
	}
	return m, nil
}
