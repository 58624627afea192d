// Package codes holds the message corpus shared by all tools and reads and writes the hex code
// line format.
package codes

import "fmt"

const (
	// Capacity is the fixed byte capacity of a message buffer.
	Capacity = 32

	// MaxMessageBytes is the default number of bytes read per code line.
	MaxMessageBytes = 19

	// MaxCodes is the default number of code lines read.
	MaxCodes = 65536
)

// Message is a single captured code. Bytes past Len are zero unless a transform spilled bits
// into them.
type Message struct {
	Data    [Capacity]byte
	Len     int    // populated bytes
	BitLen  int    // significant bits from the start of Data, past Len*8 only after a shift spilled bits
	Chk     uint8  // last populated byte
	Chk16   uint16 // last two populated bytes, big-endian
	Comment string
}

// NewMessage builds a message from raw bytes, truncating at Capacity.
func NewMessage(data []byte) Message {
	var m Message
	n := copy(m.Data[:], data)
	m.Len = n
	m.BitLen = n * 8
	m.SyncChecksums()
	return m
}

// Bytes returns the populated bytes.
func (m *Message) Bytes() []byte {
	return m.Data[:m.Len]
}

// Payload returns the first n bytes of the buffer, clamped to the capacity. Rows shorter than n
// read as zero padded.
func (m *Message) Payload(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n > Capacity {
		n = Capacity
	}
	return m.Data[:n]
}

// Bit returns bit k counted MSB-first from the start of the buffer.
func (m *Message) Bit(k int) bool {
	return m.Data[k/8]&(0x80>>(k%8)) != 0
}

// SyncChecksums re-derives the 8 and 16 bit checksum views from the populated bytes.
func (m *Message) SyncChecksums() {
	m.Chk = 0
	m.Chk16 = 0
	if m.Len >= 1 {
		m.Chk = m.Data[m.Len-1]
		m.Chk16 = uint16(m.Data[m.Len-1])
	}
	if m.Len >= 2 {
		m.Chk16 |= uint16(m.Data[m.Len-2]) << 8
	}
}

// Corpus is an ordered list of messages sharing a common code length.
type Corpus struct {
	Messages  []Message
	Len       int // common code length in bytes, checksum included
	Version   int
	Header    string
	Warnings  []string
	Truncated bool
}

// Clone returns a copy with the version bumped. Message buffers are values, so the copy shares
// no state with c.
func (c *Corpus) Clone() *Corpus {
	out := &Corpus{
		Messages:  make([]Message, len(c.Messages)),
		Len:       c.Len,
		Version:   c.Version + 1,
		Header:    c.Header,
		Truncated: c.Truncated,
	}
	copy(out.Messages, c.Messages)
	out.Warnings = append(out.Warnings, c.Warnings...)
	return out
}

// Size returns the number of messages.
func (c *Corpus) Size() int {
	return len(c.Messages)
}

// PayloadLen returns the number of bytes in front of a checksum of the given width in bytes.
func (c *Corpus) PayloadLen(width int) int {
	n := c.Len - width
	if n < 0 {
		return 0
	}
	return n
}

// Validate checks the structural preconditions every search needs: at least one code and a
// common length greater than minLen bytes.
func (c *Corpus) Validate(minLen int) error {
	if c == nil || len(c.Messages) == 0 {
		return ErrEmptyCorpus
	}
	if c.Len <= minLen {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooShort, c.Len)
	}
	return nil
}
