package codes

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietOptions() ParseOptions {
	return ParseOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestParse(t *testing.T) {
	input := `; captured on 433.92
aa 01 02 a9
0xAA 0x03 0x04 0xAD ; second
/* multi
line comment */ aa0506a9 // third
# only a comment
`
	c, err := Parse(strings.NewReader(input), quietOptions())
	require.NoError(t, err)

	assert.Equal(t, "captured on 433.92", c.Header)
	assert.Equal(t, 4, c.Len)
	require.Len(t, c.Messages, 3)
	assert.Empty(t, c.Warnings)

	m := c.Messages[1]
	assert.Equal(t, []byte{0xaa, 0x03, 0x04, 0xad}, m.Bytes())
	assert.Equal(t, 32, m.BitLen)
	assert.Equal(t, uint8(0xad), m.Chk)
	assert.Equal(t, uint16(0x04ad), m.Chk16)
	assert.Equal(t, "second", m.Comment)

	assert.Equal(t, []byte{0xaa, 0x05, 0x06, 0xa9}, c.Messages[2].Bytes())
	assert.Equal(t, "third", c.Messages[2].Comment)
}

func TestParseBitLength(t *testing.T) {
	c, err := Parse(strings.NewReader("{13}abcd\nabc\n"), quietOptions())
	require.NoError(t, err)
	require.Len(t, c.Messages, 2)

	assert.Equal(t, 13, c.Messages[0].BitLen)
	assert.Equal(t, 2, c.Messages[0].Len)

	// odd nibble count keeps the partial byte
	assert.Equal(t, 12, c.Messages[1].BitLen)
	assert.Equal(t, []byte{0xab, 0xc0}, c.Messages[1].Bytes())
}

func TestParseLengthDrift(t *testing.T) {
	c, err := Parse(strings.NewReader("aabbcc\naabb\naabbccdd\n"), quietOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len)
	assert.Len(t, c.Messages, 3)
	assert.Len(t, c.Warnings, 2)
	assert.Equal(t, 2, c.Messages[1].Len)
	// short rows read zero padded at the common length
	assert.Equal(t, []byte{0xaa, 0xbb, 0x00}, c.Messages[1].Payload(c.Len))
}

func TestParseCapacity(t *testing.T) {
	opts := quietOptions()
	opts.MaxBytes = 2
	opts.MaxCodes = 2
	c, err := Parse(strings.NewReader("aabbccdd\n112233\n445566\n"), opts)
	require.NoError(t, err)

	assert.True(t, c.Truncated)
	assert.Len(t, c.Messages, 2)
	assert.Equal(t, []byte{0xaa, 0xbb}, c.Messages[0].Bytes())
}

func TestParseLongLine(t *testing.T) {
	in := "aa bb cc ; " + strings.Repeat("x", 70000) + "\naa bb cd\n"
	c, err := Parse(strings.NewReader(in), quietOptions())
	require.NoError(t, err)

	assert.True(t, c.Truncated)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, c.Messages[0].Bytes())
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcd}, c.Messages[1].Bytes())
	assert.Less(t, len(c.Messages[0].Comment), MaxLineBytes)
	assert.Contains(t, c.Warnings, "line longer than 4096 bytes truncated")
}

func TestParseNoTrailingNewline(t *testing.T) {
	c, err := Parse(strings.NewReader("aa bb\r\ncc dd"), quietOptions())
	require.NoError(t, err)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, []byte{0xcc, 0xdd}, c.Messages[1].Bytes())
	assert.False(t, c.Truncated)
}

func TestParseMaxBytesAboveCapacity(t *testing.T) {
	opts := quietOptions()
	opts.MaxBytes = 40
	in := strings.Repeat("ab", 40) + "\n"
	c, err := Parse(strings.NewReader(in), opts)
	require.NoError(t, err)

	assert.True(t, c.Truncated)
	assert.Equal(t, Capacity, c.Messages[0].Len)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader("; nothing here\n\n"), quietOptions())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestValidate(t *testing.T) {
	c := &Corpus{Messages: []Message{NewMessage([]byte{0x01})}, Len: 1}
	assert.True(t, errors.Is(c.Validate(1), ErrMessageTooShort))

	c = &Corpus{Messages: []Message{NewMessage([]byte{0x01, 0x02})}, Len: 2}
	assert.NoError(t, c.Validate(1))

	var empty *Corpus
	assert.ErrorIs(t, empty.Validate(1), ErrEmptyCorpus)
}

func TestParseCode(t *testing.T) {
	m, err := ParseCode("{12}f0a")
	require.NoError(t, err)
	assert.Equal(t, 12, m.BitLen)
	assert.Equal(t, []byte{0xf0, 0xa0}, m.Bytes())

	_, err = ParseCode("zz")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestWriteRoundTrip(t *testing.T) {
	input := "aa 01 02 a9\naa 03 04 ad ; keep me\n"
	c, err := Parse(strings.NewReader(input), quietOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c, false))
	assert.Equal(t, "aa 01 02 a9\naa 03 04 ad ; keep me\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, c, true))
	again, err := Parse(&buf, quietOptions())
	require.NoError(t, err)
	assert.Equal(t, c.Messages, again.Messages)
	assert.Equal(t, "2 codes of len 4", again.Header)
}

func TestCloneIsIndependent(t *testing.T) {
	c := &Corpus{Messages: []Message{NewMessage([]byte{0x01, 0x02})}, Len: 2}
	cl := c.Clone()
	cl.Messages[0].Data[0] = 0xff

	assert.Equal(t, uint8(0x01), c.Messages[0].Data[0])
	assert.Equal(t, c.Version+1, cl.Version)
}

func FuzzParse(f *testing.F) {
	f.Add("aa bb cc\n")
	f.Add("{7}ff ; x\n/* open")
	f.Add("0x0x0x\n;;\n")

	f.Fuzz(func(t *testing.T, input string) {
		c, err := Parse(strings.NewReader(input), quietOptions())
		if err != nil {
			return
		}
		for i := range c.Messages {
			m := &c.Messages[i]
			if m.Len > Capacity || m.BitLen > m.Len*8 {
				t.Fatalf("message %d out of bounds: len %d bits %d", i, m.Len, m.BitLen)
			}
		}
	})
}
