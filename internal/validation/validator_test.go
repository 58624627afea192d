package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHex(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"aa55", true},
		{"0xAA55", true},
		{"aa 55 0f", true},
		{"abc", true},
		{"", false},
		{"   ", false},
		{"zz", false},
	}

	for _, tt := range tests {
		err := ValidateHex(tt.input)
		if tt.valid {
			assert.NoError(t, err, tt.input)
		} else {
			assert.Error(t, err, tt.input)
		}
	}
}

func TestValidatePattern(t *testing.T) {
	assert.NoError(t, ValidatePattern("aa55", 16))
	assert.Error(t, ValidatePattern("aa55", 0))
	assert.Error(t, ValidatePattern("00112233445566778899", 80))
	assert.Error(t, ValidatePattern("xyz", 12))
}

func TestValidateParams(t *testing.T) {
	assert.NoError(t, ValidateThreshold(0.8))
	assert.NoError(t, ValidateThreshold(1))
	assert.Error(t, ValidateThreshold(0))
	assert.Error(t, ValidateThreshold(1.2))

	assert.NoError(t, ValidateThreads(0, 128))
	assert.NoError(t, ValidateThreads(128, 128))
	assert.Error(t, ValidateThreads(-1, 128))
	assert.Error(t, ValidateThreads(129, 128))

	assert.NoError(t, ValidateWidth(8))
	assert.NoError(t, ValidateWidth(16))
	assert.Error(t, ValidateWidth(12))
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		input  string
		limit  uint64
		lo, hi uint64
		valid  bool
	}{
		{"0x80-0xff", 0xff, 0x80, 0xff, true},
		{"1-255", 0xff, 1, 255, true},
		{" 0x31 ", 0xff, 0x31, 0x31, true},
		{"0x1000 - 0x10ff", 0xffff, 0x1000, 0x10ff, true},
		{"0x100", 0xff, 0, 0, false},
		{"9-3", 0xff, 0, 0, false},
		{"a-b", 0xff, 0, 0, false},
		{"", 0xff, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lo, hi, err := ParseRange(tt.input, tt.limit)
			if !tt.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestParseByte(t *testing.T) {
	v, err := ParseByte("0x1d", 0xff)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1d), v)

	_, err = ParseByte("256", 0xff)
	assert.Error(t, err)
	_, err = ParseByte("x", 0xff)
	assert.Error(t, err)
}
