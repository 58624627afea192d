package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	hexPattern   = regexp.MustCompile(`^(0x)?[0-9a-fA-F]+$`)
	rangePattern = regexp.MustCompile(`^\s*(0x[0-9a-fA-F]+|\d+)\s*(?:-\s*(0x[0-9a-fA-F]+|\d+))?\s*$`)
)

// ValidateHex checks a single hex code as given on the command line, spaces allowed between
// bytes.
func ValidateHex(input string) error {
	input = strings.Join(strings.Fields(input), "")
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}

	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters in %q", input)
	}

	return nil
}

// ValidatePattern checks a sync pattern: hex, at most 64 significant bits.
func ValidatePattern(pattern string, bitLen int) error {
	if err := ValidateHex(pattern); err != nil {
		return fmt.Errorf("invalid sync pattern: %w", err)
	}
	if bitLen <= 0 || bitLen > 64 {
		return fmt.Errorf("sync pattern must have 1 to 64 bits (got %d)", bitLen)
	}
	return nil
}

func ValidateThreshold(threshold float64) error {
	if threshold <= 0 || threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1] (got %v)", threshold)
	}
	return nil
}

func ValidateThreads(threads, limit int) error {
	if threads < 0 || threads > limit {
		return fmt.Errorf("threads must be between 0 and %d (got %d)", limit, threads)
	}
	return nil
}

func ValidateWidth(width int) error {
	if width != 8 && width != 16 {
		return fmt.Errorf("checksum width must be 8 or 16 (got %d)", width)
	}
	return nil
}

// ParseRange reads "a-b" or a single value "a", decimal or 0x hex, and checks both ends
// against limit.
func ParseRange(input string, limit uint64) (lo, hi uint64, err error) {
	m := rangePattern.FindStringSubmatch(input)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid range %q, expected format: min-max", input)
	}

	lo, err = strconv.ParseUint(m[1], 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start in %q: %w", input, err)
	}
	hi = lo
	if m[2] != "" {
		hi, err = strconv.ParseUint(m[2], 0, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range end in %q: %w", input, err)
		}
	}

	if lo > hi {
		return 0, 0, fmt.Errorf("range start exceeds end in %q", input)
	}
	if hi > limit {
		return 0, 0, fmt.Errorf("range %q exceeds 0x%x", input, limit)
	}
	return lo, hi, nil
}

// ParseByte reads a decimal or 0x hex value no larger than limit.
func ParseByte(input string, limit uint64) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(input), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", input, err)
	}
	if v > limit {
		return 0, fmt.Errorf("value %q exceeds 0x%x", input, limit)
	}
	return v, nil
}
