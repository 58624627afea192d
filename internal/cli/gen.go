package cli

import (
	"fmt"

	"github.com/Davincible/checkrev/internal/validation"
	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/digest"
	"github.com/Davincible/checkrev/pkg/synth"
	"github.com/spf13/cobra"
)

// genFlags holds the parameters of a synthetic corpus
type genFlags struct {
	kind      string
	count     int
	length    int
	seed      uint64
	poly      string
	init      string
	final     string
	family    string
	gen       string
	key       string
	variant   uint8
	useSum    bool
	sync      string
	maxOffset int
	output    string
}

// NewGenCommand creates the synthetic corpus generator command
func NewGenCommand() *cobra.Command {
	var f genFlags

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a synthetic corpus with a known checksum",
		Long: `Writes random codes followed by a checksum of a known algorithm, for
testing the search tools. The same seed always gives the same codes.

Kinds: random, crc8, crc16, digest, keystream, add, xor.`,
		Example: `  # 64 codes of 5 payload bytes with CRC-8 poly 0x31 init 0xff
  checkrev gen --kind crc8 --count 64 --len 5 --poly 0x31 --init 0xff

  # Galois digest, bit reflected, behind a preamble at a random offset
  checkrev gen --kind digest --gen 0x8c --key 0x42 --variant 2 --sync aa55 --max-offset 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := generate(cmd, &f)
			if err != nil {
				return err
			}
			return writeCorpus(cmd, c, f.output, true)
		},
	}

	cmd.Flags().StringVar(&f.kind, "kind", "crc8", "Checksum kind")
	cmd.Flags().IntVarP(&f.count, "count", "n", 32, "Number of codes")
	cmd.Flags().IntVarP(&f.length, "len", "l", 4, "Payload bytes per code")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "Random seed")
	cmd.Flags().StringVar(&f.poly, "poly", "0x31", "CRC polynomial")
	cmd.Flags().StringVar(&f.init, "init", "0", "CRC init")
	cmd.Flags().StringVar(&f.final, "final", "0", "Final xor (CRC), added constant (add), xor constant (xor, digest), base (keystream)")
	cmd.Flags().StringVar(&f.family, "family", "galois", "Digest family")
	cmd.Flags().StringVar(&f.gen, "gen", "0x8c", "Digest generator")
	cmd.Flags().StringVar(&f.key, "key", "0x42", "Digest initial key")
	cmd.Flags().Uint8Var(&f.variant, "variant", 0, "Digest variant bits (1 reverse bytes, 2 reflect bits, 4 shift left)")
	cmd.Flags().BoolVar(&f.useSum, "sum", false, "Use the digest sum output instead of the xor output")
	cmd.Flags().StringVar(&f.sync, "sync", "", "Prefix every code with this hex pattern")
	cmd.Flags().IntVar(&f.maxOffset, "max-offset", 0, "Largest random bit offset of the sync pattern")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the codes to a file instead of stdout")

	return cmd
}

func generate(cmd *cobra.Command, f *genFlags) (*codes.Corpus, error) {
	if f.count <= 0 || f.length <= 0 {
		return nil, fmt.Errorf("count and len must be positive")
	}
	limit := uint64(0xff)
	if f.kind == "crc16" {
		limit = 0xffff
	}
	poly, err := validation.ParseByte(f.poly, limit)
	if err != nil {
		return nil, fmt.Errorf("--poly: %w", err)
	}
	initial, err := validation.ParseByte(f.init, limit)
	if err != nil {
		return nil, fmt.Errorf("--init: %w", err)
	}
	final, err := validation.ParseByte(f.final, limit)
	if err != nil {
		return nil, fmt.Errorf("--final: %w", err)
	}

	var c *codes.Corpus
	switch f.kind {
	case "random":
		c, err = synth.Random(f.count, f.length, f.seed)
	case "crc8":
		c, err = synth.WithCRC8(f.count, f.length, f.seed, uint8(poly), uint8(initial), uint8(final))
	case "crc16":
		c, err = synth.WithCRC16(f.count, f.length, f.seed, uint16(poly), uint16(initial), uint16(final))
	case "add", "xor":
		sum := synth.AddBytes(uint8(final))
		if f.kind == "xor" {
			sum = synth.XorBytes(uint8(final))
		}
		if c, err = synth.Random(f.count, f.length, f.seed); err == nil {
			c, err = synth.Append(c, sum)
		}
	case "digest":
		c, err = genDigest(f, uint8(final))
	case "keystream":
		key := make([]uint8, f.length*8)
		if _, err := synth.NewSource(f.seed ^ 0x6b657973).Read(key); err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "; keystream %s\n", hexBytes(key))
		c, err = synth.WithKeystream(f.count, f.length, f.seed, key, uint8(final))
	default:
		return nil, fmt.Errorf("unknown kind %q", f.kind)
	}
	if err != nil {
		return nil, err
	}

	if f.sync != "" {
		pattern, err := codes.ParseCode(f.sync)
		if err != nil {
			return nil, err
		}
		if err := validation.ValidatePattern(f.sync, pattern.BitLen); err != nil {
			return nil, err
		}
		if c, _, err = synth.WithSyncPrefix(c, pattern, f.maxOffset, f.seed); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func genDigest(f *genFlags, final uint8) (*codes.Corpus, error) {
	fam, err := digest.ParseFamily(f.family)
	if err != nil {
		return nil, fmt.Errorf("--family: %w", err)
	}
	if f.variant >= digest.NumVariants {
		return nil, fmt.Errorf("--variant must be below %d", digest.NumVariants)
	}
	gen, err := validation.ParseByte(f.gen, 0xff)
	if err != nil {
		return nil, fmt.Errorf("--gen: %w", err)
	}
	key, err := validation.ParseByte(f.key, 0xff)
	if err != nil {
		return nil, fmt.Errorf("--key: %w", err)
	}
	return synth.WithDigest8(f.count, f.length, f.seed, fam, uint8(gen), uint8(key),
		digest.Variant(f.variant), !f.useSum, final)
}
