package cli

import (
	"fmt"

	"github.com/Davincible/checkrev/pkg/digest"
	"github.com/Davincible/checkrev/pkg/search"
	"github.com/spf13/cobra"
)

// NewDigestCommand creates the 8 bit digest search command
func NewDigestCommand() *cobra.Command {
	var (
		flags    searchFlags
		families []string
		gen      string
		key      string
	)

	cmd := &cobra.Command{
		Use:   "digest [file]",
		Short: "Search 8 bit digests (LFSR, Fletcher, shift, gated CRC)",
		Long: `Scans every candidate digest family over its generator and key space, in
every structural variant, against the last byte of each code. For each
operator (xor, add, sub) the best residual is reported when it agrees with
enough codes.`,
		Example: `  # Full search, all families
  checkrev digest codes.txt -p

  # Only Galois LFSRs with generators 0x80-0xff
  checkrev digest codes.txt --family galois --gen 0x80-0xff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg := cm.GetConfig()

			fams, err := parseFamilies(families)
			if err != nil {
				return err
			}
			space := search.FullSpace8()
			if space.GenMin, space.GenMax, err = parseRange8("gen", gen); err != nil {
				return err
			}
			if space.KeyMin, space.KeyMax, err = parseRange8("key", key); err != nil {
				return err
			}

			opts, err := flags.options(cmd, cfg, cfg.Search.DigestThreshold)
			if err != nil {
				return err
			}
			c, err := readCorpus(cmd, args, cfg)
			if err != nil {
				return err
			}

			printSummary(cmd, c)
			if err := search.Digest8(c, fams, space, opts); err != nil {
				return err
			}
			flags.printFound(cmd)
			return nil
		},
	}

	flags.register(cmd)
	flags.registerThreshold(cmd)
	cmd.Flags().StringSliceVar(&families, "family", nil, "Digest families to scan (default all)")
	cmd.Flags().StringVar(&gen, "gen", "0x00-0xff", "Generator range")
	cmd.Flags().StringVar(&key, "key", "0x00-0xff", "Key range")

	return cmd
}

func parseFamilies(names []string) ([]digest.Family, error) {
	if len(names) == 0 {
		return digest.Families(), nil
	}
	fams := make([]digest.Family, 0, len(names))
	for _, name := range names {
		f, err := digest.ParseFamily(name)
		if err != nil {
			return nil, fmt.Errorf("--family: %w", err)
		}
		fams = append(fams, f)
	}
	return fams, nil
}
