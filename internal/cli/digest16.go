package cli

import (
	"fmt"

	"github.com/Davincible/checkrev/pkg/digest"
	"github.com/Davincible/checkrev/pkg/search"
	"github.com/spf13/cobra"
)

// NewDigest16Command creates the 16 bit LFSR digest search command
func NewDigest16Command() *cobra.Command {
	var (
		flags       searchFlags
		family      string
		gen         string
		key         string
		allVariants bool
		noSwap      bool
		exhaustive  bool
	)

	cmd := &cobra.Command{
		Use:   "digest16 [file]",
		Short: "Search 16 bit LFSR digests",
		Long: `Scans 16 bit Galois or Fibonacci LFSR digests against the last two bytes
of each code. Only candidates that agree with every code are reported. The
search runs a second time with the checksum bytes swapped unless --no-swap
is given, and stops claiming generators after the first hit unless
--exhaustive is given. There is no --threshold: partial agreement is never
reported.`,
		Example: `  # Classic search: generators with the top bit set, every key
  checkrev digest16 codes.txt -p

  # Narrow search over all variants
  checkrev digest16 codes.txt --gen 0x8810-0x881f --all-variants`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg := cm.GetConfig()

			space := search.DefaultSpace16()
			if space.Family, err = digest.ParseFamily(family); err != nil {
				return fmt.Errorf("--family: %w", err)
			}
			if space.GenMin, space.GenMax, err = parseRange16("gen", gen); err != nil {
				return err
			}
			if space.KeyMin, space.KeyMax, err = parseRange16("key", key); err != nil {
				return err
			}
			if allVariants {
				space.Variants = digest.AllVariants()
			}
			space.Swap = !noSwap
			space.StopOnFound = !exhaustive

			// only exact agreement is reported
			opts, err := flags.options(cmd, cfg, 1)
			if err != nil {
				return err
			}
			c, err := readCorpus(cmd, args, cfg)
			if err != nil {
				return err
			}

			printSummary(cmd, c)
			if err := search.Digest16(c, space, opts); err != nil {
				return err
			}
			flags.printFound(cmd)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&family, "family", "galois", "LFSR family (galois, fibonacci)")
	cmd.Flags().StringVar(&gen, "gen", "0x8000-0xffff", "Generator range")
	cmd.Flags().StringVar(&key, "key", "0x0000-0xffff", "Key range")
	cmd.Flags().BoolVar(&allVariants, "all-variants", false, "Scan every structural variant")
	cmd.Flags().BoolVar(&noSwap, "no-swap", false, "Skip the swapped checksum byte order pass")
	cmd.Flags().BoolVar(&exhaustive, "exhaustive", false, "Keep searching after the first hit")

	return cmd
}
