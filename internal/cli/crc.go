package cli

import (
	"github.com/Davincible/checkrev/internal/validation"
	"github.com/Davincible/checkrev/pkg/search"
	"github.com/spf13/cobra"
)

// NewCRCCommand creates the CRC polynomial and init search command
func NewCRCCommand() *cobra.Command {
	var (
		flags searchFlags
		width int
		polys string
		inits string
	)

	cmd := &cobra.Command{
		Use:   "crc [file]",
		Short: "Search CRC-8 and CRC-16 polynomials and inits",
		Long: `Finds the polynomial of an MSB-first CRC over the code payload, then the
init value. When no init reproduces the checksum exactly, the polynomial is
reported with a zero init and the constant residual, which is the final xor
of that CRC.`,
		Example: `  # CRC-8 over the last byte
  checkrev crc codes.txt

  # CRC-16 over the last two bytes, narrow polynomial range
  checkrev crc codes.txt --width 16 --poly 0x1000-0x1fff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg := cm.GetConfig()

			if err := validation.ValidateWidth(width); err != nil {
				return err
			}
			space := search.DefaultCRCSpace(width)
			if cmd.Flags().Changed("poly") {
				if space.PolyMin, space.PolyMax, err = parseRange16("poly", polys); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("init") {
				if space.InitMin, space.InitMax, err = parseRange16("init", inits); err != nil {
					return err
				}
			}

			opts, err := flags.options(cmd, cfg, cfg.Search.CRCThreshold)
			if err != nil {
				return err
			}
			c, err := readCorpus(cmd, args, cfg)
			if err != nil {
				return err
			}

			printSummary(cmd, c)
			if err := search.CRC(c, space, opts); err != nil {
				return err
			}
			flags.printFound(cmd)
			return nil
		},
	}

	flags.register(cmd)
	flags.registerThreshold(cmd)
	cmd.Flags().IntVarP(&width, "width", "w", 8, "Checksum width in bits (8 or 16)")
	cmd.Flags().StringVar(&polys, "poly", "", "Polynomial range (default every non-zero polynomial)")
	cmd.Flags().StringVar(&inits, "init", "", "Init range (default every init)")

	return cmd
}
