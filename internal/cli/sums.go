package cli

import (
	"fmt"

	"github.com/Davincible/checkrev/pkg/search"
	"github.com/spf13/cobra"
)

// NewSumsCommand creates the simple checksum scan command
func NewSumsCommand() *cobra.Command {
	var (
		flags   searchFlags
		masks   bool
		weights bool
	)

	cmd := &cobra.Command{
		Use:   "sums [file]",
		Short: "Scan byte sums, nibble sums, xor and xor-shift folds",
		Long: `Tries the simple checksums: byte and nibble sums, the byte xor, CRC-8 with
a zero init and xor-shift folds. Each runs over the complete message, with
the first byte skipped and with the last byte omitted, on the codes as read,
inverted, bit reflected, and both.`,
		Example: `  checkrev sums codes.txt

  # Include every xor-shift mask pair and print the row weights
  checkrev sums codes.txt --masks --weights`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg := cm.GetConfig()

			opts, err := flags.options(cmd, cfg, cfg.Search.SumsThreshold)
			if err != nil {
				return err
			}
			c, err := readCorpus(cmd, args, cfg)
			if err != nil {
				return err
			}

			printSummary(cmd, c)
			if weights {
				w, err := search.RowWeights(c)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			if err := search.Sums(c, search.SumsSpace{Masks: masks}, opts); err != nil {
				return err
			}
			flags.printFound(cmd)
			return nil
		},
	}

	flags.register(cmd)
	flags.registerThreshold(cmd)
	cmd.Flags().BoolVar(&masks, "masks", false, "Scan every xor-shift up/down mask pair")
	cmd.Flags().BoolVar(&weights, "weights", false, "Print row weight statistics")

	return cmd
}
