package cli

import (
	"fmt"

	"github.com/Davincible/checkrev/internal/validation"
	"github.com/Davincible/checkrev/pkg/search"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewCheckCommand creates a command to verify a known CRC against every code
func NewCheckCommand() *cobra.Command {
	var (
		width   int
		poly    string
		seed    string
		residue string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check codes against a known CRC",
		Long: `Runs the CRC over each whole code, checksum included, and compares the
result with the expected residue (zero for a CRC without final xor). Codes
that fail are annotated with BAD CRC.`,
		Example: `  # Mark the codes failing CRC-8 poly 0x31 init 0xff
  checkrev check codes.txt --poly 0x31 --init 0xff

  # CRC-16, save the annotated list
  checkrev check codes.txt -w 16 --poly 0x1021 --init 0xffff -o checked.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateWidth(width); err != nil {
				return err
			}
			limit := uint64(1)<<width - 1
			p, err := validation.ParseByte(poly, limit)
			if err != nil {
				return fmt.Errorf("--poly: %w", err)
			}
			i, err := validation.ParseByte(seed, limit)
			if err != nil {
				return fmt.Errorf("--init: %w", err)
			}
			r, err := validation.ParseByte(residue, limit)
			if err != nil {
				return fmt.Errorf("--residue: %w", err)
			}

			cm, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := readCorpus(cmd, args, cm.GetConfig())
			if err != nil {
				return err
			}

			checked, bad, err := search.CheckCRC(c, width, uint16(p), uint16(i), uint16(r))
			if err != nil {
				return err
			}
			if err := writeCorpus(cmd, checked, output, true); err != nil {
				return err
			}

			summary := color.New(color.FgGreen, color.Bold)
			if bad > 0 {
				summary = color.New(color.FgRed, color.Bold)
			}
			summary.Fprintf(cmd.OutOrStdout(), "%d of %d codes bad\n", bad, len(checked.Messages))
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 8, "CRC width in bits (8 or 16)")
	cmd.Flags().StringVar(&poly, "poly", "", "CRC polynomial")
	cmd.Flags().StringVar(&seed, "init", "0", "CRC init value")
	cmd.Flags().StringVar(&residue, "residue", "0", "Expected CRC over the whole code")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the annotated codes to a file")
	cmd.MarkFlagRequired("poly")

	return cmd
}
