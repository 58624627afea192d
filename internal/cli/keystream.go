package cli

import (
	"fmt"
	"strings"

	"github.com/Davincible/checkrev/internal/validation"
	"github.com/Davincible/checkrev/pkg/differential"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewKeystreamCommand creates the keystream recovery command
func NewKeystreamCommand() *cobra.Command {
	var (
		threshold float64
		output    string
	)

	cmd := &cobra.Command{
		Use:   "keystream [file]",
		Short: "Recover a per-bit keystream from single bit pairs",
		Long: `Assumes a checksum that xors one key byte per set payload bit. Each round,
every unresolved bit takes the checksum xor that most of its single bit
pairs agree on; resolved bits are then folded out of the codes, which can
expose new pairs for the next round. Unresolved bits print as ??.`,
		Example: `  checkrev keystream codes.txt

  # Save the codes with every resolved bit folded out
  checkrev keystream codes.txt -o residual.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateThreshold(threshold); err != nil {
				return err
			}
			cm, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := readCorpus(cmd, args, cm.GetConfig())
			if err != nil {
				return err
			}

			rec, err := differential.RecoverKeystream(c, differential.RecoverOptions{Threshold: threshold})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			green := color.New(color.FgGreen)
			printSummary(cmd, c)
			for i, round := range rec.Resolved {
				fmt.Fprintf(out, "round %d: %s\n", i+1, joinInts(round))
			}
			ks := rec.Keystream
			green.Fprintf(out, "Keystream (%d of %d bits):\n", ks.Len()-len(ks.Unresolved()), ks.Len())
			fmt.Fprintln(out, ks)

			if output != "" {
				return writeCorpus(cmd, rec.Residual, output, true)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Share of pairs the key must win")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the residual codes to a file")

	return cmd
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
