package cli

import (
	"log/slog"

	"github.com/Davincible/checkrev/internal/validation"
	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/transform"
	"github.com/spf13/cobra"
)

// NewShiftCommand creates the corpus transform command
func NewShiftCommand() *cobra.Command {
	var (
		syncPattern    string
		shift          int
		trim           int
		invert         bool
		reflect        bool
		reflectNibbles bool
		dedup          bool
		output         string
		header         bool
	)

	cmd := &cobra.Command{
		Use:   "shift [file]",
		Short: "Transform codes: invert, sync, shift, trim, reflect",
		Long: `Applies corpus transforms and writes the result in the code line format.
Transforms run in a fixed order: invert, sync, shift, trim, reflect,
reflect nibbles, dedup. The sync pattern is matched against the inverted
codes when --invert is set.

A positive --shift moves bits right (toward higher indices), a negative one
moves them left. A positive --trim drops that many bits at the end of every
code, a negative one pads the end with zero bytes.`,
		Example: `  # Align every code on its preamble
  checkrev shift raw.txt --sync aa55 -o aligned.txt

  # Inverted and bit reflected
  checkrev shift codes.txt --invert --reflect`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := readCorpus(cmd, args, cm.GetConfig())
			if err != nil {
				return err
			}

			if invert {
				c = transform.Invert(c)
			}
			if syncPattern != "" {
				pattern, err := codes.ParseCode(syncPattern)
				if err != nil {
					return err
				}
				if err := validation.ValidatePattern(syncPattern, pattern.BitLen); err != nil {
					return err
				}
				before := len(c.Messages)
				if c, err = transform.Sync(c, pattern); err != nil {
					return err
				}
				slog.Info("synced codes", "kept", len(c.Messages), "dropped", before-len(c.Messages))
			}
			if shift != 0 {
				c = transform.Shift(c, shift)
			}
			if trim != 0 {
				c = transform.Trim(c, trim)
			}
			if reflect {
				c = transform.Reflect(c)
			}
			if reflectNibbles {
				c = transform.ReflectNibbles(c)
			}
			if dedup {
				var dropped int
				c, dropped = transform.Dedup(c)
				slog.Info("removed duplicate codes", "dropped", dropped)
			}

			return writeCorpus(cmd, c, output, header)
		},
	}

	cmd.Flags().StringVar(&syncPattern, "sync", "", "Align codes on the first occurrence of this hex pattern")
	cmd.Flags().IntVar(&shift, "shift", 0, "Shift bits right (positive) or left (negative)")
	cmd.Flags().IntVar(&trim, "trim", 0, "Drop bits at the end (positive) or pad zero bytes (negative)")
	cmd.Flags().BoolVarP(&invert, "invert", "i", false, "Invert every bit")
	cmd.Flags().BoolVarP(&reflect, "reflect", "r", false, "Reflect the bits of every byte")
	cmd.Flags().BoolVar(&reflectNibbles, "reflect-nibbles", false, "Reflect the bits of every nibble")
	cmd.Flags().BoolVar(&dedup, "dedup", false, "Remove repeated codes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&header, "header", true, "Start the output with a count header")

	return cmd
}
