package cli

import (
	"fmt"
	"io"

	"github.com/Davincible/checkrev/internal/validation"
	"github.com/Davincible/checkrev/pkg/digest"
	"github.com/spf13/cobra"
)

// NewKeysCommand creates the LFSR key sequence listing command
func NewKeysCommand() *cobra.Command {
	var (
		family string
		width  int
		left   bool
		gen    string
		seed   string
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the key sequence of an LFSR",
		Long: `Steps a Galois or Fibonacci LFSR from its initial key and prints every key
until the register returns to the initial key, reaches zero, or the round
limit of the width passes.`,
		Example: `  checkrev keys --gen 0x8c --init 0x01
  checkrev keys --width 16 --gen 0x1021 --init 0x8000 --left`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateWidth(width); err != nil {
				return err
			}
			f, err := digest.ParseFamily(family)
			if err != nil {
				return fmt.Errorf("--family: %w", err)
			}
			limit := uint64(1)<<width - 1
			g, err := validation.ParseByte(gen, limit)
			if err != nil {
				return fmt.Errorf("--gen: %w", err)
			}
			k, err := validation.ParseByte(seed, limit)
			if err != nil {
				return fmt.Errorf("--init: %w", err)
			}

			var keys []uint64
			if width == 8 {
				ks, err := digest.Keys8(f, left, uint8(g), uint8(k))
				if err != nil {
					return err
				}
				for _, v := range ks {
					keys = append(keys, uint64(v))
				}
			} else {
				ks, err := digest.Keys16(f, left, uint16(g), uint16(k))
				if err != nil {
					return err
				}
				for _, v := range ks {
					keys = append(keys, uint64(v))
				}
			}

			printKeys(cmd.OutOrStdout(), keys, width/4)
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "galois", "LFSR family (galois, fibonacci)")
	cmd.Flags().IntVarP(&width, "width", "w", 8, "Register width in bits (8 or 16)")
	cmd.Flags().BoolVar(&left, "left", false, "Shift the register left")
	cmd.Flags().StringVar(&gen, "gen", "0x8c", "Generator")
	cmd.Flags().StringVar(&seed, "init", "0x01", "Initial key")

	return cmd
}

func printKeys(w io.Writer, keys []uint64, digits int) {
	perLine := 16
	if digits > 2 {
		perLine = 8
	}
	for i, k := range keys {
		sep := " "
		if (i+1)%perLine == 0 || i == len(keys)-1 {
			sep = "\n"
		}
		fmt.Fprintf(w, "%0*x%s", digits, k, sep)
	}
	fmt.Fprintf(w, "%d keys\n", len(keys))
}
