package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Davincible/checkrev/pkg/differential"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewBitbrkCommand creates the differential pair listing command
func NewBitbrkCommand() *cobra.Command {
	var (
		nbits      int
		bit        int
		collisions bool
	)

	cmd := &cobra.Command{
		Use:   "bitbrk [file]",
		Short: "List code pairs that differ in single bits",
		Long: `Lists pairs of codes whose payloads differ in exactly one bit, with the
xor, sum and difference of their checksums. For a linear checksum every pair
flipping the same bit shows the same checksum xor.

With --bits n the pairs differing in n bits are listed instead, with
--collisions the pairs sharing a checksum.`,
		Example: `  checkrev bitbrk codes.txt
  checkrev bitbrk codes.txt --bit 12
  checkrev bitbrk codes.txt -b 2
  checkrev bitbrk codes.txt -c`,
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
			if err := c.Validate(1); err != nil {
				return err
			}

			var pairs []differential.Pair
			switch {
			case collisions:
				pairs = differential.Collisions(c)
			case nbits > 0:
				pairs = differential.NBits(c, nbits)
			case bit >= 0:
				pairs = differential.SingleBit(c, bit)
			default:
				pairs = differential.SingleBits(c)
			}

			printSummary(cmd, c)
			printPairs(cmd.OutOrStdout(), pairs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&nbits, "bits", "b", 0, "List pairs differing in this many bits")
	cmd.Flags().IntVar(&bit, "bit", -1, "List only pairs flipping this payload bit")
	cmd.Flags().BoolVarP(&collisions, "collisions", "c", false, "List pairs with equal checksums")
	cmd.MarkFlagsMutuallyExclusive("bits", "bit", "collisions")

	return cmd
}

func printPairs(w io.Writer, pairs []differential.Pair) {
	yellow := color.New(color.FgYellow)
	last := -2
	for _, p := range pairs {
		if p.Bit >= 0 && p.Bit != last {
			yellow.Fprintf(w, "bit %d:\n", p.Bit)
			last = p.Bit
		}
		fmt.Fprintf(w, "  %4d %4d  %s  chk %02x %02x  xor %02x  add %02x  sub %02x\n",
			p.I, p.J, hexBytes(p.Diff), p.ChkI, p.ChkJ, p.Xor(), p.Add(), p.Sub())
	}
	fmt.Fprintf(w, "%d pairs\n", len(pairs))
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, " ")
}
