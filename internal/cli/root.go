package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// LogLevel is the level of the process logger. The root command lowers it to Debug for
// --verbose.
var LogLevel = new(slog.LevelVar)

// NewRootCommand assembles the checkrev command tree
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "checkrev",
		Short: "Reverse engineer checksums and keystreams of captured codes",
		Long: `Checkrev searches the checksum algorithm behind a list of captured codes.

Codes are read one per line as hex, from a file or stdin. Each tool scans a
family of candidate algorithms and reports the ones that agree with most of
the codes.

Tools:
- digest, digest16: LFSR and other 8/16 bit digests
- crc: CRC-8 and CRC-16 polynomial and init search
- sums: byte/nibble sums, xor, xor-shift folds
- bitbrk, keystream: differential analysis of single bit flips
- shift: corpus transforms (invert, reflect, shift, trim, sync)
- check: verify a known CRC against every code
- keys: list LFSR key sequences
- gen: synthetic test corpora`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				LogLevel.Set(slog.LevelDebug)
			}
		},
	}

	rootCmd.AddCommand(
		NewDigestCommand(),
		NewDigest16Command(),
		NewCRCCommand(),
		NewSumsCommand(),
		NewShiftCommand(),
		NewBitbrkCommand(),
		NewKeystreamCommand(),
		NewKeysCommand(),
		NewCheckCommand(),
		NewGenCommand(),
		NewConfigCommand(),
	)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/checkrev/config.yaml)")

	return rootCmd
}
