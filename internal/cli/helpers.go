package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Davincible/checkrev/internal/validation"
	"github.com/Davincible/checkrev/pkg/codes"
	"github.com/Davincible/checkrev/pkg/config"
	"github.com/Davincible/checkrev/pkg/job"
	"github.com/Davincible/checkrev/pkg/search"
	"github.com/Davincible/checkrev/pkg/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loadConfig reads the config named by --config, or the default one, and applies the color
// settings to the command's output.
func loadConfig(cmd *cobra.Command) (*config.ConfigManager, error) {
	var (
		cm  *config.ConfigManager
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cm, err = config.NewConfigManagerAt(path)
	} else {
		cm, err = config.NewConfigManager()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	color.NoColor = noColor || !cm.GetConfig().UI.UseColor || !isTerminal(cmd.OutOrStdout())
	return cm, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readCorpus parses the file named by the first argument, or stdin when there is none or it
// is "-".
func readCorpus(cmd *cobra.Command, args []string, cfg *config.Config) (*codes.Corpus, error) {
	opts := codes.ParseOptions{
		MaxBytes: cfg.Input.MaxMessageBytes,
		MaxCodes: cfg.Input.MaxCodes,
		Logger:   slog.Default(),
	}
	if len(args) > 0 && args[0] != "-" {
		return storage.NewCorpusFile(args[0]).Load(opts)
	}
	return codes.Parse(cmd.InOrStdin(), opts)
}

// writeCorpus writes c atomically to output, or to the command's stdout when output is empty.
func writeCorpus(cmd *cobra.Command, c *codes.Corpus, output string, header bool) error {
	if output != "" {
		f := storage.NewCorpusFile(output)
		if f.Exists() {
			slog.Info("replacing corpus file", "path", output)
		}
		if err := f.Save(c, header); err != nil {
			return fmt.Errorf("failed to save corpus: %w", err)
		}
		slog.Info("corpus written", "path", output, "codes", len(c.Messages))
		return nil
	}
	return codes.Write(cmd.OutOrStdout(), c, header)
}

// printSummary prints the corpus line every search starts with.
func printSummary(cmd *cobra.Command, c *codes.Corpus) {
	cyan := color.New(color.FgCyan)
	cyan.Fprintf(cmd.OutOrStdout(), "; %d codes of len %d\n", len(c.Messages), c.Len)
}

// searchFlags are the scheduling and acceptance flags shared by the search commands. found
// collects every report of the run for the closing count.
type searchFlags struct {
	parallel   bool
	sequential bool
	threads    int
	threshold  float64
	found      search.Collector
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.parallel, "parallel", "p", false, "Run jobs in parallel")
	cmd.Flags().BoolVarP(&f.sequential, "sequential", "s", false, "Run jobs one after another")
	cmd.Flags().IntVar(&f.threads, "threads", 0, "Worker threads (0 = config or logical CPUs)")
	cmd.MarkFlagsMutuallyExclusive("parallel", "sequential")
}

func (f *searchFlags) registerThreshold(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "Share of codes that must agree (0 = config default)")
}

// printFound closes a search with the number of distinct candidates reported.
func (f *searchFlags) printFound(cmd *cobra.Command) {
	n := len(f.found.Set())
	if n == 0 {
		yellow := color.New(color.FgYellow)
		yellow.Fprintln(cmd.OutOrStdout(), "; no candidates found")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "; %d candidates found\n", n)
}

// options merges the flags over the config. threshold is the config value for this search.
func (f *searchFlags) options(cmd *cobra.Command, cfg *config.Config, threshold float64) (search.Options, error) {
	opts := search.Options{
		Threshold: threshold,
		Parallel:  cfg.Search.Parallel,
		Threads:   cfg.Search.Threads,
		Logger:    slog.Default(),
		Sink:      search.Multi{search.NewPrinter(cmd.OutOrStdout()), &f.found},
	}
	if f.parallel {
		opts.Parallel = true
	}
	if f.sequential {
		opts.Parallel = false
	}
	if cmd.Flags().Changed("threads") {
		opts.Threads = f.threads
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = f.threshold
	}

	if err := validation.ValidateThreshold(opts.Threshold); err != nil {
		return opts, err
	}
	if err := validation.ValidateThreads(opts.Threads, job.MaxThreads); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseRange8 and parseRange16 read a --gen/--key/--poly/--init style range flag.
func parseRange8(name, value string) (lo, hi uint8, err error) {
	l, h, err := validation.ParseRange(value, 0xff)
	if err != nil {
		return 0, 0, fmt.Errorf("--%s: %w", name, err)
	}
	return uint8(l), uint8(h), nil
}

func parseRange16(name, value string) (lo, hi uint16, err error) {
	l, h, err := validation.ParseRange(value, 0xffff)
	if err != nil {
		return 0, 0, fmt.Errorf("--%s: %w", name, err)
	}
	return uint16(l), uint16(h), nil
}
