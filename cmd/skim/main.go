package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dlemaire/skim/internal/config"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagWPM     int
	flagFresh   bool
	flagTOC     bool
	flagSection int
)

var rootCmd = &cobra.Command{
	Use:   "skim [file]",
	Short: "RSVP speed reader for EPUB books and plain text",
	Long: `Skim flashes one word at a time at a fixed pace, anchored on the
optimal recognition point, so your eyes stop scanning and start reading.

It remembers where you stopped in each book and offers to resume there,
adjusts pacing for long words and punctuation, and flows from section to
section of an EPUB without breaking stride.`,
	Example: `  skim book.epub             Read an EPUB at your saved speed
  skim -w 500 book.epub      Read at 500 WPM
  skim --toc book.epub       List the book's sections
  skim --fresh book.epub     Ignore the saved reading position
  cat notes.txt | skim       Read from stdin`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().IntVarP(&flagWPM, "wpm", "w", 0, "words per minute (overrides saved speed)")
	rootCmd.Flags().BoolVar(&flagFresh, "fresh", false, "ignore saved reading position")
	rootCmd.Flags().BoolVar(&flagTOC, "toc", false, "list sections and exit")
	rootCmd.Flags().IntVar(&flagSection, "section", 0, "start at section N (1-based)")
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	app, err := newApp(path, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if flagTOC {
		return app.PrintTOC(cmd.OutOrStdout())
	}

	return runHost(app)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
