// Package main implements keyview, a terminal input event viewer.
//
// keyview negotiates every input protocol the terminal supports, then
// prints one line per decoded event until a quit key is pressed. Sessions
// can be recorded to a journal and replayed later without a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/terminput/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "keyview",
		Short: "Show the events decoded from terminal input",
		Long: `keyview puts the terminal in raw mode, enables bracketed paste, XTerm
modifyOtherKeys and the Kitty full keyboard mode when the terminal supports
them, and prints every decoded key, mouse, resize and paste event.

Press one of the quit keys (Ctrl+C or Ctrl+Q by default) to exit.`,
		Example: `  # Watch events
  keyview

  # Write JSON lines to a file
  keyview --format json --output events.jsonl

  # Record a session, then decode it again offline
  keyview record session.journal
  keyview replay session.journal`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLive(cmd, opts, "")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (TOML or YAML)")
	flags.StringVarP(&opts.output, "output", "o", "", "Write events to this file instead of standard output")
	flags.StringVar(&opts.format, "format", "", "Output format: text or json")
	flags.StringSliceVar(&opts.quitKeys, "quit", nil, `Quit keys, e.g. "Ctrl+C,<C-q>"`)
	flags.StringVar(&opts.escapeDelay, "escape-delay", "", "Escape delay when ESCDELAY is unset, e.g. 25ms")
	flags.BoolVar(&opts.noPaste, "no-paste", false, "Do not enable bracketed paste")
	flags.BoolVar(&opts.noModifyOtherKeys, "no-modify-other-keys", false, "Do not enable XTerm modifyOtherKeys")
	flags.BoolVar(&opts.noKitty, "no-kitty", false, "Do not enable the Kitty keyboard mode")
	flags.StringVar(&opts.logFile, "log-file", "", "Write diagnostics to this file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	recordCmd := &cobra.Command{
		Use:   "record JOURNAL",
		Short: "Watch events and journal the raw terminal input",
		Long: `Record runs the live viewer and writes every raw input unit, along with
the terminal answers negotiation relied on, to JOURNAL as JSON lines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, opts, args[0])
		},
	}

	replayCmd := &cobra.Command{
		Use:   "replay JOURNAL",
		Short: "Decode a recorded journal without a terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, args[0])
		},
	}

	configPathCmd := &cobra.Command{
		Use:   "config-path",
		Short: "Print the default configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.DefaultPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	rootCmd.AddCommand(recordCmd, replayCmd, configPathCmd)
	return rootCmd
}
