package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/terminput/internal/config"
	"github.com/dshills/terminput/internal/input/stream"
	"github.com/dshills/terminput/internal/logging"
	"github.com/dshills/terminput/internal/terminal"
	"github.com/dshills/terminput/internal/terminal/script"
)

// errNotTerminal is returned when the live viewer is started without a
// terminal on standard input.
var errNotTerminal = errors.New("standard input is not a terminal; use replay to decode a journal")

// options holds the command-line flags.
type options struct {
	configPath        string
	output            string
	format            string
	quitKeys          []string
	escapeDelay       string
	noPaste           bool
	noModifyOtherKeys bool
	noKitty           bool
	logFile           string
	logLevel          string
}

// loadConfig reads the config file, applies the environment and then the
// flags that were set, and validates the result.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	path := opts.configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Viewer.Format = opts.format
	}
	if flags.Changed("quit") {
		cfg.Viewer.QuitKeys = opts.quitKeys
	}
	if flags.Changed("escape-delay") {
		cfg.Input.EscapeDelay = opts.escapeDelay
	}
	if opts.noPaste {
		cfg.Input.BracketedPaste = false
	}
	if opts.noModifyOtherKeys {
		cfg.Input.ModifyOtherKeys = false
	}
	if opts.noKitty {
		cfg.Input.Kitty = false
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openOutput returns the event destination and its line ending. A terminal
// in raw mode needs an explicit carriage return.
func openOutput(cmd *cobra.Command, path string) (io.Writer, string, func() error, error) {
	noop := func() error { return nil }
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, "", noop, fmt.Errorf("creating output: %w", err)
		}
		return f, "\n", f.Close, nil
	}
	w := cmd.OutOrStdout()
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return w, "\r\n", noop, nil
	}
	return w, "\n", noop, nil
}

func newViewer(cfg config.Config, events eventSource, out io.Writer, newline, session string, logger zerolog.Logger) (*viewer, error) {
	quit, err := cfg.Viewer.Keys()
	if err != nil {
		return nil, err
	}
	if len(quit) == 0 {
		quit = defaultQuitKeys
	}
	return &viewer{
		events:  events,
		out:     out,
		format:  cfg.Viewer.Format,
		newline: newline,
		quit:    quit,
		session: session,
		logger:  logger,
	}, nil
}

// runLive decodes the controlling terminal. When journalPath is set the raw
// input is also recorded there.
func runLive(cmd *cobra.Command, opts *options, journalPath string) (err error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errNotTerminal
	}

	logger, closeLog, err := logging.Open(cfg.Logging, nil)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // best-effort

	session := uuid.NewString()
	logger = logger.With().Str("session", session).Logger()

	tty, err := terminal.Open(terminal.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tty.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("restoring terminal: %w", cerr)
		}
	}()

	// A signal only interrupts the read; the stream guards and the deferred
	// Close still restore the terminal.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()
	go func() {
		<-ctx.Done()
		tty.Interrupt()
	}()

	var backend terminal.Backend = tty
	var rec *terminal.Recorder
	if journalPath != "" {
		f, err := os.Create(journalPath)
		if err != nil {
			return fmt.Errorf("creating journal: %w", err)
		}
		defer f.Close()
		rec = terminal.NewRecorder(tty, f)
		backend = rec
	}

	out, newline, closeOut, err := openOutput(cmd, opts.output)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // best-effort

	s := stream.New(backend, append(cfg.StreamOptions(), stream.WithLogger(logger))...)
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("disabling input protocols")
		}
	}()
	logger.Info().Strs("protocols", protocolNames(s.Protocols())).Int("bound", len(s.BoundKeys())).Msg("negotiated")

	v, err := newViewer(cfg, s, out, newline, session, logger)
	if err != nil {
		return err
	}
	if err := v.run(); err != nil {
		return err
	}
	if rec != nil {
		if err := rec.Err(); err != nil {
			return fmt.Errorf("writing journal: %w", err)
		}
	}
	return nil
}

// runReplay decodes a journal written by record.
func runReplay(cmd *cobra.Command, opts *options, journalPath string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Open(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // best-effort

	f, err := os.Open(journalPath)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	b, err := script.Load(f)
	if err != nil {
		return err
	}

	session := uuid.NewString()
	logger = logger.With().Str("session", session).Str("journal", journalPath).Logger()

	out, newline, closeOut, err := openOutput(cmd, opts.output)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // best-effort

	s := stream.New(b, append(cfg.StreamOptions(), stream.WithLogger(logger))...)
	defer s.Close()

	v, err := newViewer(cfg, s, out, newline, session, logger)
	if err != nil {
		return err
	}
	return v.run()
}

func protocolNames(ps []stream.Protocol) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}
