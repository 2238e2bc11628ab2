// Command stenotaped renders a paper tape from live steno strokes.
//
// The daemon receives newline-delimited JSON stroke events from a steno
// engine, normally over a Unix socket, and appends one line per stroke
// to the tape file: a timing bar showing the pause before the stroke,
// the chord laid out in steno order, the text it produced, and hints
// listing shorter outlines for recently written words.
//
// Usage:
//
//	stenotaped [flags]
//
// Flags:
//
//	-config string
//	    Configuration file path (default: auto-discover)
//	-tape string
//	    Tape file path (overrides configuration)
//	-socket string
//	    Stroke feed socket path (overrides configuration)
//	-stdin
//	    Read stroke events from standard input instead of the socket
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stenotape/internal/config"
	"stenotape/internal/dict"
	"stenotape/internal/host"
	"stenotape/internal/logging"
	"stenotape/internal/suggest"
	"stenotape/internal/tape"
)

var (
	configPath = flag.String("config", "", "Configuration file path (auto-discover if empty)")
	tapePath   = flag.String("tape", "", "Tape file path (overrides configuration)")
	socketPath = flag.String("socket", "", "Stroke feed socket path (overrides configuration)")
	fromStdin  = flag.Bool("stdin", false, "Read stroke events from standard input")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// The returned config is still usable; report what was ignored.
		fmt.Fprintf(os.Stderr, "stenotaped: config: %v\n", err)
	}
	cfg.ApplyEnvOverrides()
	if *tapePath != "" {
		cfg.Tape.Path = *tapePath
	}
	if *socketPath != "" {
		cfg.Host.Socket = *socketPath
	}
	if *fromStdin {
		cfg.Host.Source = "stdin"
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stenotaped: logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	configSource := cfg.File
	if configSource == "" {
		configSource = "defaults"
	}
	logger.Info("starting stenotaped", "config", configSource, "tape", cfg.Tape.Path)

	// Dictionary problems degrade hints, never the tape itself.
	var src suggest.Source
	var dictWatcher *dict.Watcher
	if len(cfg.Dictionaries.Paths) > 0 {
		ix, err := dict.Open(cfg.Dictionaries.Paths)
		if err != nil {
			logger.Warn("some dictionaries failed to load", "error", err)
		}
		logger.Info("dictionaries indexed", "entries", ix.Entries(), "files", len(ix.Paths()))
		src = ix

		if cfg.Dictionaries.Watch {
			dictWatcher, err = dict.NewWatcher(ix, func(err error) {
				if err != nil {
					logger.Warn("dictionary reload", "error", err)
					return
				}
				logger.Info("dictionaries reloaded", "entries", ix.Entries())
			})
			if err != nil {
				logger.Warn("dictionary watching unavailable", "error", err)
			} else if err := dictWatcher.Start(); err != nil {
				logger.Warn("dictionary watching unavailable", "error", err)
				dictWatcher = nil
			}
		}
	}

	w, err := tape.OpenWriter(cfg.Tape.Path)
	if err != nil {
		if errors.Is(err, tape.ErrTapeBusy) {
			fmt.Fprintf(os.Stderr, "stenotaped: %s is already in use by another stenotaped\n", cfg.Tape.Path)
		} else {
			fmt.Fprintf(os.Stderr, "stenotaped: open tape: %v\n", err)
		}
		os.Exit(1)
	}

	eng := tape.NewEngine(w, src, tape.Options{
		Layout:      cfg.StenoLayout(),
		Style:       tape.ParseStyle(cfg.OutputStyle),
		Format:      cfg.OutputFormat,
		BarTimeUnit: cfg.BarUnit(),
		BarMaxWidth: cfg.BarMaxWidth,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var listener *host.Listener
	var listenerErrs <-chan error
	stdinDone := make(chan error, 1)

	if cfg.Host.Source == "stdin" {
		logger.Info("reading stroke events from stdin")
		go func() {
			_, err := host.ServeReader(os.Stdin, eng, logger)
			stdinDone <- err
		}()
	} else {
		listener = host.NewListener(cfg.Host.Socket, eng, logger)
		if err := listener.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "stenotaped: listen: %v\n", err)
			eng.Stop()
			os.Exit(1)
		}
		listenerErrs = listener.Errors()
		logger.Info("listening for strokes", "socket", cfg.Host.Socket)
	}

	exitCode := 0
	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-stdinDone:
		if err != nil {
			logger.Error("stroke feed failed", "error", err)
			exitCode = 1
		} else {
			logger.Info("stroke feed ended")
		}
	case err := <-listenerErrs:
		logger.Error("tape failed", "error", err)
		exitCode = 1
	}

	if listener != nil {
		listener.Stop()
	}
	if dictWatcher != nil {
		dictWatcher.Stop()
	}
	if err := eng.Stop(); err != nil {
		logger.Error("close tape", "error", err)
		exitCode = 1
	}

	logger.Close()
	os.Exit(exitCode)
}

func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	// Config loading validates these; env overrides may not be valid, so
	// fall back rather than refuse to start.
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		format = logging.FormatText
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = format
	if cfg.Logging.Output != "" {
		logCfg.Output = cfg.Logging.Output
	}
	if cfg.Logging.FilePath != "" {
		logCfg.FilePath = cfg.Logging.FilePath
	}
	return logging.New(logCfg)
}
