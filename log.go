package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// setupLog configures the default logger. With RECITE_LOGFILE set the
// log goes to that file at debug level; otherwise it goes to stderr at
// the level named by RECITE_LOGLEVEL (default warn, so the playback
// view stays clean).
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	if lvl := os.Getenv("RECITE_LOGLEVEL"); lvl != "" {
		level, err := log.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("invalid RECITE_LOGLEVEL: %w", err)
		}
		log.SetLevel(level)
	}

	if path := os.Getenv("RECITE_LOGFILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}

// discardLogs silences the default logger, used while the TUI owns the
// terminal.
func discardLogs() {
	log.SetOutput(io.Discard)
}
