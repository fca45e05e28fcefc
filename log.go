package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "lectio").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lectio.log"), nil
}

// setupLog sends the default logger to the log file. The TUI owns the
// terminal, so nothing is logged to stderr.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	log.SetLevel(log.InfoLevel)
	if debugEnabled() {
		log.SetLevel(log.DebugLevel)
	}
	return f.Close, nil
}

// debugEnabled checks the environment before flags are parsed; --debug is
// applied again once they are.
func debugEnabled() bool {
	switch os.Getenv("LECTIO_DEBUG") {
	case "", "0", "false":
		return false
	}
	return true
}
