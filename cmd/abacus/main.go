// Command abacus runs the calculator in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/gophersatwork/abacus"
	"github.com/gophersatwork/abacus/tui"
)

const defaultDataDir = ".abacus"

func main() {
	var (
		dataDir = flag.String("data", envOr("ABACUS_DATA", defaultDataDir), "Store directory, empty for in-memory (env ABACUS_DATA)")
		logFile = flag.String("log", "", "Write debug logs to this file")
	)
	flag.Parse()

	if err := run(*dataDir, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir, logFile string) error {
	log, err := newLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	var store abacus.Store
	if dataDir == "" {
		store = abacus.OpenMemoryStore()
	} else {
		fs, err := abacus.OpenStore(dataDir)
		if err != nil {
			return err
		}
		store = fs
	}

	model := tui.New(store, abacus.WithLogger(log))
	defer model.Close()

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run: %w", err)
	}
	return nil
}

// newLogger logs to file, or nowhere: the terminal belongs to the program.
func newLogger(file string) (*zap.Logger, error) {
	if file == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{file}
	cfg.ErrorOutputPaths = []string{file}
	return cfg.Build()
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
