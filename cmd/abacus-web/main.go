// Command abacus-web serves the calculator keypad to browsers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gophersatwork/abacus/web"
)

func main() {
	cfg := web.DefaultConfig()

	var (
		addr         = flag.String("addr", envOr("ABACUS_ADDR", cfg.Addr), "Listen address (env ABACUS_ADDR)")
		dataDir      = flag.String("data", envOr("ABACUS_DATA", cfg.DataDir), "Store directory, empty for in-memory (env ABACUS_DATA)")
		errorTimeout = flag.Duration("error-timeout", cfg.ErrorTimeout, "How long an error stays on the display")
		debug        = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg.Addr = *addr
	cfg.DataDir = *dataDir
	cfg.ErrorTimeout = *errorTimeout

	log, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg web.Config, log *zap.Logger) error {
	server, err := web.NewServer(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// envOr returns the environment variable key, or fallback when it is unset.
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
