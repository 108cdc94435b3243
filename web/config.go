package web

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gophersatwork/abacus"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"
	// DefaultDataDir is the default store directory.
	DefaultDataDir = ".abacus"
)

// Config configures the web server.
type Config struct {
	Addr         string        // Listen address, host:port
	DataDir      string        // Store directory; empty keeps everything in memory
	ErrorTimeout time.Duration // How long an error stays on a session's display
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Addr:         DefaultAddr,
		DataDir:      DefaultDataDir,
		ErrorTimeout: abacus.DefaultErrorTimeout,
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	} else if _, port, err := net.SplitHostPort(c.Addr); err != nil {
		errs = append(errs, fmt.Errorf("invalid addr %q: %w", c.Addr, err))
	} else if port == "" {
		errs = append(errs, fmt.Errorf("addr %q has no port", c.Addr))
	}

	if c.ErrorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("error timeout must be positive, got %v", c.ErrorTimeout))
	}

	return abacus.NewValidationError(errs)
}
