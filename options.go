package abacus

import (
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// WithFs sets a custom filesystem for the store.
// This is primarily useful for testing with in-memory filesystems.
//
// Example:
//
//	store, err := abacus.OpenStore(".abacus", abacus.WithFs(afero.NewMemMapFs()))
func WithFs(fs afero.Fs) StoreOption {
	return func(s *FileStore) {
		s.fs = fs
	}
}

// WithHashFunc sets a custom hash function for the store.
// The default is xxHash64.
//
// Note: Changing the hash function orphans existing records.
func WithHashFunc(hashFunc HashFunc) StoreOption {
	return func(s *FileStore) {
		s.hashFunc = hashFunc
	}
}

// WithNowFunc sets a custom time function for the store.
// This is primarily useful for testing with deterministic timestamps.
func WithNowFunc(nowFunc NowFunc) StoreOption {
	return func(s *FileStore) {
		s.nowFunc = nowFunc
	}
}

// AfterFunc schedules f to run once after d and returns a function that
// cancels it. The cancel function reports whether the call was stopped
// before it ran.
type AfterFunc func(d time.Duration, f func()) (cancel func() bool)

// Option defines a function that configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Calculator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithErrorTimeout sets how long an error stays on the display before the
// calculator resets. The default is DefaultErrorTimeout.
func WithErrorTimeout(d time.Duration) Option {
	return func(c *Calculator) {
		c.errorTimeout = d
	}
}

// WithAfterFunc sets the scheduler used for the error reset.
// The default wraps time.AfterFunc.
func WithAfterFunc(afterFunc AfterFunc) Option {
	return func(c *Calculator) {
		c.afterFunc = afterFunc
	}
}

// WithResetHook registers a function called with the fresh display after an
// error reset fires. It runs on the scheduler's goroutine without the
// calculator lock held.
func WithResetHook(hook func(Display)) Option {
	return func(c *Calculator) {
		c.onReset = hook
	}
}

// WithHistory makes the session record into h instead of a history of its
// own. The caller is responsible for loading h.
func WithHistory(h *History) Option {
	return func(c *Calculator) {
		c.history = h
	}
}

// WithThemePreference makes the session use p instead of loading its own
// theme from the store.
func WithThemePreference(p *ThemePreference) Option {
	return func(c *Calculator) {
		c.theme = p
	}
}

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
