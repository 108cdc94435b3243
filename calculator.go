package abacus

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultErrorTimeout is how long an error message stays on the display.
const DefaultErrorTimeout = 2 * time.Second

// Display is what a surface renders after each input.
type Display struct {
	Main      string   `json:"main"`      // Current operand, result or error message
	Preview   string   `json:"preview"`   // "<previous> <symbol>" while an operator is pending
	Error     bool     `json:"error"`     // Main holds an error message
	Theme     Theme    `json:"theme"`     // Active theme
	ThemeIcon string   `json:"themeIcon"` // Icon for the theme toggle
	History   []string `json:"history"`   // Entries, most recent first
}

// Calculator is one user's session: the input state, the history and the
// theme, plus the error window that follows a failed calculation.
//
// While an error is displayed every token except Clear is ignored. Clear,
// or the expiry of the error window, resets the state.
type Calculator struct {
	mu      sync.Mutex
	state   State
	history *History
	theme   *ThemePreference
	log     *zap.Logger

	errorTimeout time.Duration
	afterFunc    AfterFunc
	onReset      func(Display)

	errText     string      // Non-empty while the error window is open
	cancelReset func() bool // Cancels the pending reset
	generation  uint64      // Invalidates resets scheduled for an earlier error
}

// New creates a session persisted to store and loads its history and theme.
// A nil store keeps everything in memory. Unreadable persisted values are
// logged and replaced by defaults.
//
// Sessions that run side by side on one store must share a History and a
// ThemePreference (WithHistory, WithThemePreference); each write replaces
// the whole persisted value, so independent copies overwrite each other.
func New(store Store, options ...Option) *Calculator {
	if store == nil {
		store = OpenMemoryStore()
	}

	c := &Calculator{
		state:        NewState(),
		log:          zap.NewNop(),
		errorTimeout: DefaultErrorTimeout,
		afterFunc:    timeAfterFunc,
	}

	for _, option := range options {
		option(c)
	}

	// Shared values are loaded by their owner.
	if c.history == nil {
		c.history = NewHistory(store)
		if err := c.history.Load(); err != nil {
			c.log.Warn("history unavailable, starting empty", zap.Error(err))
		}
	}
	if c.theme == nil {
		c.theme = NewThemePreference(store)
		if _, err := c.theme.Load(); err != nil {
			c.log.Warn("theme unavailable, using light", zap.Error(err))
		}
	}

	return c
}

// Press applies a token and returns the new display.
func (c *Calculator) Press(tok Token) Display {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.errText != "" {
		if tok.Kind == TokenClear {
			c.dismissError()
		} else {
			c.log.Debug("input ignored while error is displayed", zap.Stringer("token", tok))
		}
		return c.display()
	}

	t, err := c.state.Apply(tok)
	if err != nil {
		c.fail(err)
		return c.display()
	}

	c.state = t.State
	if t.Entry != "" {
		c.record(t.Entry)
	}
	return c.display()
}

// PressKey maps a keyboard key and applies it.
// Unmapped keys are ignored and report false.
func (c *Calculator) PressKey(key string) (Display, bool) {
	tok, ok := ParseKey(key)
	if !ok {
		return c.Display(), false
	}
	return c.Press(tok), true
}

// PressButton applies a keypad button, which carries either a named action
// or a literal value. The action wins when both are set.
func (c *Calculator) PressButton(value, action string) (Display, error) {
	var (
		tok Token
		err error
	)
	if action != "" {
		tok, err = ParseAction(action)
	} else {
		tok, err = ParseValue(value)
	}
	if err != nil {
		return c.Display(), err
	}
	return c.Press(tok), nil
}

// SelectHistory loads the result of the entry at index as the current
// operand, ready to be extended. It also dismisses an open error.
func (c *Calculator) SelectHistory(index int) (Display, error) {
	result, err := c.history.Select(index)
	if err != nil {
		return c.Display(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.errText != "" {
		c.dismissError()
	}
	c.state.Current = result
	c.state.Waiting = false
	return c.display(), nil
}

// ClearHistory empties the history.
func (c *Calculator) ClearHistory() Display {
	if err := c.history.Clear(); err != nil {
		c.log.Warn("failed to persist cleared history", zap.Error(err))
	}
	return c.Display()
}

// ToggleTheme flips between light and dark.
func (c *Calculator) ToggleTheme() Display {
	theme, err := c.theme.Toggle()
	if err != nil {
		c.log.Warn("failed to persist theme", zap.String("theme", string(theme)), zap.Error(err))
	}
	return c.Display()
}

// Display returns the current display.
func (c *Calculator) Display() Display {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display()
}

// State returns the current input state.
func (c *Calculator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns the session history.
func (c *Calculator) History() *History {
	return c.history
}

// Theme returns the active theme.
func (c *Calculator) Theme() Theme {
	return c.theme.Theme()
}

// Close cancels a pending error reset.
func (c *Calculator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelReset != nil {
		c.cancelReset()
		c.cancelReset = nil
	}
	c.generation++
}

// display must be called with the lock held.
func (c *Calculator) display() Display {
	theme := c.theme.Theme()
	d := Display{
		Main:      c.state.Current,
		Preview:   c.state.Preview(),
		Theme:     theme,
		ThemeIcon: theme.Icon(),
		History:   c.history.Entries(),
	}
	if c.errText != "" {
		d.Main = c.errText
		d.Error = true
	}
	return d
}

func (c *Calculator) record(entry string) {
	if err := c.history.Append(entry); err != nil {
		c.log.Warn("failed to persist history", zap.String("entry", entry), zap.Error(err))
	}
}

// fail opens the error window. Must be called with the lock held.
func (c *Calculator) fail(err error) {
	var ce *CalcError
	if errors.As(err, &ce) {
		c.errText = ce.Display()
	} else {
		c.errText = "Error: " + err.Error()
	}
	c.log.Debug("calculation failed", zap.Error(err))

	c.generation++
	gen := c.generation
	c.cancelReset = c.afterFunc(c.errorTimeout, func() { c.expire(gen) })
}

// dismissError closes the error window and resets the state.
// Must be called with the lock held.
func (c *Calculator) dismissError() {
	if c.cancelReset != nil {
		c.cancelReset()
		c.cancelReset = nil
	}
	c.generation++
	c.errText = ""
	c.state = NewState()
}

// expire runs when the error window elapses.
func (c *Calculator) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.errText == "" {
		c.mu.Unlock()
		return
	}
	c.cancelReset = nil
	c.errText = ""
	c.state = NewState()
	d := c.display()
	hook := c.onReset
	c.mu.Unlock()

	if hook != nil {
		hook(d)
	}
}
