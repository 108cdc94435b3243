package abacus

import (
	"errors"
	"fmt"
	"sync"
)

// Theme is the display colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Icon returns the glyph shown on the theme toggle: the sun switches back
// to light, the moon switches to dark.
func (t Theme) Icon() string {
	if t == ThemeDark {
		return "☀️"
	}
	return "🌙"
}

// ParseTheme returns the theme named s, defaulting to light.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// ThemePreference is the persisted theme, stored under ThemeKey.
type ThemePreference struct {
	mu    sync.RWMutex
	store Store
	theme Theme
}

// NewThemePreference returns a light preference persisted to store.
func NewThemePreference(store Store) *ThemePreference {
	return &ThemePreference{store: store, theme: ThemeLight}
}

// Load reads the persisted theme. An absent or unreadable value yields
// light; read errors other than ErrNotFound are also returned.
func (p *ThemePreference) Load() (Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, err := p.store.Get(ThemeKey)
	if err != nil {
		p.theme = ThemeLight
		if errors.Is(err, ErrNotFound) {
			return p.theme, nil
		}
		return p.theme, fmt.Errorf("failed to read theme: %w", err)
	}

	p.theme = ParseTheme(raw)
	return p.theme, nil
}

// Theme returns the current theme.
func (p *ThemePreference) Theme() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

// Toggle flips the theme, persists it and returns the new value.
// The new value is kept even if persisting fails.
func (p *ThemePreference) Toggle() (Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.theme = p.theme.Toggle()
	if err := p.store.Set(ThemeKey, string(p.theme)); err != nil {
		return p.theme, fmt.Errorf("failed to persist theme: %w", err)
	}
	return p.theme, nil
}
