// Package tui is the terminal surface of the calculator.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gophersatwork/abacus"
)

const displayWidth = 36

// keyNames maps bubbletea key names to the browser key names the
// calculator understands.
var keyNames = map[string]string{
	"enter":     "Enter",
	"esc":       "Escape",
	"backspace": "Backspace",
	"delete":    "Delete",
}

// resetMsg carries the display after an error window closes.
type resetMsg abacus.Display

// Model is the bubbletea model driving one calculator session.
type Model struct {
	calc    *abacus.Calculator
	resets  chan abacus.Display
	display abacus.Display

	cursor int    // Highlighted history row, -1 for none
	status string // Last rejected input
	width  int
}

// New starts a session on store. The error reset is delivered to the model
// as a message, so any reset hook in options is replaced.
func New(store abacus.Store, options ...abacus.Option) *Model {
	m := &Model{
		resets: make(chan abacus.Display, 1),
		cursor: -1,
	}

	hook := abacus.WithResetHook(func(d abacus.Display) {
		select {
		case m.resets <- d:
		default:
		}
	})
	// Clipped so the caller's backing array is never written.
	m.calc = abacus.New(store, append(options[:len(options):len(options)], hook)...)
	m.display = m.calc.Display()
	return m
}

// waitForReset delivers the next pushed reset.
func waitForReset(resets <-chan abacus.Display) tea.Cmd {
	return func() tea.Msg {
		return resetMsg(<-resets)
	}
}

// Display returns the display the model renders.
func (m *Model) Display() abacus.Display {
	return m.display
}

// Close ends the session.
func (m *Model) Close() {
	m.calc.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForReset(m.resets)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case resetMsg:
		m.display = abacus.Display(msg)
		return m, waitForReset(m.resets)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "ctrl+c":
		m.calc.Close()
		return m, tea.Quit
	case "ctrl+t":
		m.display = m.calc.ToggleTheme()
	case "ctrl+l":
		m.display = m.calc.ClearHistory()
		m.cursor = -1
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.display.History)-1 {
			m.cursor++
		}
	case "tab":
		if m.cursor < 0 {
			return m, nil
		}
		d, err := m.calc.SelectHistory(m.cursor)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.display = d
		m.cursor = -1
	default:
		d, ok := m.calc.PressKey(keyName(msg))
		if !ok {
			return m, nil
		}
		m.display = d
	}
	return m, nil
}

// keyName converts a key press to the name ParseKey expects.
func keyName(msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes && !msg.Alt {
		return string(msg.Runes)
	}
	if name, ok := keyNames[msg.String()]; ok {
		return name
	}
	return msg.String()
}

// View implements tea.Model.
func (m *Model) View() string {
	d := m.display
	s := StylesFor(d.Theme)

	width := displayWidth
	if m.width > 0 && m.width-8 < width {
		width = max(m.width-8, 12)
	}

	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		s.Title.Width(width-2).Render("abacus"),
		d.ThemeIcon)
	b.WriteString(header + "\n\n")

	b.WriteString(s.Preview.Width(width).Render(d.Preview) + "\n")
	if d.Error {
		b.WriteString(s.Error.Width(width).Render(d.Main) + "\n\n")
	} else {
		b.WriteString(s.Main.Width(width).Render(d.Main) + "\n\n")
	}

	b.WriteString(s.Title.Render("History") + "\n")
	if len(d.History) == 0 {
		b.WriteString(s.Empty.Render("No calculations yet") + "\n")
	}
	for i, entry := range d.History {
		if i == m.cursor {
			b.WriteString(s.Selected.Render(entry) + "\n")
			continue
		}
		b.WriteString(s.Entry.Render(entry) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + s.Status.Render(m.status) + "\n")
	}

	b.WriteString("\n" + s.Help.Render("ctrl+t theme • ctrl+l clear history • ↑/↓ tab recall • ctrl+c quit"))

	return s.App.Render(b.String())
}
