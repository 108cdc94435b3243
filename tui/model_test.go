package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gophersatwork/abacus"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeKeys sends every character of input as a key press.
func typeKeys(m *Model, input string) {
	for _, r := range input {
		m.Update(runes(string(r)))
	}
}

func newTestModel(t *testing.T, options ...abacus.Option) *Model {
	t.Helper()

	m := New(abacus.OpenMemoryStore(), options...)
	t.Cleanup(m.Close)
	return m
}

func TestModel_Keys(t *testing.T) {
	m := newTestModel(t)

	typeKeys(m, "12+3")
	if d := m.Display(); d.Main != "3" || d.Preview != "12 +" {
		t.Fatalf("unexpected display %+v", d)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	d := m.Display()
	if d.Main != "15" || len(d.History) != 1 || d.History[0] != "12 + 3 = 15" {
		t.Fatalf("unexpected result %+v", d)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.Display().Main; got != "15" {
		t.Fatalf("backspace after a result should do nothing, got %q", got)
	}

	typeKeys(m, "4,5")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.Display().Main; got != "4." {
		t.Fatalf("expected 4., got %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.Display().Main; got != "0" {
		t.Fatalf("expected 0 after escape, got %q", got)
	}

	// Unmapped keys leave the display alone.
	m.Update(runes("x"))
	m.Update(tea.KeyMsg{Type: tea.KeyF5})
	if got := m.Display().Main; got != "0" {
		t.Fatalf("unmapped keys changed the display to %q", got)
	}
}

func TestModel_HistoryRecall(t *testing.T) {
	m := newTestModel(t)

	for _, expr := range []string{"6*7=", "9-1="} {
		typeKeys(m, expr)
	}

	// Tab without a highlighted row does nothing.
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.Display().Main; got != "8" {
		t.Fatalf("expected 8, got %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Fatalf("cursor should stop at the last row, got %d", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})

	if got := m.Display().Main; got != "42" {
		t.Fatalf("expected recalled 42, got %q", got)
	}
	if m.cursor != -1 {
		t.Fatalf("cursor should reset after recall, got %d", m.cursor)
	}

	typeKeys(m, "0")
	if got := m.Display().Main; got != "420" {
		t.Fatalf("expected 420, got %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if len(m.Display().History) != 0 {
		t.Fatalf("expected cleared history, got %v", m.Display().History)
	}
	if !strings.Contains(m.View(), "No calculations yet") {
		t.Fatal("expected the empty history placeholder")
	}
}

func TestModel_Theme(t *testing.T) {
	store := abacus.OpenMemoryStore()
	m := New(store)
	defer m.Close()

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	d := m.Display()
	if d.Theme != abacus.ThemeDark || d.ThemeIcon != "☀️" {
		t.Fatalf("unexpected theme %+v", d)
	}
	if !strings.Contains(m.View(), "☀️") {
		t.Fatal("view should show the theme icon")
	}

	again := New(store)
	defer again.Close()
	if again.Display().Theme != abacus.ThemeDark {
		t.Fatal("theme should persist across sessions")
	}
}

func TestModel_ErrorReset(t *testing.T) {
	var fire func()
	m := newTestModel(t, abacus.WithAfterFunc(func(d time.Duration, f func()) func() bool {
		fire = f
		return func() bool { return false }
	}))

	typeKeys(m, "5/0=")
	d := m.Display()
	if !d.Error || d.Main != "Error: Division by zero" {
		t.Fatalf("expected error display, got %+v", d)
	}
	if !strings.Contains(m.View(), "Error: Division by zero") {
		t.Fatal("view should show the error")
	}

	typeKeys(m, "7")
	if got := m.Display().Main; got != "Error: Division by zero" {
		t.Fatalf("input should be ignored during the error window, got %q", got)
	}

	if fire == nil {
		t.Fatal("no reset scheduled")
	}
	fire()

	cmd := m.Init()
	msg := cmd()
	if _, ok := msg.(resetMsg); !ok {
		t.Fatalf("expected resetMsg, got %T", msg)
	}
	_, next := m.Update(msg)
	if next == nil {
		t.Fatal("model should keep waiting for resets")
	}

	if d := m.Display(); d.Error || d.Main != "0" {
		t.Fatalf("expected reset display, got %+v", d)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c should quit")
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.WindowSizeMsg{Width: 30, Height: 20})
	if m.width != 30 {
		t.Fatalf("expected width 30, got %d", m.width)
	}
	if !strings.Contains(m.View(), "abacus") {
		t.Fatal("view should render the title")
	}
}

func TestNew_KeepsCallerOptions(t *testing.T) {
	options := make([]abacus.Option, 1, 4)
	options[0] = abacus.WithErrorTimeout(time.Minute)

	first := New(abacus.OpenMemoryStore(), options...)
	defer first.Close()
	second := New(abacus.OpenMemoryStore(), options...)
	defer second.Close()

	if spare := options[:cap(options)]; spare[1] != nil {
		t.Fatal("New wrote into the caller's options")
	}
}
