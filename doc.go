/*
Package abacus provides the engine of a keypad calculator: an input state machine,
result formatting, a bounded calculation history and a light/dark theme preference,
all persisted through a small key-value store.

# Overview

abacus models a pocket calculator the way a browser keypad drives it: every button
press or key press is a discrete Token, and each token moves the calculator from one
State to the next. Binary operators are evaluated left to right as soon as the next
operator arrives (chained evaluation, no precedence); square root applies immediately
to the operand on display.

# Core Architecture

The package is split into three layers:
  - State and Token - a pure transition function, usable without any display
  - History and ThemePreference - persisted session data
  - Calculator - one user's session, including the timed error display

Persistence goes through the Store interface. FileStore implements it on an afero
filesystem with one JSON record per key, named by the xxHash of the key and
verified with a checksum of the value.

# Basic Usage

Driving the state machine directly:

	s := abacus.NewState()
	for _, tok := range []abacus.Token{
	    abacus.Digit('5'), abacus.Op(abacus.OpAdd), abacus.Digit('3'), abacus.Equals,
	} {
	    t, err := s.Apply(tok)
	    if err != nil {
	        log.Fatalf("calculation failed: %v", err)
	    }
	    s = t.State
	}
	fmt.Println(s.Current) // 8

Running a persisted session:

	store, err := abacus.OpenStore(".abacus")
	if err != nil {
	    log.Fatalf("Failed to open store: %v", err)
	}

	calc := abacus.New(store, abacus.WithLogger(logger))
	defer calc.Close()

	calc.PressKey("9")
	d, _ := calc.PressButton("√", "")
	fmt.Println(d.Main)       // 3
	fmt.Println(d.History[0]) // √9 = 3

# Formatting

Results are rounded to 10 decimal places to hide binary floating-point noise, so
0.1 + 0.2 shows as 0.3. Magnitudes above 1e15, or nonzero magnitudes below 1e-10,
keep 11 significant digits instead. The string form is the shortest one that reads
back to the same number, switching to exponent notation outside [1e-7, 1e21).

# History

History keeps the 50 most recent entries, newest first. Each entry reads
"<expression> = <result>"; selecting one loads its result back as the operand.
The log is stored as a JSON array under the key "calculatorHistory"; the theme is
stored as "light" or "dark" under "calculatorTheme". Every write replaces the
whole value, so sessions running side by side on one store share a single History
and ThemePreference through WithHistory and WithThemePreference.

# Surfaces

Package web serves the keypad to browsers, one session per websocket plus a JSON
API. Package tui runs a session in the terminal. Both render Display values and
never touch State directly.

# Error Handling

Failed calculations return a *CalcError wrapping one of:

  - ErrDivisionByZero: the divisor is exactly zero
  - ErrInvalidCalculation: the result is not finite
  - ErrInvalidInput: square root of a negative number

A Calculator shows "Error: <message>" for two seconds and then resets. Store
failures never interrupt a session: the in-memory history and theme stay
authoritative and the failure is logged.

	_, err := abacus.Compute("10", abacus.OpDivide, "0")
	if errors.Is(err, abacus.ErrDivisionByZero) {
	    // Handle division by zero
	}
*/
package abacus
