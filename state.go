package abacus

import (
	"math"
	"strings"
)

// State is the expression being entered.
//
// Current is the operand being typed (or the last result) and is always a
// non-empty numeral with at most one decimal point. Previous is the left
// operand while a binary operator is pending. Waiting marks that the next
// digit or decimal point starts a fresh operand.
type State struct {
	Current  string   `json:"current"`
	Previous string   `json:"previous"`
	Op       Operator `json:"op"`
	Waiting  bool     `json:"waiting"`
}

// NewState returns the initial state.
func NewState() State {
	return State{Current: "0"}
}

// Transition is the outcome of applying a token.
// Entry is the history entry produced by a completed calculation, if any.
type Transition struct {
	State State
	Entry string
}

// Pending reports whether a binary operator is waiting for its right operand.
func (s State) Pending() bool {
	return s.Op != OpNone
}

// Preview returns the expression line shown above the main display:
// "<previous> <symbol>" while an operator is pending, empty otherwise.
func (s State) Preview() string {
	if s.Op == OpNone || s.Previous == "" {
		return ""
	}
	return s.Previous + " " + s.Op.Symbol()
}

// Apply returns the state that follows tok.
// A failed calculation returns a *CalcError and leaves the state unchanged.
func (s State) Apply(tok Token) (Transition, error) {
	switch tok.Kind {
	case TokenDigit:
		return Transition{State: s.digit(tok.Digit)}, nil
	case TokenDecimal:
		return Transition{State: s.decimal()}, nil
	case TokenOperator:
		if tok.Op == OpSqrt {
			return s.sqrt()
		}
		return s.operator(tok.Op)
	case TokenEquals:
		return s.Resolve()
	case TokenClear:
		return Transition{State: NewState()}, nil
	case TokenDelete:
		return Transition{State: s.delete()}, nil
	}
	return Transition{State: s}, ErrUnknownToken
}

func (s State) digit(d byte) State {
	switch {
	case s.Waiting:
		s.Current = string(d)
		s.Waiting = false
	case s.Current == "0":
		s.Current = string(d)
	default:
		s.Current += string(d)
	}
	return s
}

func (s State) decimal() State {
	switch {
	case s.Waiting:
		s.Current = "0."
		s.Waiting = false
	case !strings.Contains(s.Current, "."):
		s.Current += "."
	}
	return s
}

func (s State) delete() State {
	if s.Waiting {
		return s
	}
	if len(s.Current) > 1 {
		s.Current = s.Current[:len(s.Current)-1]
	} else {
		s.Current = "0"
	}
	return s
}

func (s State) operator(op Operator) (Transition, error) {
	if !op.Binary() {
		return Transition{State: s}, ErrUnknownToken
	}

	var entry string
	if s.Pending() && !s.Waiting {
		t, err := s.Resolve()
		if err != nil {
			return Transition{State: s}, err
		}
		s, entry = t.State, t.Entry
	}

	s.Previous = s.Current
	s.Op = op
	s.Waiting = true
	return Transition{State: s, Entry: entry}, nil
}

// Resolve computes the pending binary operation.
// Without a pending operator, or while waiting for the right operand, it is a no-op.
func (s State) Resolve() (Transition, error) {
	if !s.Pending() || s.Waiting {
		return Transition{State: s}, nil
	}

	result, err := Compute(s.Previous, s.Op, s.Current)
	if err != nil {
		return Transition{State: s}, err
	}

	entry := s.Previous + " " + s.Op.Symbol() + " " + s.Current + " = " + result
	return Transition{
		State: State{Current: result, Waiting: true},
		Entry: entry,
	}, nil
}

func (s State) sqrt() (Transition, error) {
	result, err := ComputeSqrt(s.Current)
	if err != nil {
		return Transition{State: s}, err
	}

	entry := OpSqrt.Symbol() + s.Current + " = " + result
	s.Current = result
	s.Waiting = true
	return Transition{State: s, Entry: entry}, nil
}

// Compute applies a binary operator to two operands and formats the result.
func Compute(left string, op Operator, right string) (string, error) {
	a, _ := parseOperand(left)
	b, _ := parseOperand(right)

	var r float64
	switch op {
	case OpAdd:
		r = a + b
	case OpSubtract:
		r = a - b
	case OpMultiply:
		r = a * b
	case OpDivide:
		if b == 0 {
			return "", calcError(op, ErrDivisionByZero)
		}
		r = a / b
	case OpPower:
		r = math.Pow(a, b)
	default:
		return "", calcError(op, ErrInvalidCalculation)
	}

	if math.IsNaN(r) || math.IsInf(r, 0) {
		return "", calcError(op, ErrInvalidCalculation)
	}
	return FormatResult(r), nil
}

// ComputeSqrt returns the formatted non-negative square root of operand.
func ComputeSqrt(operand string) (string, error) {
	x, _ := parseOperand(operand)
	if x < 0 {
		return "", calcError(OpSqrt, ErrInvalidInput)
	}
	r := math.Sqrt(x)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return "", calcError(OpSqrt, ErrInvalidCalculation)
	}
	return FormatResult(r), nil
}
