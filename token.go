package abacus

import "fmt"

// Operator is a pending or immediate arithmetic operation.
type Operator int

const (
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
	OpSqrt
)

var operatorNames = [...]string{
	OpNone:     "none",
	OpAdd:      "add",
	OpSubtract: "subtract",
	OpMultiply: "multiply",
	OpDivide:   "divide",
	OpPower:    "power",
	OpSqrt:     "sqrt",
}

// String returns the operator name, e.g. "divide".
func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return operatorNames[op]
}

// Symbol returns the glyph used in the preview line and history entries.
// Subtraction uses the minus sign U+2212, not the hyphen.
func (op Operator) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "−"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	case OpPower:
		return "^"
	case OpSqrt:
		return "√"
	}
	return ""
}

// Binary reports whether the operator takes two operands.
func (op Operator) Binary() bool {
	return op >= OpAdd && op <= OpPower
}

// TokenKind classifies a Token.
type TokenKind int

const (
	TokenDigit TokenKind = iota + 1
	TokenDecimal
	TokenOperator
	TokenEquals
	TokenClear
	TokenDelete
)

// Token is a single discrete unit of user input.
// Digit is set for TokenDigit, Op for TokenOperator.
type Token struct {
	Kind  TokenKind
	Digit byte
	Op    Operator
}

// Digit returns the token for the decimal digit d ('0' to '9').
func Digit(d byte) Token { return Token{Kind: TokenDigit, Digit: d} }

// Op returns the token for an operator.
func Op(op Operator) Token { return Token{Kind: TokenOperator, Op: op} }

var (
	Decimal = Token{Kind: TokenDecimal}
	Equals  = Token{Kind: TokenEquals}
	Clear   = Token{Kind: TokenClear}
	Delete  = Token{Kind: TokenDelete}
)

// String returns the button value or action name the token corresponds to.
func (t Token) String() string {
	switch t.Kind {
	case TokenDigit:
		return string(t.Digit)
	case TokenDecimal:
		return "."
	case TokenOperator:
		return t.Op.Symbol()
	case TokenEquals:
		return "equals"
	case TokenClear:
		return "clear"
	case TokenDelete:
		return "delete"
	}
	return "invalid"
}

// buttonValues maps the literal values carried by keypad buttons.
var buttonValues = map[string]Token{
	".":  Decimal,
	"+":  Op(OpAdd),
	"-":  Op(OpSubtract),
	"*":  Op(OpMultiply),
	"/":  Op(OpDivide),
	"**": Op(OpPower),
	"√":  Op(OpSqrt),
}

// buttonActions maps the named actions carried by keypad buttons.
var buttonActions = map[string]Token{
	"clear":  Clear,
	"delete": Delete,
	"equals": Equals,
}

// keyActions maps keyboard keys that are not plain values.
var keyActions = map[string]Token{
	",":         Decimal,
	"Enter":     Equals,
	"=":         Equals,
	"Escape":    Clear,
	"c":         Clear,
	"C":         Clear,
	"Backspace": Delete,
	"Delete":    Delete,
}

// ParseValue returns the token for a button's literal value.
func ParseValue(value string) (Token, error) {
	if len(value) == 1 && value[0] >= '0' && value[0] <= '9' {
		return Digit(value[0]), nil
	}
	if tok, ok := buttonValues[value]; ok {
		return tok, nil
	}
	return Token{}, fmt.Errorf("%w: value %q", ErrUnknownToken, value)
}

// ParseAction returns the token for a button's named action.
func ParseAction(action string) (Token, error) {
	if tok, ok := buttonActions[action]; ok {
		return tok, nil
	}
	return Token{}, fmt.Errorf("%w: action %q", ErrUnknownToken, action)
}

// ParseKey maps a keyboard key name to a token.
// Only the four basic operators are reachable from the keyboard; power and
// square root are button-only. Unmapped keys report false.
func ParseKey(key string) (Token, bool) {
	if tok, ok := keyActions[key]; ok {
		return tok, true
	}
	switch key {
	case "+", "-", "*", "/", ".":
		return buttonValues[key], true
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return Digit(key[0]), true
	}
	return Token{}, false
}
