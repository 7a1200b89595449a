package debugger

import (
	"fmt"
	"strings"

	"github.com/pluginhost/thumbvm/vm"
)

// ExpressionEvaluator evaluates expressions in debugger commands
type ExpressionEvaluator struct {
	valueHistory []uint32 // History of evaluated values
	valueNumber  int      // Current value number for $1, $2, etc.
}

// NewExpressionEvaluator creates a new expression evaluator
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{
		valueHistory: make([]uint32, 0),
		valueNumber:  0,
	}
}

// EvaluateExpression evaluates an expression and returns the result
func (e *ExpressionEvaluator) EvaluateExpression(expr string, machine *vm.State, symbols map[string]uint32) (uint32, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return 0, err
	}

	// Store in history
	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)

	return result, nil
}

// Evaluate evaluates an expression and returns a boolean result (for conditions)
func (e *ExpressionEvaluator) Evaluate(expr string, machine *vm.State, symbols map[string]uint32) (bool, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return false, err
	}

	return result != 0, nil
}

// GetValueNumber returns the current value number
func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

// GetValue returns a value from history by number
func (e *ExpressionEvaluator) GetValue(number int) (uint32, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}

	return e.valueHistory[number-1], nil
}

// evaluate is the main evaluation logic. It tokenizes expr with
// ExprLexer and parses the token stream with ExprParser, which
// handles operator precedence, parentheses, and memory dereference
// uniformly instead of the ad hoc string splitting this used to do.
func (e *ExpressionEvaluator) evaluate(expr string, machine *vm.State, symbols map[string]uint32) (uint32, error) {
	expr = strings.TrimSpace(expr)

	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	// apsr/flags aren't tokens the lexer or parser know about (they
	// predate the flags-as-a-single-word model), so special-case them
	// rather than teach the lexer a register alias with no register
	// number behind it.
	if v, err := e.evalRegister(expr, machine); err == nil {
		return v, nil
	}

	tokens := NewExprLexer(expr).TokenizeAll()
	parser := NewExprParser(tokens, machine, symbols, e)
	return parser.Parse()
}

// evalRegister evaluates a register reference
func (e *ExpressionEvaluator) evalRegister(expr string, machine *vm.State) (uint32, error) {
	expr = strings.ToLower(expr)

	// Special registers
	switch expr {
	case "apsr", "flags":
		return machine.Flags, nil
	}

	return 0, fmt.Errorf("not a register")
}

// Reset clears the value history
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
