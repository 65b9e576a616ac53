package debugger

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpoag/asmr/parser"
	"github.com/jpoag/asmr/vm"
)

// ExpressionEvaluator evaluates debugger expressions: register names,
// `[identifier]` heap dereferences, label/line-number symbols, numeric
// literals, and the `$1`/`$2`/... value-history references, combined with
// the usual arithmetic and bitwise operators.
type ExpressionEvaluator struct {
	valueHistory []uint32
	valueNumber  int
}

// NewExpressionEvaluator creates a new expression evaluator.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{valueHistory: make([]uint32, 0)}
}

// EvaluateExpression evaluates an expression, recording the result in the
// value history for later `$N` references.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, ctx *vm.Context, symbols map[string]int) (uint32, error) {
	result, err := e.evaluate(expr, ctx, symbols)
	if err != nil {
		return 0, err
	}

	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)
	return result, nil
}

// Evaluate evaluates expr and reports whether the result is non-zero, for
// breakpoint conditions.
func (e *ExpressionEvaluator) Evaluate(expr string, ctx *vm.Context, symbols map[string]int) (bool, error) {
	result, err := e.evaluate(expr, ctx, symbols)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

// GetValueNumber returns the current $N value number.
func (e *ExpressionEvaluator) GetValueNumber() int { return e.valueNumber }

// GetValue returns a value from history by number.
func (e *ExpressionEvaluator) GetValue(number int) (uint32, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}
	return e.valueHistory[number-1], nil
}

func (e *ExpressionEvaluator) evaluate(expr string, ctx *vm.Context, symbols map[string]int) (uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	if val, err := e.trySimpleEval(expr, ctx, symbols); err == nil {
		return val, nil
	}

	operators := []string{"<<", ">>", "&", "|", "^", "+", "-", "*", "/"}
	for _, op := range operators {
		patterns := []string{" " + op + " ", " " + op, op + " "}

		for _, pattern := range patterns {
			idx := strings.Index(expr, pattern)
			if idx < 0 {
				continue
			}

			opPos := idx
			if pattern[0] == ' ' {
				opPos++
			}

			left := strings.TrimSpace(expr[:opPos])
			right := strings.TrimSpace(expr[opPos+len(op):])
			if left == "" || right == "" {
				continue
			}

			leftVal, err := e.evaluate(left, ctx, symbols)
			if err != nil {
				continue
			}
			rightVal, err := e.evaluate(right, ctx, symbols)
			if err != nil {
				continue
			}

			return e.applyOperator(leftVal, rightVal, op)
		}
	}

	return 0, fmt.Errorf("invalid expression: %s", expr)
}

// trySimpleEval evaluates a single atom: a heap dereference, a value-history
// reference, a register, a label/symbol, or a numeric literal.
func (e *ExpressionEvaluator) trySimpleEval(expr string, ctx *vm.Context, symbols map[string]int) (uint32, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		inner := strings.TrimSpace(expr[1 : len(expr)-1])
		return e.derefHeap(inner, ctx, symbols)
	}
	if strings.HasPrefix(expr, "*") {
		return e.derefHeap(strings.TrimSpace(expr[1:]), ctx, symbols)
	}

	if strings.HasPrefix(expr, "$") {
		num, err := strconv.Atoi(expr[1:])
		if err != nil {
			return 0, fmt.Errorf("invalid value reference: %s", expr)
		}
		return e.GetValue(num)
	}

	if reg, ok := parser.ParseRegisterName(strings.ToLower(expr)); ok {
		return uint32(ctx.Registers.Get(reg).Raw), nil
	}

	if line, exists := symbols[expr]; exists {
		return uint32(line), nil
	}

	if val, err := e.parseNumber(expr); err == nil {
		return val, nil
	}

	return 0, fmt.Errorf("unknown identifier: %s", expr)
}

// derefHeap resolves a heap identifier or numeric heap index and returns the
// first four bytes of its buffer as a little-endian word (a shorter buffer
// is zero-padded on the right first).
func (e *ExpressionEvaluator) derefHeap(expr string, ctx *vm.Context, symbols map[string]int) (uint32, error) {
	var idx int32
	if heapIdx, ok := ctx.Symtab.Lookup(expr); ok {
		idx = heapIdx
	} else {
		v, err := e.evaluate(expr, ctx, symbols)
		if err != nil {
			return 0, err
		}
		idx = int32(v)
	}

	if idx < 0 || int(idx) >= ctx.Heap.Len() {
		return 0, fmt.Errorf("no heap buffer at index %d", idx)
	}

	buf := ctx.Heap.Get(idx)
	if len(buf) < 4 {
		padded := make([]byte, 4)
		copy(padded, buf)
		return binary.LittleEndian.Uint32(padded), nil
	}
	return binary.LittleEndian.Uint32(buf[:4]), nil
}

func (e *ExpressionEvaluator) parseNumber(expr string) (uint32, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(strings.ToLower(expr), "0x") {
		val, err := strconv.ParseUint(expr[2:], 16, 32)
		if err != nil {
			return 0, err
		}
		return uint32(val), nil
	}

	if strings.HasPrefix(expr, "0b") || strings.HasPrefix(expr, "0B") {
		val, err := strconv.ParseUint(expr[2:], 2, 32)
		if err != nil {
			return 0, err
		}
		return uint32(val), nil
	}

	val, err := strconv.ParseInt(expr, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(val), nil
}

func (e *ExpressionEvaluator) applyOperator(left, right uint32, op string) (uint32, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case "&":
		return left & right, nil
	case "|":
		return left | right, nil
	case "^":
		return left ^ right, nil
	case "<<":
		return left << right, nil
	case ">>":
		return left >> right, nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", op)
	}
}

// Reset clears the value history.
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
