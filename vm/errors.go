package vm

import "fmt"

// RuntimeError is a dispatch-time diagnostic: the instruction pointer active
// when the failure occurred (displayed 1-indexed), paired with a cause.
type RuntimeError struct {
	LineIndex int // 0-indexed internally
	Cause     string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("Error on line %d: %s", e.LineIndex+1, e.Cause)
}

func runtimeErrorf(lineIndex int, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{LineIndex: lineIndex, Cause: fmt.Sprintf(format, args...)}
}
