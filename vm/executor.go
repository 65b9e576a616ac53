package vm

import (
	"bufio"
	"io"
	"os"

	"github.com/jpoag/asmr/parser"
)

// Context is the mutable machine state threaded through a single Execute
// call: registers, flags, stack, heap, symbol table, label table, and the
// current/next instruction pointers.
type Context struct {
	Registers *Registers
	Flags     Flags
	Stack     []Cell
	Heap      Heap
	Symtab    SymbolTable
	Labels    LabelTable

	Ptr  int // current instruction's line index
	Next int // line index to execute after the current instruction completes

	// Stdout/Stdin back the two I/O built-ins. Defaulting to the process
	// streams; callers (the debugger, the API session layer) may redirect
	// them to capture output or script input.
	Stdout io.Writer
	Stdin  *bufio.Reader
}

// NewContext creates a fresh execution context. Two sentinel stack slots
// are pushed (the terminal return address, then the initial saved base
// pointer), esp is advanced to reference the second of these, and ebp
// starts at 1, so the top-level code runs inside a well-formed frame and
// the final `ret` walks off the end of the program.
func NewContext(programLen int) *Context {
	ctx := &Context{
		Registers: NewRegisters(),
		Symtab:    *NewSymbolTable(),
		Labels:    *NewLabelTable(),
		Stdout:    os.Stdout,
		Stdin:     bufio.NewReader(os.Stdin),
	}

	ctx.Stack = append(ctx.Stack, NewPointer(int32(programLen))) // terminal return address (EOF)
	ctx.Stack = append(ctx.Stack, NewPointer(0))                 // initial saved ebp
	ctx.Registers.Set(parser.Esp, ctx.Registers.Get(parser.Esp).add(1))

	ctx.Next = 1

	return ctx
}

// esp/ebp helpers centralize the stack-pointer bookkeeping so handlers never
// touch ctx.Stack length arithmetic directly.
func (ctx *Context) esp() int32 { return ctx.Registers.Get(parser.Esp).Raw }
func (ctx *Context) ebp() int32 { return ctx.Registers.Get(parser.Ebp).Raw }

func (ctx *Context) setEsp(v int32) { ctx.Registers.Set(parser.Esp, ctx.Registers.Get(parser.Esp).withRaw(v)) }
func (ctx *Context) setEbp(v int32) { ctx.Registers.Set(parser.Ebp, ctx.Registers.Get(parser.Ebp).withRaw(v)) }

// Execute runs a parsed program to completion against the process's own
// stdout/stdin and returns the low 8 bits of eax's raw value as the
// process exit code.
func Execute(program []parser.Line) (uint8, error) {
	return ExecuteContext(NewContext(len(program)), program)
}

// ExecuteContext runs program to completion against a caller-supplied
// Context, so the debugger and the API session layer can redirect Stdout and
// Stdin (to capture output or script input) and inspect registers/heap/stack
// after a run. ctx.Next must already be positioned at the program's entry
// line; NewContext does this.
func ExecuteContext(ctx *Context, program []parser.Line) (uint8, error) {
	BindLabels(ctx, program)

	for {
		halted, err := Step(ctx, program)
		if err != nil {
			return 0, err
		}
		if halted {
			return uint8(ctx.Registers.Get(parser.Eax).Raw), nil
		}
	}
}

// BindLabels scans program once and records every label's line index in
// ctx.Labels. Callers that single-step via Step (the debugger, the API
// session layer) must call this once before stepping; ExecuteContext does it
// automatically.
func BindLabels(ctx *Context, program []parser.Line) {
	for i, line := range program {
		if line.Kind == parser.LineLabel {
			ctx.Labels.Bind(line.Label, i)
		}
	}
}

// Step executes exactly one line of program at ctx.Ptr and advances the
// instruction pointer, returning true once ctx.Ptr has run off the end of
// the program (the point at which Execute/ExecuteContext would stop). This
// is the primitive the debugger and the API session layer single-step
// through; ExecuteContext is just Step run in a loop with no pause points.
func Step(ctx *Context, program []parser.Line) (halted bool, err error) {
	if ctx.Ptr >= len(program) {
		return true, nil
	}

	line := program[ctx.Ptr]
	switch line.Kind {
	case parser.LineInstruction:
		if err := dispatch(ctx, line.Opcode, line.Params); err != nil {
			return false, err
		}
	case parser.LineVariable:
		if err := handleVariable(ctx, line.Identifier, line.MemType, line.Params); err != nil {
			return false, err
		}
	case parser.LineLabel, parser.LineBlank:
		// no-ops
	}

	ctx.Ptr = ctx.Next
	ctx.Registers.Set(parser.Eip, NewPointer(int32(ctx.Ptr)))
	ctx.Next = ctx.Ptr + 1

	return false, nil
}

// dispatch is the large switch over the instruction opcode, validating
// operand shape and mutating ctx. call/ret are themselves expressed as
// compositions of other instructions routed back through dispatch, so this
// function must be reentrant: it keeps no mutable state of its own across
// nested invocations beyond what it reads from ctx.
func dispatch(ctx *Context, op parser.Opcode, params []parser.Token) error {
	switch op {
	case parser.OpNop:
		return nil

	case parser.OpPush:
		return execPush(ctx, params)
	case parser.OpPop:
		return execPop(ctx, params)

	case parser.OpMov:
		return execMov(ctx, params)
	case parser.OpXchg:
		return execXchg(ctx, params)

	case parser.OpAdd, parser.OpSub, parser.OpMul, parser.OpDiv, parser.OpAnd, parser.OpOr, parser.OpXor:
		return execBinaryArith(ctx, op, params)
	case parser.OpInc, parser.OpDec:
		return execIncDec(ctx, op, params)
	case parser.OpShl, parser.OpShr:
		return execShift(ctx, op, params)
	case parser.OpNot:
		return execNot(ctx, params)

	case parser.OpCmp:
		return execCmp(ctx, params)
	case parser.OpTest:
		return execTest(ctx, params)

	case parser.OpJmp, parser.OpJz, parser.OpJnz, parser.OpJg, parser.OpJl, parser.OpJge, parser.OpJle, parser.OpJe, parser.OpJne:
		return execJump(ctx, op, params)

	case parser.OpCall:
		return execCall(ctx, params)
	case parser.OpRet:
		return execRet(ctx, params)
	}

	return runtimeErrorf(ctx.Ptr, "unrecognized opcode `%s`", op)
}
