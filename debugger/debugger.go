// Package debugger implements a line-oriented and full-screen interactive
// debugger for asmr programs: breakpoints on line numbers or label names,
// step/step-over/step-out, watch expressions over registers and heap
// buffers, command history, and a source listing tracking the current
// instruction pointer. It drives the vm package's single-step primitive
// (vm.Step) rather than vm.Execute, so it can pause between lines.
package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jpoag/asmr/parser"
	"github.com/jpoag/asmr/vm"
)

// LoadProgramFile reads filePath and parses it, returning both the
// classified program and its raw source lines (the debugger and TUI need
// the raw text for `list`; parser.ParseFile only returns the former).
func LoadProgramFile(filePath string) ([]parser.Line, []string, error) {
	f, err := os.Open(filePath) // #nosec G304 -- user-provided asmr source path
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	program, err := parser.ParseLines(lines)
	if err != nil {
		return nil, nil, err
	}
	return program, lines, nil
}

// Debugger holds interactive session state layered on top of a vm.Context:
// breakpoint/watchpoint managers, command history, the expression
// evaluator, and the stepping state machine.
type Debugger struct {
	Ctx     *vm.Context
	Program []parser.Line
	Source  []string // raw source lines, for `list`

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running  bool
	Halted   bool
	ExitCode uint8

	StepMode     StepMode
	StepOverLine int   // target line for "next"
	StepOutEbp   int32 // ebp value a "finish" must drop below to complete

	// skipBreakCheck suppresses the next ShouldBreak call. Resuming
	// commands (step/continue/next/finish) set it so the line the debugger
	// is stopped on executes before any stop condition is re-evaluated;
	// without it, `continue` would re-trigger the breakpoint it is parked
	// on and `step` would stop before moving at all.
	skipBreakCheck bool

	// Symbols maps label name to its 0-indexed program line, exposed for
	// breakpoint/watch expressions that name a label instead of a line
	// number.
	Symbols map[string]int

	LastCommand string
	Output      strings.Builder
}

// StepMode represents the debugger's current single-stepping mode.
type StepMode int

const (
	StepNone   StepMode = iota // not stepping; run freely until break/halt
	StepSingle                 // stop after exactly one line
	StepOver                   // run until StepOverLine is reached
	StepOut                    // run until the current frame returns
)

// NewDebugger creates a debugger session over program, binding labels and
// seeding a fresh execution context.
func NewDebugger(program []parser.Line, source []string) *Debugger {
	ctx := vm.NewContext(len(program))
	vm.BindLabels(ctx, program)

	symbols := make(map[string]int, len(ctx.Labels.All()))
	for name, line := range ctx.Labels.All() {
		symbols[name] = line
	}

	return &Debugger{
		Ctx:         ctx,
		Program:     program,
		Source:      source,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		StepMode:    StepNone,
		Symbols:     symbols,
	}
}

// ResolveLine resolves a label name or a 1-based line number string to a
// 0-indexed program line.
func (d *Debugger) ResolveLine(s string) (int, error) {
	if line, exists := d.Symbols[s]; exists {
		return line, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown label or line number: %s", s)
	}
	if n < 1 || n > len(d.Program) {
		return 0, fmt.Errorf("line %d is out of range (program has %d lines)", n, len(d.Program))
	}
	return n - 1, nil
}

// ExecuteCommand processes and executes a single debugger command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)
	case "rwatch":
		return d.cmdRWatch(args)
	case "awatch":
		return d.cmdAWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)

	case "set":
		return d.cmdSet(args)

	case "load":
		return d.cmdLoad(args)
	case "reset":
		return d.cmdReset(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause before the line at
// ctx.Ptr runs, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	if d.skipBreakCheck {
		d.skipBreakCheck = false
		return false, ""
	}

	line := d.Ctx.Ptr

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"

	case StepOver:
		if line == d.StepOverLine {
			d.StepMode = StepNone
			return true, "step complete"
		}

	case StepOut:
		if d.Ctx.Registers.Get(parser.Ebp).Raw < d.StepOutEbp {
			d.StepMode = StepNone
			return true, "frame returned"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(line); bp != nil {
		if !bp.Enabled {
			return false, ""
		}

		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.Ctx, d.Symbols)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}

		hit := d.Breakpoints.ProcessHit(line)
		if hit == nil {
			return false, ""
		}
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.Ctx); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// GetOutput returns and clears the accumulated output buffer.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf writes formatted text to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}

// SetStepOver configures the debugger to run until the line after the
// current one, skipping over the body of a `call`.
func (d *Debugger) SetStepOver() {
	d.StepOverLine = d.Ctx.Ptr + 1
	d.StepMode = StepOver
	d.Running = true
	d.skipBreakCheck = true
}

// SetStepOut configures the debugger to run until the active call frame
// returns to its caller.
func (d *Debugger) SetStepOut() {
	d.StepOutEbp = d.Ctx.Registers.Get(parser.Ebp).Raw
	d.StepMode = StepOut
	d.Running = true
	d.skipBreakCheck = true
}

// stepContext executes exactly one program line via vm.Step, recording the
// exit code on halt so callers (the CLI loop, the TUI) don't each have to.
func stepContext(d *Debugger) (halted bool, err error) {
	halted, err = vm.Step(d.Ctx, d.Program)
	if err != nil {
		return false, err
	}
	if halted {
		d.ExitCode = uint8(d.Ctx.Registers.Get(parser.Eax).Raw)
	}
	return halted, nil
}

// StepOnce executes exactly one program line, recording the exit code if
// the program halts. Exported so drivers that need their own stepping loop
// (e.g. a cooperatively cancellable API session runner) don't have to
// duplicate stepContext's exit-code bookkeeping.
func (d *Debugger) StepOnce() (halted bool, err error) {
	return stepContext(d)
}

// DriveUntilStop single-steps the program while d.Running, the state a
// command like `continue`/`next`/`finish` leaves behind, until ShouldBreak
// reports a stop reason, the program halts, or a runtime error occurs. It is
// the stepping loop shared by the CLI, the TUI, and any other driver
// (e.g. an API session) built on top of Debugger.
func (d *Debugger) DriveUntilStop() (reason string, halted bool, err error) {
	for d.Running {
		if shouldBreak, r := d.ShouldBreak(); shouldBreak {
			d.Running = false
			return r, false, nil
		}

		h, stepErr := stepContext(d)
		if stepErr != nil {
			d.Running = false
			return "", false, stepErr
		}
		if h {
			d.Running = false
			d.Halted = true
			return "halted", true, nil
		}
	}
	return "", false, nil
}
