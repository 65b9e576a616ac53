package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jpoag/asmr/parser"
	"github.com/jpoag/asmr/vm"
)

// displayRegisters lists the registers shown by `info registers`.
var displayRegisters = []parser.RegisterName{
	parser.Eax, parser.Ebx, parser.Ecx, parser.Edx,
	parser.Esp, parser.Ebp, parser.Eip,
}

// cmdRun (re)starts program execution from a fresh context.
func (d *Debugger) cmdRun(args []string) error {
	d.Ctx = vm.NewContext(len(d.Program))
	vm.BindLabels(d.Ctx, d.Program)
	d.Halted = false
	d.Running = true
	d.StepMode = StepNone
	d.Evaluator.Reset()

	d.Println("Starting program execution...")
	return nil
}

// cmdContinue resumes execution from the current point.
func (d *Debugger) cmdContinue(args []string) error {
	if d.Halted {
		return fmt.Errorf("program is not running")
	}

	d.Running = true
	d.StepMode = StepNone
	d.skipBreakCheck = true
	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single line.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	d.skipBreakCheck = true
	return nil
}

// cmdNext steps over a `call` at the current line.
func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

// cmdFinish runs until the active call frame returns.
func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

// cmdBreak sets a breakpoint at a line number or label, optionally
// conditioned on a watch expression.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <line|label> [if <condition>]")
	}

	line, err := d.ResolveLine(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(line, false, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at line %d (condition: %s)\n", bp.ID, line+1, condition)
	} else {
		d.Printf("Breakpoint %d at line %d\n", bp.ID, line+1)
	}
	return nil
}

// cmdTBreak sets a temporary (auto-delete-on-hit) breakpoint.
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <line|label>")
	}

	line, err := d.ResolveLine(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(line, true, "")
	d.Printf("Temporary breakpoint %d at line %d\n", bp.ID, line+1)
	return nil
}

// cmdDelete deletes one breakpoint by ID, or all breakpoints.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables a breakpoint by ID.
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables a breakpoint by ID.
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// parseWatchExpression classifies a watch expression as a register name or a
// heap reference (`msg`, a bound identifier, or `heap[N]`, a raw index).
func (d *Debugger) parseWatchExpression(expr string) (isRegister bool, register parser.RegisterName, heapIndex int32, err error) {
	expr = strings.TrimSpace(expr)

	if reg, ok := parser.ParseRegisterName(strings.ToLower(expr)); ok {
		return true, reg, 0, nil
	}

	if strings.HasPrefix(expr, "heap[") && strings.HasSuffix(expr, "]") {
		n, convErr := strconv.Atoi(expr[len("heap[") : len(expr)-1])
		if convErr != nil {
			return false, 0, 0, fmt.Errorf("invalid heap index: %s", expr)
		}
		return false, 0, int32(n), nil
	}

	if idx, ok := d.Ctx.Symtab.Lookup(expr); ok {
		return false, 0, idx, nil
	}

	return false, 0, 0, fmt.Errorf("invalid watch expression: %s (expected a register or a db/resb identifier)", expr)
}

func (d *Debugger) addWatch(wpType WatchType, args []string, label string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <register|identifier>")
	}

	expression := strings.Join(args, " ")
	isRegister, register, heapIndex, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(wpType, expression, isRegister, register, heapIndex)
	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Ctx); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("%s %d: %s\n", label, wp.ID, expression)
	return nil
}

func (d *Debugger) cmdWatch(args []string) error  { return d.addWatch(WatchWrite, args, "Watchpoint") }
func (d *Debugger) cmdRWatch(args []string) error {
	return d.addWatch(WatchRead, args, "Read watchpoint")
}
func (d *Debugger) cmdAWatch(args []string) error {
	return d.addWatch(WatchReadWrite, args, "Access watchpoint")
}

// cmdPrint evaluates and prints an expression.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}

	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.Ctx, d.Symbols)
	if err != nil {
		return err
	}

	d.Printf("$%d = %d (0x%08X)\n", d.Evaluator.GetValueNumber(), int32(result), result)
	return nil
}

// cmdInfo dispatches `info <subject>`.
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|flags|breakpoints|watchpoints|stack>")
	}

	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "flags", "f":
		return d.showFlags()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack", "s":
		return d.showStack()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for _, reg := range displayRegisters {
		cell := d.Ctx.Registers.Get(reg)
		tag := "value"
		if cell.Tag == vm.Pointer {
			tag = "ptr"
		}
		d.Printf("  %-4s = %-12d (0x%08X) [%s]\n", reg.String(), cell.Raw, uint32(cell.Raw), tag)
	}
	return nil
}

func (d *Debugger) showFlags() error {
	d.Printf("Flags: CF=%v ZF=%v SF=%v OF=%v\n",
		d.Ctx.Flags.Get(vm.CF), d.Ctx.Flags.Get(vm.ZF), d.Ctx.Flags.Get(vm.SF), d.Ctx.Flags.Get(vm.OF))
	return nil
}

func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}
		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}
		d.Printf("  %d: line %d %s%s%s (hit %d times)\n",
			bp.ID, bp.Line+1, status, temp, condition, bp.HitCount)
	}
	return nil
}

func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}

	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}
		wpType := "write"
		if wp.Type == WatchRead {
			wpType = "read"
		} else if wp.Type == WatchReadWrite {
			wpType = "access"
		}
		d.Printf("  %d: %s %s %s (hit %d times, last value: %s)\n",
			wp.ID, wp.Expression, wpType, status, wp.HitCount, wp.LastValue)
	}
	return nil
}

func (d *Debugger) showStack() error {
	esp := d.Ctx.Registers.Get(parser.Esp).Raw
	ebp := d.Ctx.Registers.Get(parser.Ebp).Raw

	d.Printf("Stack (esp=%d, ebp=%d):\n", esp, ebp)
	for i := len(d.Ctx.Stack) - 1; i >= 0; i-- {
		marker := "  "
		switch int32(i) {
		case esp:
			marker = "=>"
		case ebp:
			marker = "bp"
		}
		cell := d.Ctx.Stack[i]
		tag := "value"
		if cell.Tag == vm.Pointer {
			tag = "ptr"
		}
		d.Printf(" %s [%d] %d (0x%08X) [%s]\n", marker, i, cell.Raw, uint32(cell.Raw), tag)
	}
	return nil
}

// cmdBacktrace walks the ebp chain printing each frame's return line.
func (d *Debugger) cmdBacktrace(args []string) error {
	d.Println("Call stack:")
	d.Printf("  #0  line %d\n", d.Ctx.Ptr+1)

	depth := 1
	ebp := d.Ctx.Registers.Get(parser.Ebp).Raw
	for ebp > 1 && int(ebp) < len(d.Ctx.Stack) && depth < BacktraceMaxFrames {
		returnLine := d.Ctx.Stack[ebp-1].Raw
		d.Printf("  #%d  line %d\n", depth, returnLine+1)
		nextEbp := d.Ctx.Stack[ebp].Raw
		if nextEbp == ebp {
			break
		}
		ebp = nextEbp
		depth++
	}
	return nil
}

// cmdList prints source lines around the current instruction pointer.
func (d *Debugger) cmdList(args []string) error {
	center := d.Ctx.Ptr
	if len(args) > 0 {
		line, err := d.ResolveLine(args[0])
		if err != nil {
			return err
		}
		center = line
	}

	start := center - ListContextLines
	if start < 0 {
		start = 0
	}
	end := center + ListContextLines
	if end >= len(d.Source) {
		end = len(d.Source) - 1
	}

	for i := start; i <= end; i++ {
		marker := "  "
		if i == d.Ctx.Ptr {
			marker = "=>"
		}
		d.Printf("%s %4d  %s\n", marker, i+1, d.Source[i])
	}
	return nil
}

// cmdSet assigns a register, or overwrites a heap buffer's bytes with the
// raw value, per `set <register|identifier> = <value>`.
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set <register|identifier> = <value>")
	}

	target := strings.ToLower(args[0])
	value, err := d.Evaluator.EvaluateExpression(args[2], d.Ctx, d.Symbols)
	if err != nil {
		return err
	}

	if reg, ok := parser.ParseRegisterName(target); ok {
		cell := d.Ctx.Registers.Get(reg)
		d.Ctx.Registers.Set(reg, vm.Cell{Tag: cell.Tag, Raw: int32(value)})
		d.Printf("Register %s set to %d\n", target, int32(value))
		return nil
	}

	if idx, ok := d.Ctx.Symtab.Lookup(args[0]); ok {
		buf := make([]byte, 4)
		buf[0] = byte(value)
		buf[1] = byte(value >> 8)
		buf[2] = byte(value >> 16)
		buf[3] = byte(value >> 24)
		d.Ctx.Heap.Set(idx, buf)
		d.Printf("%s set to %d\n", args[0], int32(value))
		return nil
	}

	return fmt.Errorf("invalid target: %s", args[0])
}

// cmdLoad parses a new source file and starts a fresh session over it.
func (d *Debugger) cmdLoad(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: load <filename>")
	}

	program, source, err := LoadProgramFile(args[0])
	if err != nil {
		return fmt.Errorf("could not load %s: %w", args[0], err)
	}

	d.Program = program
	d.Source = source
	d.Breakpoints.Clear()
	d.Watchpoints.Clear()
	return d.cmdRun(nil)
}

// cmdReset restarts the current program from its initial state.
func (d *Debugger) cmdReset(args []string) error {
	d.Ctx = vm.NewContext(len(d.Program))
	vm.BindLabels(d.Ctx, d.Program)
	d.Halted = false
	d.Running = false
	d.StepMode = StepNone
	d.Evaluator.Reset()
	d.Println("Session reset")
	return nil
}

// cmdHelp prints command summaries, or detailed help for a single command.
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("asmr debugger commands:")
	d.Println()
	d.Println("Execution control:")
	d.Println("  run (r)           - (Re)start program execution")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, si)      - Execute a single line")
	d.Println("  next (n)          - Step over a call")
	d.Println("  finish (fin)      - Run until the current frame returns")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <line|label> [if <cond>] - Set a breakpoint")
	d.Println("  tbreak (tb) <line|label>           - Set a temporary breakpoint")
	d.Println("  delete (d) [id]                    - Delete breakpoint(s)")
	d.Println("  enable/disable <id>                - Toggle a breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <reg|ident>   - Watch for writes")
	d.Println("  rwatch <reg|ident>      - Watch for reads")
	d.Println("  awatch <reg|ident>      - Watch for any access")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Evaluate an expression")
	d.Println("  info (i) <what>   - registers, flags, breakpoints, watchpoints, stack")
	d.Println("  backtrace (bt)    - Show the call stack")
	d.Println("  list (l) [line]   - List source around the current or given line")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <reg|ident> = <value> - Modify a register or heap buffer")
	d.Println()
	d.Println("Session:")
	d.Println("  load <file>  - Parse and load a new source file")
	d.Println("  reset        - Restart the current program")
	d.Println("  help (h, ?)  - Show this help")

	return nil
}

func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <line|label> [if <condition>]\n  Set a breakpoint at the given line or label. The optional condition\n  is a watch expression re-evaluated each time the line is reached.",
		"step":  "step\n  Execute a single line.",
		"next":  "next\n  Run until the line after the current one, stepping over a call.",
		"print": "print <expression>\n  Evaluate and print an expression: registers, labels, [identifier]\n  or [N] heap dereferences, $N value history, and arithmetic/bitwise operators.",
		"info":  "info <registers|flags|breakpoints|watchpoints|stack>\n  Display information about the current session state.",
	}

	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}
	return fmt.Errorf("no help available for command: %s", cmd)
}
