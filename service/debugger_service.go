package service

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/jpoag/asmr/debugger"
	"github.com/jpoag/asmr/parser"
	"github.com/jpoag/asmr/vm"
)

// DebuggerService provides a thread-safe interface over a debugger.Debugger
// session, shared by the HTTP API's session manager and any future driver
// that needs the same controls (load/step/run/reset, breakpoints,
// watchpoints, register and output state). It exists so the API layer
// never reaches into debugger internals directly, and so session state
// stays consistent across concurrent HTTP handlers and the WebSocket
// broadcaster.
type DebuggerService struct {
	mu  sync.RWMutex
	dbg *debugger.Debugger

	outputWriter io.Writer

	stdinReader   *io.PipeReader
	stdinWriter   *io.PipeWriter
	stdinBuffered strings.Builder

	stopRequested bool
}

// NewDebuggerService creates an empty service with no program loaded.
func NewDebuggerService() *DebuggerService {
	return &DebuggerService{}
}

// SetOutputWriter installs the writer the session's program output (and
// debugger command output) is copied to, in addition to the debugger's own
// internal buffer. The API layer passes an *api.EventWriter here so output
// fans out over the session's WebSocket subscribers.
func (s *DebuggerService) SetOutputWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputWriter = w
	if s.dbg != nil {
		s.dbg.Ctx.Stdout = s.wrapOutput()
	}
}

func (s *DebuggerService) wrapOutput() io.Writer {
	if s.outputWriter == nil {
		return io.Discard
	}
	return s.outputWriter
}

// LoadProgram parses source and starts a fresh debugger session over it.
func (s *DebuggerService) LoadProgram(source string) error {
	lines := strings.Split(source, "\n")
	program, err := parser.ParseLines(lines)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dbg = debugger.NewDebugger(program, lines)
	s.dbg.Ctx.Stdout = s.wrapOutput()

	stdinReader, stdinWriter := io.Pipe()
	s.stdinReader = stdinReader
	s.stdinWriter = stdinWriter
	s.dbg.Ctx.Stdin = bufio.NewReader(stdinReader)
	s.stopRequested = false

	return nil
}

// Reset restarts the current program from line zero, clearing registers,
// the stack, and the heap, but preserving breakpoints and watchpoints.
func (s *DebuggerService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return fmt.Errorf("no program loaded")
	}

	if err := s.dbg.ExecuteCommand("reset"); err != nil {
		return err
	}
	s.stopRequested = false
	return nil
}

// GetRegisterState returns a snapshot of every register and flag.
func (s *DebuggerService) GetRegisterState() (RegisterState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dbg == nil {
		return RegisterState{}, fmt.Errorf("no program loaded")
	}

	regs := s.dbg.Ctx.Registers
	tag := func(name parser.RegisterName) bool {
		return regs.Get(name).Tag == vm.Pointer
	}

	return RegisterState{
		Eax: regs.Get(parser.Eax).Raw,
		Ebx: regs.Get(parser.Ebx).Raw,
		Ecx: regs.Get(parser.Ecx).Raw,
		Edx: regs.Get(parser.Edx).Raw,
		Esi: regs.Get(parser.Esi).Raw,
		Edi: regs.Get(parser.Edi).Raw,
		Esp: regs.Get(parser.Esp).Raw,
		Ebp: regs.Get(parser.Ebp).Raw,
		Eip: regs.Get(parser.Eip).Raw,
		Tags: map[string]bool{
			"eax": tag(parser.Eax), "ebx": tag(parser.Ebx),
			"ecx": tag(parser.Ecx), "edx": tag(parser.Edx),
			"esi": tag(parser.Esi), "edi": tag(parser.Edi),
			"esp": tag(parser.Esp), "ebp": tag(parser.Ebp),
			"eip": tag(parser.Eip),
		},
		Flags: FlagState{
			CF: s.dbg.Ctx.Flags.Get(vm.CF),
			ZF: s.dbg.Ctx.Flags.Get(vm.ZF),
			SF: s.dbg.Ctx.Flags.Get(vm.SF),
			OF: s.dbg.Ctx.Flags.Get(vm.OF),
		},
	}, nil
}

// GetExecutionState reports whether the session is running, stopped at a
// breakpoint/watchpoint, halted, or in error (the debugger surfaces errors
// through a returned error rather than state, so this only distinguishes
// running/breakpoint/halted).
func (s *DebuggerService) GetExecutionState() (ExecutionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dbg == nil {
		return StateHalted, fmt.Errorf("no program loaded")
	}
	switch {
	case s.dbg.Halted:
		return StateHalted, nil
	case s.dbg.Running:
		return StateRunning, nil
	default:
		return StateBreakpoint, nil
	}
}

// Step executes exactly one line and reports whether the program halted.
func (s *DebuggerService) Step() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return false, fmt.Errorf("no program loaded")
	}
	if err := s.dbg.ExecuteCommand("step"); err != nil {
		return false, err
	}
	_, halted, err := s.dbg.DriveUntilStop()
	return halted, err
}

// StepOver steps one line, running through any `call` it makes without
// stopping inside it.
func (s *DebuggerService) StepOver() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return false, fmt.Errorf("no program loaded")
	}
	s.dbg.SetStepOver()
	_, halted, err := s.dbg.DriveUntilStop()
	return halted, err
}

// StepOut runs until the active call frame returns to its caller.
func (s *DebuggerService) StepOut() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return false, fmt.Errorf("no program loaded")
	}
	s.dbg.SetStepOut()
	_, halted, err := s.dbg.DriveUntilStop()
	return halted, err
}

// Continue marks the session running; RunUntilHalt drives it.
func (s *DebuggerService) Continue() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return fmt.Errorf("no program loaded")
	}
	return s.dbg.ExecuteCommand("continue")
}

// Pause cooperatively stops a RunUntilHalt loop running in another
// goroutine, at the next line boundary.
func (s *DebuggerService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopRequested = true
}

// RunUntilHalt drives the session, started running by Continue, until it
// stops at a breakpoint/watchpoint, halts, hits a runtime error, or Pause is
// called. Safe to run in its own goroutine; the lock is released around
// each single step since asmr::io::readln can block on stdin.
func (s *DebuggerService) RunUntilHalt() (reason string, halted bool, err error) {
	for {
		s.mu.Lock()
		if s.dbg == nil {
			s.mu.Unlock()
			return "", false, fmt.Errorf("no program loaded")
		}
		if s.stopRequested || !s.dbg.Running {
			s.dbg.Running = false
			s.mu.Unlock()
			return "", false, nil
		}

		if shouldBreak, r := s.dbg.ShouldBreak(); shouldBreak {
			s.dbg.Running = false
			s.mu.Unlock()
			return r, false, nil
		}
		dbg := s.dbg
		s.mu.Unlock()

		h, stepErr := dbg.StepOnce()
		if stepErr != nil {
			s.mu.Lock()
			s.dbg.Running = false
			s.mu.Unlock()
			return "", false, stepErr
		}
		if h {
			s.mu.Lock()
			s.dbg.Running = false
			s.dbg.Halted = true
			s.mu.Unlock()
			return "halted", true, nil
		}
	}
}

// GetExitCode returns the program's exit code, valid once halted.
func (s *DebuggerService) GetExitCode() (uint8, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dbg == nil {
		return 0, fmt.Errorf("no program loaded")
	}
	return s.dbg.ExitCode, nil
}

// IsRunning reports whether the session is mid-execution.
func (s *DebuggerService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dbg != nil && s.dbg.Running
}

// AddBreakpoint sets a breakpoint at a line number or label name, optionally
// conditioned on a watch expression.
func (s *DebuggerService) AddBreakpoint(lineOrLabel, condition string) (BreakpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return BreakpointInfo{}, fmt.Errorf("no program loaded")
	}
	line, err := s.dbg.ResolveLine(lineOrLabel)
	if err != nil {
		return BreakpointInfo{}, err
	}
	bp := s.dbg.Breakpoints.AddBreakpoint(line, false, condition)
	return toBreakpointInfo(bp), nil
}

// RemoveBreakpoint deletes a breakpoint by ID.
func (s *DebuggerService) RemoveBreakpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbg == nil {
		return fmt.Errorf("no program loaded")
	}
	return s.dbg.Breakpoints.DeleteBreakpoint(id)
}

// GetBreakpoints returns every breakpoint in the session.
func (s *DebuggerService) GetBreakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dbg == nil {
		return nil
	}
	bps := s.dbg.Breakpoints.GetAllBreakpoints()
	result := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		result[i] = toBreakpointInfo(bp)
	}
	return result
}

// ClearAllBreakpoints removes every breakpoint.
func (s *DebuggerService) ClearAllBreakpoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbg != nil {
		s.dbg.Breakpoints.Clear()
	}
}

func toBreakpointInfo(bp *debugger.Breakpoint) BreakpointInfo {
	return BreakpointInfo{
		ID:        bp.ID,
		Line:      bp.Line + 1,
		Enabled:   bp.Enabled,
		Temporary: bp.Temporary,
		Condition: bp.Condition,
		HitCount:  bp.HitCount,
	}
}

// AddWatchpoint watches a register name or a bracketed heap expression
// (e.g. "[msg]") for a value change, matching the `watch` command's syntax.
func (s *DebuggerService) AddWatchpoint(expression, watchType string) (WatchpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return WatchpointInfo{}, fmt.Errorf("no program loaded")
	}

	var cmd string
	switch watchType {
	case "", "write":
		cmd = "watch"
	case "read":
		cmd = "rwatch"
	case "readwrite":
		cmd = "awatch"
	default:
		return WatchpointInfo{}, fmt.Errorf("invalid watchpoint type: %s", watchType)
	}

	before := len(s.dbg.Watchpoints.GetAllWatchpoints())
	if err := s.dbg.ExecuteCommand(cmd + " " + expression); err != nil {
		return WatchpointInfo{}, err
	}
	s.dbg.GetOutput()

	all := s.dbg.Watchpoints.GetAllWatchpoints()
	if len(all) <= before {
		return WatchpointInfo{}, fmt.Errorf("watchpoint was not created")
	}
	var newest *debugger.Watchpoint
	for _, wp := range all {
		if newest == nil || wp.ID > newest.ID {
			newest = wp
		}
	}
	return toWatchpointInfo(newest), nil
}

// RemoveWatchpoint deletes a watchpoint by ID.
func (s *DebuggerService) RemoveWatchpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbg == nil {
		return fmt.Errorf("no program loaded")
	}
	return s.dbg.Watchpoints.DeleteWatchpoint(id)
}

// GetWatchpoints returns every watchpoint in the session.
func (s *DebuggerService) GetWatchpoints() []WatchpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dbg == nil {
		return nil
	}
	wps := s.dbg.Watchpoints.GetAllWatchpoints()
	result := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		result[i] = toWatchpointInfo(wp)
	}
	return result
}

func toWatchpointInfo(wp *debugger.Watchpoint) WatchpointInfo {
	var t string
	switch wp.Type {
	case debugger.WatchRead:
		t = "read"
	case debugger.WatchReadWrite:
		t = "readwrite"
	default:
		t = "write"
	}
	return WatchpointInfo{ID: wp.ID, Expression: wp.Expression, Type: t, Enabled: wp.Enabled, HitCount: wp.HitCount}
}

// GetListing returns source lines [start, start+count), 1-indexed,
// annotated with the current instruction pointer and any breakpoints.
func (s *DebuggerService) GetListing(start, count int) []SourceLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dbg == nil || count <= 0 {
		return nil
	}

	result := make([]SourceLine, 0, count)
	for i := start; i < start+count && i-1 < len(s.dbg.Source); i++ {
		idx := i - 1
		if idx < 0 {
			continue
		}
		result = append(result, SourceLine{
			Line:         i,
			Text:         s.dbg.Source[idx],
			IsCurrent:    idx == s.dbg.Ctx.Ptr,
			IsBreakpoint: s.dbg.Breakpoints.HasBreakpoint(idx),
		})
	}
	return result
}

// GetStack returns the top count stack entries, nearest-first.
func (s *DebuggerService) GetStack(count int) []StackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dbg == nil || count <= 0 {
		return nil
	}

	stack := s.dbg.Ctx.Stack
	result := make([]StackEntry, 0, count)
	for i := 0; i < count && i < len(stack); i++ {
		idx := len(stack) - 1 - i
		cell := stack[idx]
		result = append(result, StackEntry{
			Index:     idx,
			Value:     cell.Raw,
			IsPointer: cell.Tag == vm.Pointer,
			Symbol:    s.symbolForLine(int(cell.Raw)),
		})
	}
	return result
}

// GetHeap returns length bytes of the heap buffer at index.
func (s *DebuggerService) GetHeap(index int32, length int) HeapRegion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dbg == nil {
		return HeapRegion{Index: int(index)}
	}
	if index < 0 || int(index) >= s.dbg.Ctx.Heap.Len() {
		return HeapRegion{Index: int(index)}
	}
	buf := s.dbg.Ctx.Heap.Get(index)
	if length > 0 && length < len(buf) {
		buf = buf[:length]
	}
	return HeapRegion{Index: int(index), Data: append([]byte(nil), buf...)}
}

// GetSymbols returns every label name mapped to its 1-indexed program line.
func (s *DebuggerService) GetSymbols() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dbg == nil {
		return nil
	}
	result := make(map[string]int, len(s.dbg.Symbols))
	for name, line := range s.dbg.Symbols {
		result[name] = line + 1
	}
	return result
}

func (s *DebuggerService) symbolForLine(line int) string {
	for name, l := range s.dbg.Symbols {
		if l == line {
			return name
		}
	}
	return ""
}

// GetOutput returns and clears the session's accumulated debugger-command
// output (breakpoint hits, `print`/`info` results, etc). Program stdout is
// delivered separately, via the writer passed to SetOutputWriter.
func (s *DebuggerService) GetOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbg == nil {
		return ""
	}
	return s.dbg.GetOutput()
}

// ExecuteCommand runs one debugger command line and returns its output.
func (s *DebuggerService) ExecuteCommand(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbg == nil {
		return "", fmt.Errorf("no program loaded")
	}
	err := s.dbg.ExecuteCommand(command)
	return s.dbg.GetOutput(), err
}

// EvaluateExpression evaluates a `print`-style expression over the current
// session state and returns its numeric value.
func (s *DebuggerService) EvaluateExpression(expr string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbg == nil {
		return 0, fmt.Errorf("no program loaded")
	}
	return s.dbg.Evaluator.EvaluateExpression(expr, s.dbg.Ctx, s.dbg.Symbols)
}

// SendInput writes a line of input to the guest program's stdin, for
// sessions whose code calls asmr::io::readln. If the session isn't
// currently running, the input is buffered and flushed when it next runs,
// so GUI-style drivers can queue input up front.
func (s *DebuggerService) SendInput(line string) error {
	s.mu.RLock()
	running := s.dbg != nil && s.dbg.Running
	writer := s.stdinWriter
	s.mu.RUnlock()

	if writer == nil {
		return fmt.Errorf("no program loaded")
	}

	if !running {
		s.mu.Lock()
		s.stdinBuffered.WriteString(line + "\n")
		s.mu.Unlock()
		return nil
	}

	_, err := writer.Write([]byte(line + "\n"))
	return err
}

// FlushBufferedStdin writes any input buffered by SendInput before the
// program started running. Called right before the run loop starts; the
// write happens on its own goroutine so a full pipe never stalls the
// caller.
func (s *DebuggerService) FlushBufferedStdin() {
	s.mu.Lock()
	if s.stdinBuffered.Len() == 0 {
		s.mu.Unlock()
		return
	}
	buffered := s.stdinBuffered.String()
	s.stdinBuffered.Reset()
	writer := s.stdinWriter
	s.mu.Unlock()

	go func() {
		_, _ = writer.Write([]byte(buffered))
	}()
}

// ResolveLine resolves a label name or 1-based line number to a 1-based
// line number, validating it against the loaded program.
func (s *DebuggerService) ResolveLine(lineOrLabel string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dbg == nil {
		return 0, fmt.Errorf("no program loaded")
	}
	line, err := s.dbg.ResolveLine(lineOrLabel)
	if err != nil {
		return 0, err
	}
	return line + 1, nil
}

// ParseLine parses a single decimal line number out of a string, used by
// HTTP handlers that accept either "42" or a label name for breakpoints.
func ParseLine(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
