package debugger

import (
	"strings"
	"testing"

	"github.com/jpoag/asmr/parser"
)

func loadDebugger(t *testing.T, src string) *Debugger {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(src), "\n")
	program, err := parser.ParseLines(lines)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	return NewDebugger(program, lines)
}

func TestStepAdvancesExactlyOneLine(t *testing.T) {
	dbg := loadDebugger(t, `
mov eax, 1
mov eax, 2
mov eax, 3
`)

	if err := dbg.ExecuteCommand("step"); err != nil {
		t.Fatalf("step: %v", err)
	}
	reason, halted, err := dbg.DriveUntilStop()
	if err != nil || halted {
		t.Fatalf("reason=%q halted=%v err=%v", reason, halted, err)
	}

	if dbg.Ctx.Ptr != 1 {
		t.Errorf("ptr = %d after one step, want 1", dbg.Ctx.Ptr)
	}
	if dbg.Ctx.Registers.Get(parser.Eax).Raw != 1 {
		t.Errorf("eax = %d, want 1", dbg.Ctx.Registers.Get(parser.Eax).Raw)
	}
}

func TestContinueStopsAtBreakpoint(t *testing.T) {
	dbg := loadDebugger(t, `
mov eax, 1
mov eax, 2
mov eax, 3
`)
	dbg.Breakpoints.AddBreakpoint(2, false, "")

	if err := dbg.ExecuteCommand("continue"); err != nil {
		t.Fatalf("continue: %v", err)
	}
	reason, halted, err := dbg.DriveUntilStop()
	if err != nil {
		t.Fatalf("DriveUntilStop: %v", err)
	}
	if halted {
		t.Fatal("halted before reaching the breakpoint")
	}
	if !strings.HasPrefix(reason, "breakpoint") {
		t.Errorf("reason = %q, want a breakpoint stop", reason)
	}
	if dbg.Ctx.Ptr != 2 {
		t.Errorf("ptr = %d, want 2 (stopped before executing the line)", dbg.Ctx.Ptr)
	}
	if dbg.Ctx.Registers.Get(parser.Eax).Raw != 2 {
		t.Errorf("eax = %d, want 2", dbg.Ctx.Registers.Get(parser.Eax).Raw)
	}
}

func TestContinueFromBreakpointDoesNotRetrigger(t *testing.T) {
	dbg := loadDebugger(t, `
mov eax, 1
mov eax, 2
`)
	dbg.Breakpoints.AddBreakpoint(0, false, "")

	if err := dbg.ExecuteCommand("continue"); err != nil {
		t.Fatalf("continue: %v", err)
	}
	// Parked on line 0's breakpoint; run-style commands skip the check for
	// the line they are parked on.
	dbg.skipBreakCheck = false
	reason, _, err := dbg.DriveUntilStop()
	if err != nil {
		t.Fatalf("DriveUntilStop: %v", err)
	}
	if !strings.HasPrefix(reason, "breakpoint") {
		t.Fatalf("expected to park on the entry breakpoint, got %q", reason)
	}

	if err := dbg.ExecuteCommand("continue"); err != nil {
		t.Fatalf("continue: %v", err)
	}
	_, halted, err := dbg.DriveUntilStop()
	if err != nil {
		t.Fatalf("DriveUntilStop: %v", err)
	}
	if !halted {
		t.Error("expected the program to run to completion past its own breakpoint")
	}
}

func TestStepOverSkipsCallBody(t *testing.T) {
	dbg := loadDebugger(t, `
mov eax, 5
call double
jmp done
double:
add eax, eax
ret
done:
mov ebx, 1
`)

	// Step onto the call line.
	if err := dbg.ExecuteCommand("step"); err != nil {
		t.Fatalf("step: %v", err)
	}
	if _, _, err := dbg.DriveUntilStop(); err != nil {
		t.Fatalf("DriveUntilStop: %v", err)
	}
	if dbg.Ctx.Ptr != 1 {
		t.Fatalf("ptr = %d, want 1 (the call line)", dbg.Ctx.Ptr)
	}

	dbg.SetStepOver()
	reason, halted, err := dbg.DriveUntilStop()
	if err != nil || halted {
		t.Fatalf("reason=%q halted=%v err=%v", reason, halted, err)
	}

	if dbg.Ctx.Ptr != 2 {
		t.Errorf("ptr = %d, want 2 (the line after the call)", dbg.Ctx.Ptr)
	}
	if dbg.Ctx.Registers.Get(parser.Eax).Raw != 10 {
		t.Errorf("eax = %d, want 10 (the call body ran)", dbg.Ctx.Registers.Get(parser.Eax).Raw)
	}
}

func TestResolveLineLabelAndNumber(t *testing.T) {
	dbg := loadDebugger(t, `
start:
mov eax, 1
`)

	line, err := dbg.ResolveLine("start")
	if err != nil || line != 0 {
		t.Errorf("ResolveLine(start) = %d, %v; want 0, nil", line, err)
	}

	line, err = dbg.ResolveLine("2")
	if err != nil || line != 1 {
		t.Errorf("ResolveLine(2) = %d, %v; want 1, nil", line, err)
	}

	if _, err := dbg.ResolveLine("99"); err == nil {
		t.Error("expected an out-of-range error")
	}
}

func TestRunToCompletionRecordsExitCode(t *testing.T) {
	dbg := loadDebugger(t, `
mov eax, 3
mov ebx, 4
add eax, ebx
`)

	if err := dbg.ExecuteCommand("continue"); err != nil {
		t.Fatalf("continue: %v", err)
	}
	_, halted, err := dbg.DriveUntilStop()
	if err != nil {
		t.Fatalf("DriveUntilStop: %v", err)
	}
	if !halted {
		t.Fatal("expected the program to halt")
	}
	if dbg.ExitCode != 7 {
		t.Errorf("exit code = %d, want 7", dbg.ExitCode)
	}
}
