package debugger

import (
	"testing"

	"github.com/jpoag/asmr/parser"
)

func newTestDebugger(t *testing.T, src string) *Debugger {
	t.Helper()
	lines := []string{src}
	program, err := parser.ParseLines(lines)
	if err != nil {
		t.Fatalf("ParseLines failed: %v", err)
	}
	return NewDebugger(program, lines)
}

// TestTUIExecuteCommand exercises the TUI's command pipeline directly
// (no simulation screen needed: executeCommand only touches Debugger state
// and the TextView widgets, never the running tview.Application).
func TestTUIExecuteCommand(t *testing.T) {
	dbg := newTestDebugger(t, "nop")
	tui := NewTUI(dbg)

	tui.executeCommand("help")

	output := tui.OutputView.GetText(true)
	if output == "" {
		t.Error("expected help output to be written to the output view")
	}
}

// TestTUIRefreshAll exercises every panel-update function against a fresh
// debugger, guarding against a nil-dereference regression in any of them.
func TestTUIRefreshAll(t *testing.T) {
	dbg := newTestDebugger(t, "nop")
	tui := NewTUI(dbg)

	tui.RefreshAll()

	if tui.SourceView.GetText(true) == "" {
		t.Error("expected source view to render program text")
	}
	if tui.RegisterView.GetText(true) == "" {
		t.Error("expected register view to render register state")
	}
}
