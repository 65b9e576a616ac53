package debugger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jpoag/asmr/parser"
	"github.com/jpoag/asmr/vm"
)

// tuiRegisters lists the registers shown in the TUI's register panel, in
// display order.
var tuiRegisters = []parser.RegisterName{
	parser.Eax, parser.Ebx, parser.Ecx, parser.Edx,
	parser.Esi, parser.Edi, parser.Esp, parser.Ebp,
	parser.Eip,
}

// TUI is the full-screen tcell/tview debugger, driving a Debugger by
// stepping its vm.Context one line at a time and rendering source,
// registers, stack, and breakpoint state after every step.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	RegisterView    *tview.TextView
	StackView       *tview.TextView
	HeapView        *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI creates a new text user interface over dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{Debugger: dbg, App: tview.NewApplication()}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers / Flags ")

	t.StackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.HeapView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.HeapView.SetBorder(true).SetTitle(" Heap / Symbols ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
	t.CommandInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp:
			if prev := t.Debugger.History.Previous(); prev != "" {
				t.CommandInput.SetText(prev)
			}
			return nil
		case tcell.KeyDown:
			t.CommandInput.SetText(t.Debugger.History.Next())
			return nil
		}
		return event
	})
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.OutputView, 0, 1, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, RegisterViewRows, 0, false).
		AddItem(t.StackView, 0, 1, false).
		AddItem(t.HeapView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, BreakpointsViewRows, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.CommandInput, CommandInputRows, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd != "" {
		t.executeCommand(cmd)
		t.CommandInput.SetText("")
	}
}

// executeCommand runs cmd through the Debugger's command dispatcher, then
// keeps single-stepping while the debugger is in a "running" state (after
// `continue`/`next`/`finish`) until it stops or halts.
func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output := t.Debugger.GetOutput(); output != "" {
		t.WriteOutput(output)
	}

	reason, halted, driveErr := t.Debugger.DriveUntilStop()
	switch {
	case driveErr != nil:
		t.WriteOutput(fmt.Sprintf("[red]Runtime error: %v[white]\n", driveErr))
	case halted:
		t.WriteOutput(fmt.Sprintf("[green]Program exited with code %d[white]\n", t.Debugger.ExitCode))
	case reason != "":
		t.WriteOutput(fmt.Sprintf("[yellow]Stopped: %s at line %d[white]\n", reason, t.Debugger.Ctx.Ptr+1))
	}

	t.RefreshAll()
}

// WriteOutput appends text to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from the current Debugger state.
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateRegisterView()
	t.UpdateStackView()
	t.UpdateHeapView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateSourceView shows the source listing around the instruction pointer,
// marking the current line and any breakpoint.
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	if len(t.Debugger.Source) == 0 {
		t.SourceView.SetText("[yellow]No source loaded[white]")
		return
	}

	ptr := t.Debugger.Ctx.Ptr
	start := ptr - 10
	if start < 0 {
		start = 0
	}
	end := ptr + 20
	if end > len(t.Debugger.Source) {
		end = len(t.Debugger.Source)
	}

	var lines []string
	for i := start; i < end; i++ {
		marker := "  "
		color := "white"
		if i == ptr {
			marker = "->"
			color = "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(i) != nil {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, i+1, t.Debugger.Source[i]))
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

// UpdateRegisterView shows the general-purpose registers and condition
// flags.
func (t *TUI) UpdateRegisterView() {
	t.RegisterView.Clear()

	ctx := t.Debugger.Ctx
	var lines []string

	for i := 0; i < len(tuiRegisters); i += 3 {
		var cols []string
		for j := i; j < i+3 && j < len(tuiRegisters); j++ {
			name := tuiRegisters[j]
			cell := ctx.Registers.Get(name)
			tag := "v"
			if cell.Tag == vm.Pointer {
				tag = "p"
			}
			cols = append(cols, fmt.Sprintf("%-4s %s:%-8d", name.String()+":", tag, cell.Raw))
		}
		lines = append(lines, strings.Join(cols, " "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("CF:%d ZF:%d SF:%d OF:%d",
		boolBit(ctx.Flags.Get(vm.CF)),
		boolBit(ctx.Flags.Get(vm.ZF)),
		boolBit(ctx.Flags.Get(vm.SF)),
		boolBit(ctx.Flags.Get(vm.OF)),
	))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// UpdateStackView shows the topmost stack entries, nearest the current esp
// first.
func (t *TUI) UpdateStackView() {
	t.StackView.Clear()

	ctx := t.Debugger.Ctx
	esp := int(ctx.Registers.Get(parser.Esp).Raw)

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]esp: %d[white]", esp))

	start := len(ctx.Stack) - 1
	for i := start; i >= 0 && i > start-StackViewSlots; i-- {
		marker := "  "
		if i == esp {
			marker = "->"
		}
		cell := ctx.Stack[i]
		lines = append(lines, fmt.Sprintf("%s [%3d] %d", marker, i, cell.Raw))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateHeapView shows every bound symbol and the heap buffer it addresses.
func (t *TUI) UpdateHeapView() {
	t.HeapView.Clear()

	symbols := t.Debugger.Ctx.Symtab.All()
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		idx := symbols[name]
		buf := t.Debugger.Ctx.Heap.Get(idx)
		lines = append(lines, fmt.Sprintf("%-16s [%d] %q", name, idx, buf))
	}
	if len(lines) == 0 {
		lines = append(lines, "[yellow]No variables declared[white]")
	}

	t.HeapView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView lists every breakpoint and watchpoint.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}
			line := fmt.Sprintf("  %d: [%s]%s[white] line %d", bp.ID, color, status, bp.Line+1)
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			typeStr := "watch"
			switch wp.Type {
			case WatchRead:
				typeStr = "rwatch"
			case WatchReadWrite:
				typeStr = "awatch"
			}
			lines = append(lines, fmt.Sprintf("  %d: %s %s = %s", wp.ID, typeStr, wp.Expression, wp.LastValue))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI's event loop.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]asmr interactive debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for the full command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop shuts down the TUI's event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
