// Package main implements a minimal native desktop front-end for running
// and single-stepping asmr programs: a source pane, run/step/stop
// controls, a register table, and an output console. It wraps the vm
// package directly rather than going through the debugger package's
// breakpoint/watchpoint machinery, for a simple load-and-run experience.
package main

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/jpoag/asmr/parser"
	"github.com/jpoag/asmr/vm"
)

// App holds the GUI's fyne widgets and the execution state they render.
type App struct {
	FyneApp fyne.App
	Window  fyne.Window

	SourceEditor  *widget.Entry
	RegisterView  *widget.TextGrid
	ConsoleOutput *widget.TextGrid
	StatusLabel   *widget.Label
	Toolbar       *widget.Toolbar

	program []parser.Line
	source  []string
	ctx     *vm.Context
	running bool

	consoleBuf   strings.Builder
	consoleMutex sync.Mutex
}

// consoleWriter copies program output into the console pane as it is
// produced.
type consoleWriter struct{ a *App }

func (w *consoleWriter) Write(p []byte) (int, error) {
	w.a.consoleMutex.Lock()
	w.a.consoleBuf.Write(p)
	text := w.a.consoleBuf.String()
	w.a.consoleMutex.Unlock()
	w.a.ConsoleOutput.SetText(text)
	return len(p), nil
}

// NewApp creates the GUI, its window, and its panel layout.
func NewApp() *App {
	fyneApp := app.New()
	window := fyneApp.NewWindow("asmr")

	a := &App{FyneApp: fyneApp, Window: window}
	a.initializeViews()
	a.setupToolbar()
	a.buildLayout()

	window.Resize(fyne.NewSize(1100, 750))
	return a
}

func (a *App) initializeViews() {
	a.SourceEditor = widget.NewMultiLineEntry()
	a.SourceEditor.SetPlaceHolder("loop:\n    mov eax, 0\n    ...\n")

	a.RegisterView = widget.NewTextGrid()
	a.updateRegisters()

	a.ConsoleOutput = widget.NewTextGrid()
	a.StatusLabel = widget.NewLabel("Ready")
}

func (a *App) buildLayout() {
	sourcePanel := container.NewBorder(
		widget.NewLabel("Source"), nil, nil, nil,
		container.NewScroll(a.SourceEditor),
	)
	registerPanel := container.NewBorder(
		widget.NewLabel("Registers"), nil, nil, nil,
		container.NewScroll(a.RegisterView),
	)
	consolePanel := container.NewBorder(
		widget.NewLabel("Output"), nil, nil, nil,
		container.NewScroll(a.ConsoleOutput),
	)

	rightSplit := container.NewVSplit(registerPanel, consolePanel)
	rightSplit.SetOffset(0.4)

	mainSplit := container.NewHSplit(sourcePanel, rightSplit)
	mainSplit.SetOffset(0.6)

	statusBar := container.NewBorder(nil, nil, nil, nil, a.StatusLabel)
	a.Window.SetContent(container.NewBorder(a.Toolbar, statusBar, nil, nil, mainSplit))
}

func (a *App) setupToolbar() {
	a.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaPlayIcon(), a.runProgram),
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), a.stepProgram),
		widget.NewToolbarAction(theme.MediaStopIcon(), a.stopProgram),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), a.updateViews),
	)
}

// loadProgram parses the source editor's contents and seeds a fresh
// execution context.
func (a *App) loadProgram() error {
	a.source = strings.Split(a.SourceEditor.Text, "\n")
	program, err := parser.ParseLines(a.source)
	if err != nil {
		return err
	}

	a.program = program
	a.ctx = vm.NewContext(len(program))
	vm.BindLabels(a.ctx, program)
	a.ctx.Stdout = &consoleWriter{a: a}
	a.ctx.Stdin = bufio.NewReader(strings.NewReader(""))
	a.running = false
	return nil
}

func (a *App) runProgram() {
	if err := a.loadProgram(); err != nil {
		a.setStatus(fmt.Sprintf("Parse error: %v", err))
		return
	}

	a.running = true
	a.setStatus("Running...")
	go func() {
		exitCode, err := vm.ExecuteContext(a.ctx, a.program)
		a.running = false
		if err != nil {
			a.setStatus(fmt.Sprintf("Runtime error: %v", err))
		} else {
			a.setStatus(fmt.Sprintf("Exited with code %d", exitCode))
		}
		a.updateViews()
	}()
}

func (a *App) stepProgram() {
	if a.ctx == nil {
		if err := a.loadProgram(); err != nil {
			a.setStatus(fmt.Sprintf("Parse error: %v", err))
			return
		}
	}

	halted, err := vm.Step(a.ctx, a.program)
	if err != nil {
		a.setStatus(fmt.Sprintf("Runtime error: %v", err))
	} else if halted {
		a.setStatus(fmt.Sprintf("Exited with code %d", a.ctx.Registers.Get(parser.Eax).Raw))
	} else {
		a.setStatus(fmt.Sprintf("At line %d", a.ctx.Ptr+1))
	}
	a.updateViews()
}

func (a *App) stopProgram() {
	a.running = false
	a.setStatus("Stopped")
}

func (a *App) setStatus(text string) {
	a.StatusLabel.SetText(text)
}

func (a *App) updateViews() {
	a.updateRegisters()
	a.updateConsole()
}

var registerOrder = []parser.RegisterName{
	parser.Eax, parser.Ebx, parser.Ecx, parser.Edx,
	parser.Esp, parser.Ebp, parser.Eip,
}

func (a *App) updateRegisters() {
	var sb strings.Builder
	if a.ctx == nil {
		sb.WriteString("(not loaded)")
	} else {
		for _, name := range registerOrder {
			cell := a.ctx.Registers.Get(name)
			tag := "value"
			if cell.Tag == vm.Pointer {
				tag = "ptr"
			}
			fmt.Fprintf(&sb, "%-4s %12d  (%s)\n", name, cell.Raw, tag)
		}
		fmt.Fprintf(&sb, "\nCF=%v ZF=%v SF=%v OF=%v\n",
			a.ctx.Flags.Get(vm.CF), a.ctx.Flags.Get(vm.ZF),
			a.ctx.Flags.Get(vm.SF), a.ctx.Flags.Get(vm.OF))
	}
	a.RegisterView.SetText(sb.String())
}

func (a *App) updateConsole() {
	a.consoleMutex.Lock()
	defer a.consoleMutex.Unlock()
	a.ConsoleOutput.SetText(a.consoleBuf.String())
}

// Run shows the window and blocks until it is closed.
func (a *App) Run() {
	a.Window.ShowAndRun()
}
