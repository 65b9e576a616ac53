package debugger

// Code View Context Constants
const (
	// ListContextLines is the number of lines shown before and after the
	// current instruction pointer by the `list` command
	ListContextLines = 5
)

// Stack Display Constants
const (
	// StackViewSlots is the number of stack slots shown in the TUI stack
	// panel, topmost first
	StackViewSlots = 20

	// BacktraceMaxFrames bounds the frames walked by `backtrace` so a
	// corrupted saved-ebp chain cannot loop forever
	BacktraceMaxFrames = 64
)

// TUI Layout Constants
const (
	// RegisterViewRows is the fixed height of the register panel, borders
	// included (9 registers three to a row, a blank line, the flags line)
	RegisterViewRows = 11

	// BreakpointsViewRows is the fixed height of the breakpoints panel
	BreakpointsViewRows = 8

	// CommandInputRows is the fixed height of the command input field
	CommandInputRows = 3
)
