package tools

import (
	"strings"

	"github.com/jpoag/asmr/parser"
)

// FormatStyle selects how tightly formatted output is packed.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // aligned columns
	FormatCompact                     // single space between fields
)

// FormatOptions controls formatter output.
type FormatOptions struct {
	Style             FormatStyle
	InstructionColumn int // column instructions/variables start at (FormatDefault only)
	OperandColumn     int // column operands start at (FormatDefault only)
}

// DefaultFormatOptions returns the formatter's default column layout.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatDefault, InstructionColumn: 8, OperandColumn: 16}
}

// CompactFormatOptions returns options for single-space, unaligned output.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatCompact}
}

// Formatter re-renders a parsed asmr program into canonical source text.
// Since [parser.Line] discards inline comments (they are not part of the
// semantic line model), formatted output never carries comments forward
// even if the input had them.
type Formatter struct {
	options *FormatOptions
	output  strings.Builder
}

// NewFormatter creates a formatter with the given options, or
// DefaultFormatOptions if options is nil.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format parses input and renders it back out in canonical form.
func (f *Formatter) Format(input string) (string, error) {
	lines := strings.Split(input, "\n")

	program, err := parser.ParseLines(lines)
	if err != nil {
		return "", err
	}

	f.output.Reset()
	for _, line := range program {
		f.formatLine(line)
	}
	return f.output.String(), nil
}

func (f *Formatter) formatLine(line parser.Line) {
	switch line.Kind {
	case parser.LineBlank:
		f.output.WriteString("\n")
	case parser.LineLabel:
		f.output.WriteString(line.Label)
		f.output.WriteString(":\n")
	case parser.LineInstruction:
		f.formatFields(string(line.Opcode), formatParams(line.Params))
	case parser.LineVariable:
		keyword := "db"
		if line.MemType == parser.Resb {
			keyword = "resb"
		}
		f.formatFields(line.Identifier+" "+keyword, formatParams(line.Params))
	}
}

// formatFields lays out a "head operands" pair as either a single aligned
// column (FormatDefault) or a single space (FormatCompact).
func (f *Formatter) formatFields(head, operands string) {
	var b strings.Builder

	if f.options.Style == FormatCompact {
		b.WriteString(head)
		if operands != "" {
			b.WriteString(" ")
			b.WriteString(operands)
		}
		f.output.WriteString(b.String())
		f.output.WriteString("\n")
		return
	}

	padToColumn(&b, f.options.InstructionColumn)
	b.WriteString(head)
	if operands != "" {
		padToColumn(&b, f.options.OperandColumn)
		b.WriteString(operands)
	}
	f.output.WriteString(b.String())
	f.output.WriteString("\n")
}

func formatParams(params []parser.Token) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// padToColumn pads b with spaces until it reaches column, or a single space
// if b has already reached it.
func padToColumn(b *strings.Builder, column int) {
	if b.Len() < column {
		b.WriteString(strings.Repeat(" ", column-b.Len()))
	} else {
		b.WriteString(" ")
	}
}

// FormatString formats input with the default column layout.
func FormatString(input string) (string, error) {
	return NewFormatter(DefaultFormatOptions()).Format(input)
}

// FormatStringWithStyle formats input with the given style.
func FormatStringWithStyle(input string, style FormatStyle) (string, error) {
	var options *FormatOptions
	if style == FormatCompact {
		options = CompactFormatOptions()
	} else {
		options = DefaultFormatOptions()
	}
	return NewFormatter(options).Format(input)
}
