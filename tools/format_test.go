package tools

import (
	"strings"
	"testing"
)

func TestFormat_BasicInstruction(t *testing.T) {
	result, err := FormatString("mov eax, 10")
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	if !strings.Contains(result, "mov") {
		t.Error("expected mov instruction in output")
	}
	if !strings.Contains(result, "eax, 10") {
		t.Errorf("expected formatted operands, got: %q", result)
	}
}

func TestFormat_Label(t *testing.T) {
	result, err := FormatString("loop:\nmov eax, 10\n")
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	if !strings.Contains(result, "loop:\n") {
		t.Errorf("expected label line preserved, got: %q", result)
	}
}

func TestFormat_Variable(t *testing.T) {
	result, err := FormatString(`msg db "hello"`)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	if !strings.Contains(result, "msg db") {
		t.Errorf("expected variable declaration preserved, got: %q", result)
	}
	if !strings.Contains(result, `"hello"`) {
		t.Errorf("expected string literal preserved, got: %q", result)
	}
}

func TestFormat_Compact(t *testing.T) {
	result, err := FormatStringWithStyle("mov eax, 10", FormatCompact)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	if result != "mov eax, 10\n" {
		t.Errorf("compact format = %q, want %q", result, "mov eax, 10\n")
	}
}

func TestFormat_AlignedColumns(t *testing.T) {
	result, err := FormatString("nop")
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	opts := DefaultFormatOptions()
	if !strings.HasPrefix(result, strings.Repeat(" ", opts.InstructionColumn)+"nop") {
		t.Errorf("expected nop indented to column %d, got: %q", opts.InstructionColumn, result)
	}
}

func TestFormat_BlankLinePreserved(t *testing.T) {
	result, err := FormatString("nop\n\nnop\n")
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	if len(lines) != 3 || lines[1] != "" {
		t.Errorf("expected a blank middle line, got: %q", lines)
	}
}

func TestFormat_ParseError(t *testing.T) {
	_, err := FormatString("mov eax, @@@")
	if err == nil {
		t.Error("expected a parse error for invalid token")
	}
}
