package vm

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/jpoag/asmr/parser"
)

func mustParse(t *testing.T, src string) []parser.Line {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(src), "\n")
	parsed, err := parser.ParseLines(lines)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	return parsed
}

func runWithIO(t *testing.T, src, stdin string) (uint8, string) {
	t.Helper()
	program := mustParse(t, src)

	ctx := NewContext(len(program))
	var out bytes.Buffer
	ctx.Stdout = &out
	ctx.Stdin = bufio.NewReader(strings.NewReader(stdin))

	code, err := ExecuteContext(ctx, program)
	if err != nil {
		t.Fatalf("ExecuteContext: %v", err)
	}
	return code, out.String()
}

// Scenario 1: a printed Value prints its decimal value. The exit code is
// eax's low byte, and nothing in the print path (push copies the register,
// the builtin only touches the stack and frame pointers) writes eax back,
// so the 7 survives to the exit code as well.
func TestScenarioPrintValue(t *testing.T) {
	code, out := runWithIO(t, `
mov eax, 7
push eax
call asmr::io::print
`, "")

	if out != "7" {
		t.Errorf("stdout = %q, want %q", out, "7")
	}
	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
}

// Scenario 2: a printed Pointer prints the heap bytes it addresses as
// characters.
func TestScenarioPrintPointer(t *testing.T) {
	code, out := runWithIO(t, `
msg db "hi", 0xa
mov eax, msg
push eax
call asmr::io::print
`, "")

	if out != "hi\n" {
		t.Errorf("stdout = %q, want %q", out, "hi\n")
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

// Scenario 3: basic arithmetic feeding the exit code through eax.
func TestScenarioAddFeedsExitCode(t *testing.T) {
	code, _ := runWithIO(t, `
mov eax, 3
mov ebx, 4
add eax, ebx
`, "")

	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
}

// Scenario 4: a counting loop driven by cmp/jne.
func TestScenarioCountingLoop(t *testing.T) {
	code, _ := runWithIO(t, `
mov ecx, 0
.loop:
inc ecx
cmp ecx, 3
jne .loop
mov eax, ecx
`, "")

	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

// Scenario 5: asmr::io::readln fills a reserved buffer from stdin, and
// printing that pointer echoes it back without the trailing newline.
func TestScenarioReadlnThenPrint(t *testing.T) {
	code, out := runWithIO(t, `
msg resb 16
mov eax, msg
push eax
call asmr::io::readln
push eax
call asmr::io::print
`, "hello\n")

	if out != "hello" {
		t.Errorf("stdout = %q, want %q", out, "hello")
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

// Scenario 6: the call/ret protocol restores esp/ebp across a call, and the
// callee's write to eax survives the return. The caller jumps over the
// subroutine body so control never falls back into it after ret resumes at
// the line immediately following the call.
func TestScenarioCallRetDoublesEax(t *testing.T) {
	code, _ := runWithIO(t, `
mov eax, 5
push eax
call double
jmp done
double:
add eax, eax
ret
done:
`, "")

	if code != 10 {
		t.Errorf("exit code = %d, want 10", code)
	}
}

// Execution invariant: push R; pop R leaves R and the stack depth unchanged.
func TestPushPopRoundTrips(t *testing.T) {
	program := mustParse(t, `
mov eax, 42
push eax
pop eax
`)
	ctx := NewContext(len(program))
	stackLenBefore := len(ctx.Stack)

	if _, err := ExecuteContext(ctx, program); err != nil {
		t.Fatalf("ExecuteContext: %v", err)
	}

	if ctx.Registers.Get(parser.Eax).Raw != 42 {
		t.Errorf("eax = %d, want 42", ctx.Registers.Get(parser.Eax).Raw)
	}
	if len(ctx.Stack) != stackLenBefore {
		t.Errorf("stack length = %d, want %d", len(ctx.Stack), stackLenBefore)
	}
}

// Execution invariant: div by zero is a recoverable RuntimeError, not a panic.
func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	program := mustParse(t, `
mov eax, 1
mov ebx, 0
div eax, ebx
`)
	_, err := Execute(program)
	if err == nil {
		t.Fatal("expected a runtime error for division by zero")
	}
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("got error of type %T, want *RuntimeError", err)
	}
}

// Execution invariant: mov to an unknown identifier is a recoverable
// RuntimeError rather than an unchecked abort.
func TestMovUnknownIdentifierIsRuntimeError(t *testing.T) {
	program := mustParse(t, `mov eax, nosuchsymbol`)
	_, err := Execute(program)
	if err == nil {
		t.Fatal("expected a runtime error for an unknown identifier")
	}
}

// Design-notes anomaly: cmp deliberately leaves SF/OF untouched, so right
// after a bare cmp the signed-comparison jumps see SF == OF: jl never
// jumps and jge always does.
func TestCmpDoesNotSetSignOrOverflowFlags(t *testing.T) {
	program := mustParse(t, `
mov eax, 1
mov ebx, 2
cmp eax, ebx
`)
	ctx := NewContext(len(program))
	if _, err := ExecuteContext(ctx, program); err != nil {
		t.Fatalf("ExecuteContext: %v", err)
	}
	if ctx.Flags.Get(SF) || ctx.Flags.Get(OF) {
		t.Errorf("SF/OF set after cmp: SF=%v OF=%v, want both false", ctx.Flags.Get(SF), ctx.Flags.Get(OF))
	}
	if !ctx.Flags.Get(CF) {
		t.Errorf("CF not set after cmp(1, 2), want true")
	}
}

func TestDuplicateLabelsAreRejectedByTheParserBeforeExecution(t *testing.T) {
	_, err := parser.ParseLines(strings.Split("foo:\nmov eax, 1\nfoo:", "\n"))
	if err == nil {
		t.Fatal("expected ParseLines to reject the duplicate label")
	}
}
