package tools

import (
	"strings"
	"testing"
)

func TestXRef_LabelDefinitionAndJumpReference(t *testing.T) {
	source := "loop:\nmov eax, 1\njmp loop\n"

	symbols, err := NewXRefGenerator().Generate(source)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	sym, ok := symbols["loop"]
	if !ok {
		t.Fatal("expected a `loop` symbol")
	}
	if sym.Definition == nil || sym.Definition.Line != 1 {
		t.Errorf("expected definition at line 1, got %+v", sym.Definition)
	}
	if len(sym.References) != 1 || sym.References[0].Type != RefJump || sym.References[0].Line != 3 {
		t.Errorf("expected a single jump reference at line 3, got %+v", sym.References)
	}
}

func TestXRef_CallMarksFunction(t *testing.T) {
	source := "call routine\nret\nroutine:\nret\n"

	symbols, err := NewXRefGenerator().Generate(source)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	sym, ok := symbols["routine"]
	if !ok {
		t.Fatal("expected a `routine` symbol")
	}
	if !sym.IsFunction {
		t.Error("expected routine to be marked a function after a call reference")
	}
	if len(sym.References) != 1 || sym.References[0].Type != RefCall {
		t.Errorf("expected a single call reference, got %+v", sym.References)
	}
}

func TestXRef_VariableDataReference(t *testing.T) {
	source := "msg db \"hi\"\nmov eax, msg\n"

	symbols, err := NewXRefGenerator().Generate(source)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	sym, ok := symbols["msg"]
	if !ok {
		t.Fatal("expected a `msg` symbol")
	}
	if !sym.IsVariable {
		t.Error("expected msg to be marked a variable")
	}
	if len(sym.References) != 1 || sym.References[0].Type != RefData {
		t.Errorf("expected a single data reference, got %+v", sym.References)
	}
}

func TestXRef_UndefinedAndUnusedSymbols(t *testing.T) {
	source := "msg db \"hi\"\njmp missing\n"

	gen := NewXRefGenerator()
	if _, err := gen.Generate(source); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	undefined := gen.GetUndefinedSymbols()
	if len(undefined) != 1 || undefined[0].Name != "missing" {
		t.Errorf("expected `missing` to be undefined, got %+v", undefined)
	}

	unused := gen.GetUnusedSymbols()
	if len(unused) != 1 || unused[0].Name != "msg" {
		t.Errorf("expected `msg` to be unused, got %+v", unused)
	}
}

func TestXRef_ReportString(t *testing.T) {
	report, err := GenerateXRef("loop:\njmp loop\n")
	if err != nil {
		t.Fatalf("GenerateXRef failed: %v", err)
	}
	if !strings.Contains(report, "loop") {
		t.Errorf("expected report to mention loop, got: %s", report)
	}
	if !strings.Contains(report, "Total symbols:     1") {
		t.Errorf("expected summary of one symbol, got: %s", report)
	}
}

func TestXRef_ParseError(t *testing.T) {
	_, err := NewXRefGenerator().Generate("mov eax, @@@\n")
	if err == nil {
		t.Error("expected a parse error for invalid token")
	}
}
