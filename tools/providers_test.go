package tools

import (
	"testing"
)

func TestCompletionItems_DeclarationsFirst(t *testing.T) {
	source := "msg db \"hi\"\nstart:\nmov eax, msg\n"

	items, err := CompletionItems(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) < 2 {
		t.Fatalf("expected at least the two declarations, got %d items", len(items))
	}
	if items[0].TokenName != "msg" || items[0].TokenType != CompletionVariable {
		t.Errorf("expected msg/variable first, got %s/%s", items[0].TokenName, items[0].TokenType)
	}
	if items[1].TokenName != "start" || items[1].TokenType != CompletionLabel {
		t.Errorf("expected start/label second, got %s/%s", items[1].TokenName, items[1].TokenType)
	}
}

func TestCompletionItems_IncludesBuiltinsRegistersInstructions(t *testing.T) {
	items, err := CompletionItems("nop\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]CompletionType{
		"asmr::io::print":  CompletionFunction,
		"asmr::io::readln": CompletionFunction,
		"eax":              CompletionRegister,
		"ebp":              CompletionRegister,
		"mov":              CompletionInstruction,
		"call":             CompletionInstruction,
	}
	for _, item := range items {
		if typ, ok := want[item.TokenName]; ok && item.TokenType == typ {
			delete(want, item.TokenName)
		}
	}
	for name, typ := range want {
		t.Errorf("missing completion %s (%s)", name, typ)
	}
}

func TestCompletionItems_ParseError(t *testing.T) {
	if _, err := CompletionItems("this is not valid\n"); err == nil {
		t.Error("expected a parse error")
	}
}

func TestDocumentSymbols_LabelSpansItsBlock(t *testing.T) {
	source := "first:\nmov eax, 1\nsecond:\nmov ebx, 2\nret"

	symbols, err := DocumentSymbols(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(symbols))
	}

	if symbols[0].TokenName != "first" || symbols[0].TokenType != SymbolLabel {
		t.Errorf("expected first/label, got %s/%s", symbols[0].TokenName, symbols[0].TokenType)
	}
	if symbols[0].Range.LineStart != 0 || symbols[0].Range.LineEnd != 1 {
		t.Errorf("expected first to span lines 0-1, got %d-%d",
			symbols[0].Range.LineStart, symbols[0].Range.LineEnd)
	}

	if symbols[1].TokenName != "second" {
		t.Errorf("expected second, got %s", symbols[1].TokenName)
	}
	if symbols[1].Range.LineStart != 2 || symbols[1].Range.LineEnd != 4 {
		t.Errorf("expected second to span lines 2-4, got %d-%d",
			symbols[1].Range.LineStart, symbols[1].Range.LineEnd)
	}
}

func TestDocumentSymbols_VariableIsSingleLine(t *testing.T) {
	source := "msg db \"hello\"\nstart:\nret"

	symbols, err := DocumentSymbols(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(symbols) == 0 {
		t.Fatal("expected symbols")
	}
	if symbols[0].TokenName != "msg" || symbols[0].TokenType != SymbolVariable {
		t.Fatalf("expected msg/variable, got %s/%s", symbols[0].TokenName, symbols[0].TokenType)
	}
	if symbols[0].Range.LineStart != 0 || symbols[0].Range.LineEnd != 0 {
		t.Errorf("expected a single-line range, got %d-%d",
			symbols[0].Range.LineStart, symbols[0].Range.LineEnd)
	}
	if symbols[0].Range.CharEnd != len("msg db \"hello\"") {
		t.Errorf("expected char end %d, got %d", len("msg db \"hello\""), symbols[0].Range.CharEnd)
	}
}

func TestSemanticTokens_BuiltinFlaggedAsFunction(t *testing.T) {
	source := "push eax\ncall asmr::io::print"

	tokens, err := SemanticTokens(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	tok := tokens[0]
	if tok.TokenName != "asmr::io::print" || tok.TokenType != SemanticFunction {
		t.Errorf("expected asmr::io::print/function, got %s/%s", tok.TokenName, tok.TokenType)
	}
	if tok.Line != 1 || tok.Start != 5 {
		t.Errorf("expected position 1:5, got %d:%d", tok.Line, tok.Start)
	}
	if tok.Length != len("asmr::io::print") {
		t.Errorf("expected length %d, got %d", len("asmr::io::print"), tok.Length)
	}
}

func TestSemanticTokens_LabelOperandResolvesBeforeDeclaration(t *testing.T) {
	// Labels are visible to operands on earlier lines.
	source := "jmp done\ndone:"

	tokens, err := SemanticTokens(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].TokenName != "done" || tokens[0].Line != 0 || tokens[0].Start != 4 {
		t.Errorf("unexpected operand token: %+v", tokens[0])
	}
	if tokens[1].TokenName != "done" || tokens[1].Line != 1 || tokens[1].Start != 0 {
		t.Errorf("unexpected declaration token: %+v", tokens[1])
	}
}

func TestSemanticTokens_UnknownIdentifierUnflagged(t *testing.T) {
	// `mov eax, mystery` with no declaration anywhere: the operand stays
	// unflagged so the editor falls back to its default colouring.
	source := "mov eax, mystery"

	tokens, err := SemanticTokens(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %+v", tokens)
	}
}

func TestSemanticTokens_VariableDeclarationAndUse(t *testing.T) {
	source := "msg db \"hi\", 0xa\nmov eax, msg"

	tokens, err := SemanticTokens(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	for _, tok := range tokens {
		if tok.TokenName != "msg" || tok.TokenType != SemanticVariable {
			t.Errorf("unexpected token: %+v", tok)
		}
	}
	if tokens[1].Line != 1 || tokens[1].Start != 9 {
		t.Errorf("expected use at 1:9, got %d:%d", tokens[1].Line, tokens[1].Start)
	}
}
