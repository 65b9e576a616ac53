package tools

import (
	"strings"

	"github.com/jpoag/asmr/parser"
)

// Builtin function names offered by the completion provider and flagged as
// function tokens by the semantic-token provider.
var builtinNames = []string{"asmr::io::print", "asmr::io::readln"}

// CompletionType tags a completion item.
type CompletionType string

const (
	CompletionVariable    CompletionType = "variable"
	CompletionFunction    CompletionType = "function"
	CompletionLabel       CompletionType = "label"
	CompletionRegister    CompletionType = "register"
	CompletionInstruction CompletionType = "instruction"
)

// CompletionItem is one entry in the completion list for a source file:
// a declared label or variable, a builtin function, a register name, or an
// instruction mnemonic.
type CompletionItem struct {
	TokenName string         `json:"tokenName"`
	TokenType CompletionType `json:"tokenType"`
}

// CompletionItems parses source and returns the full completion list:
// every declared label and variable, followed by the builtin functions,
// the register names, and the instruction mnemonics.
func CompletionItems(source string) ([]CompletionItem, error) {
	program, err := parser.ParseLines(strings.Split(source, "\n"))
	if err != nil {
		return nil, err
	}

	var items []CompletionItem
	for _, line := range program {
		switch line.Kind {
		case parser.LineLabel:
			items = append(items, CompletionItem{TokenName: line.Label, TokenType: CompletionLabel})
		case parser.LineVariable:
			items = append(items, CompletionItem{TokenName: line.Identifier, TokenType: CompletionVariable})
		}
	}

	for _, name := range builtinNames {
		items = append(items, CompletionItem{TokenName: name, TokenType: CompletionFunction})
	}
	for name := parser.Eax; name <= parser.Flags; name++ {
		items = append(items, CompletionItem{TokenName: name.String(), TokenType: CompletionRegister})
	}
	for _, op := range parser.Opcodes {
		items = append(items, CompletionItem{TokenName: string(op), TokenType: CompletionInstruction})
	}

	return items, nil
}

// SymbolType tags a document symbol.
type SymbolType string

const (
	SymbolLabel    SymbolType = "label"
	SymbolVariable SymbolType = "variable"
)

// Range is a half-open span over source positions, 0-indexed.
type Range struct {
	LineStart int `json:"lineStart"`
	CharStart int `json:"charStart"`
	LineEnd   int `json:"lineEnd"`
	CharEnd   int `json:"charEnd"`
}

// DocumentSymbol is one outline entry: a label spanning its block (up to
// the line before the next label) or a variable on its own line.
type DocumentSymbol struct {
	TokenName string     `json:"tokenName"`
	TokenType SymbolType `json:"tokenType"`
	Range     Range      `json:"range"`
}

// DocumentSymbols parses source and returns its outline. Each label's range
// extends from its declaration to the last line before the next label;
// variables get a single-line range.
func DocumentSymbols(source string) ([]DocumentSymbol, error) {
	fileLines := strings.Split(source, "\n")
	program, err := parser.ParseLines(fileLines)
	if err != nil {
		return nil, err
	}

	var symbols []DocumentSymbol

	var currentLabel string
	currentStart := -1

	push := func(name string, kind SymbolType, start, end int) {
		symbols = append(symbols, DocumentSymbol{
			TokenName: name,
			TokenType: kind,
			Range: Range{
				LineStart: start,
				CharStart: 0,
				LineEnd:   end,
				CharEnd:   len(fileLines[end]),
			},
		})
	}

	for i, line := range program {
		switch line.Kind {
		case parser.LineLabel:
			if currentStart >= 0 {
				push(currentLabel, SymbolLabel, currentStart, i-1)
			}
			currentLabel = line.Label
			currentStart = i
		case parser.LineVariable:
			push(line.Identifier, SymbolVariable, i, i)
		}
	}
	if currentStart >= 0 {
		push(currentLabel, SymbolLabel, currentStart, len(program)-1)
	}

	return symbols, nil
}

// Semantic token types, matching the two classifications the highlighter
// distinguishes: identifiers naming builtin functions, and identifiers
// naming labels or variables.
const (
	SemanticVariable = "variable"
	SemanticFunction = "function"
)

// SemanticToken is one highlighted identifier occurrence: its position in
// the raw source and whether it names a function or a variable.
type SemanticToken struct {
	TokenName string `json:"tokenName"`
	Line      int    `json:"line"` // 0-indexed
	Start     int    `json:"start"`
	Length    int    `json:"length"`
	TokenType string `json:"tokenType"`
}

// SemanticTokens parses source and returns a token span for every
// identifier occurrence: declarations of labels and variables, and operand
// identifiers that resolve to a known declaration or a builtin. Unresolved
// identifiers are left unflagged for the editor's default colouring.
func SemanticTokens(source string) ([]SemanticToken, error) {
	fileLines := strings.Split(source, "\n")
	program, err := parser.ParseLines(fileLines)
	if err != nil {
		return nil, err
	}

	// Labels are visible to operands on any line, so collect them first.
	known := make(map[string]bool)
	for _, line := range program {
		if line.Kind == parser.LineLabel {
			known[line.Label] = true
		}
	}

	var tokens []SemanticToken

	push := func(name string, lineIdx int, kind string) {
		start := strings.Index(fileLines[lineIdx], name)
		if start < 0 {
			return
		}
		tokens = append(tokens, SemanticToken{
			TokenName: name,
			Line:      lineIdx,
			Start:     start,
			Length:    len(name),
			TokenType: kind,
		})
	}

	pushParams := func(params []parser.Token, lineIdx int) {
		for _, tok := range params {
			if tok.Kind != parser.TokenIdentifier {
				continue
			}
			if isBuiltinName(tok.Text) {
				push(tok.Text, lineIdx, SemanticFunction)
				continue
			}
			if known[tok.Text] {
				push(tok.Text, lineIdx, SemanticVariable)
			}
		}
	}

	for i, line := range program {
		switch line.Kind {
		case parser.LineInstruction:
			pushParams(line.Params, i)
		case parser.LineLabel:
			push(line.Label, i, SemanticVariable)
		case parser.LineVariable:
			push(line.Identifier, i, SemanticVariable)
			known[line.Identifier] = true
			pushParams(line.Params, i)
		}
	}

	return tokens, nil
}

func isBuiltinName(name string) bool {
	for _, b := range builtinNames {
		if name == b {
			return true
		}
	}
	return false
}
