package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jpoag/asmr/parser"
)

// ReferenceType indicates how a symbol was used at a given line.
type ReferenceType int

const (
	RefDefinition ReferenceType = iota // label or variable defined here
	RefJump                            // jmp/jz/jnz/... branch target
	RefCall                            // call target
	RefData                            // operand of any other instruction
)

func (r ReferenceType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefJump:
		return "jump"
	case RefCall:
		return "call"
	case RefData:
		return "data"
	default:
		return "unknown"
	}
}

// Reference records one line where a symbol was defined or used.
type Reference struct {
	Type ReferenceType
	Line int
}

// Symbol collects every definition and use of one label or variable name.
type Symbol struct {
	Name       string
	Definition *Reference
	References []*Reference
	IsLabel    bool
	IsVariable bool
	IsFunction bool // called via `call` at least once
}

// XRefGenerator builds cross-reference information for an asmr program.
type XRefGenerator struct {
	program []parser.Line
	symbols map[string]*Symbol
}

// NewXRefGenerator creates an empty cross-reference generator.
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[string]*Symbol)}
}

// Generate parses source and builds the symbol table with every definition
// and reference resolved.
func (x *XRefGenerator) Generate(source string) (map[string]*Symbol, error) {
	lines := strings.Split(source, "\n")
	program, err := parser.ParseLines(lines)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	x.program = program
	x.collectDefinitions()
	x.collectReferences()
	return x.symbols, nil
}

func (x *XRefGenerator) symbol(name string) *Symbol {
	sym, exists := x.symbols[name]
	if !exists {
		sym = &Symbol{Name: name, References: make([]*Reference, 0)}
		x.symbols[name] = sym
	}
	return sym
}

func (x *XRefGenerator) collectDefinitions() {
	for i, line := range x.program {
		switch line.Kind {
		case parser.LineLabel:
			sym := x.symbol(line.Label)
			sym.IsLabel = true
			sym.Definition = &Reference{Type: RefDefinition, Line: i + 1}
		case parser.LineVariable:
			sym := x.symbol(line.Identifier)
			sym.IsVariable = true
			sym.Definition = &Reference{Type: RefDefinition, Line: i + 1}
		}
	}
}

func (x *XRefGenerator) collectReferences() {
	for i, line := range x.program {
		if line.Kind != parser.LineInstruction {
			continue
		}

		for paramIdx, p := range line.Params {
			if p.Kind != parser.TokenIdentifier {
				continue
			}

			refType := RefData
			if paramIdx == 0 && jumpOpcodes[line.Opcode] {
				refType = RefJump
				if line.Opcode == parser.OpCall {
					refType = RefCall
				}
			}

			sym := x.symbol(p.Text)
			sym.References = append(sym.References, &Reference{Type: refType, Line: i + 1})
			if refType == RefCall {
				sym.IsFunction = true
			}
		}
	}
}

// GetSymbols returns every symbol found in the source.
func (x *XRefGenerator) GetSymbols() map[string]*Symbol {
	return x.symbols
}

// GetSymbol returns a specific symbol by name.
func (x *XRefGenerator) GetSymbol(name string) (*Symbol, bool) {
	sym, exists := x.symbols[name]
	return sym, exists
}

// GetFunctions returns every symbol reached by at least one `call`.
func (x *XRefGenerator) GetFunctions() []*Symbol {
	var functions []*Symbol
	for _, sym := range x.symbols {
		if sym.IsFunction {
			functions = append(functions, sym)
		}
	}
	sort.Slice(functions, func(i, j int) bool { return functions[i].Name < functions[j].Name })
	return functions
}

// GetUndefinedSymbols returns every symbol referenced but never defined.
func (x *XRefGenerator) GetUndefinedSymbols() []*Symbol {
	var undefined []*Symbol
	for _, sym := range x.symbols {
		if sym.Definition == nil && len(sym.References) > 0 {
			undefined = append(undefined, sym)
		}
	}
	sort.Slice(undefined, func(i, j int) bool { return undefined[i].Name < undefined[j].Name })
	return undefined
}

// GetUnusedSymbols returns every symbol defined but never referenced.
func (x *XRefGenerator) GetUnusedSymbols() []*Symbol {
	var unused []*Symbol
	for _, sym := range x.symbols {
		if sym.Definition != nil && len(sym.References) == 0 {
			unused = append(unused, sym)
		}
	}
	sort.Slice(unused, func(i, j int) bool { return unused[i].Name < unused[j].Name })
	return unused
}

// XRefReport renders a generator's symbol table as a text report.
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport sorts symbols by name for deterministic report output.
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	sorted := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		sorted = append(sorted, sym)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &XRefReport{symbols: sorted}
}

func (r *XRefReport) String() string {
	var sb strings.Builder

	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(fmt.Sprintf("%-30s", sym.Name))
		switch {
		case sym.IsFunction:
			sb.WriteString(" [function]")
		case sym.IsVariable:
			sb.WriteString(" [variable]")
		case sym.IsLabel:
			sb.WriteString(" [label]")
		default:
			sb.WriteString(" [undefined]")
		}
		sb.WriteString("\n")

		if sym.Definition != nil {
			sb.WriteString(fmt.Sprintf("  Defined:     line %d\n", sym.Definition.Line))
		} else {
			sb.WriteString("  Defined:     (undefined)\n")
		}

		if len(sym.References) == 0 {
			sb.WriteString("  Referenced:  (never)\n")
		} else {
			sb.WriteString(fmt.Sprintf("  Referenced:  %d time(s)\n", len(sym.References)))

			refsByType := make(map[ReferenceType][]*Reference)
			for _, ref := range sym.References {
				refsByType[ref.Type] = append(refsByType[ref.Type], ref)
			}
			for _, refType := range []ReferenceType{RefCall, RefJump, RefData} {
				refs := refsByType[refType]
				if len(refs) == 0 {
					continue
				}
				lines := make([]string, len(refs))
				for i, ref := range refs {
					lines[i] = fmt.Sprintf("%d", ref.Line)
				}
				sb.WriteString(fmt.Sprintf("    %-10s: line(s) %s\n", refType.String(), strings.Join(lines, ", ")))
			}
		}

		sb.WriteString("\n")
	}

	total, defined, undefined, unused, functions := len(r.symbols), 0, 0, 0, 0
	for _, sym := range r.symbols {
		if sym.Definition != nil {
			defined++
		} else {
			undefined++
		}
		if len(sym.References) == 0 {
			unused++
		}
		if sym.IsFunction {
			functions++
		}
	}

	sb.WriteString("Summary\n")
	sb.WriteString("=======\n")
	sb.WriteString(fmt.Sprintf("Total symbols:     %d\n", total))
	sb.WriteString(fmt.Sprintf("Defined:           %d\n", defined))
	sb.WriteString(fmt.Sprintf("Undefined:         %d\n", undefined))
	sb.WriteString(fmt.Sprintf("Unused:            %d\n", unused))
	sb.WriteString(fmt.Sprintf("Functions:         %d\n", functions))

	return sb.String()
}

// GenerateXRef is a convenience function producing a formatted cross-reference
// report directly from source text.
func GenerateXRef(source string) (string, error) {
	gen := NewXRefGenerator()
	symbols, err := gen.Generate(source)
	if err != nil {
		return "", err
	}
	return NewXRefReport(symbols).String(), nil
}
