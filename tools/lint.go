package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jpoag/asmr/parser"
)

// LintLevel represents the severity of a lint finding.
type LintLevel int

const (
	LintError   LintLevel = iota // undefined label, parse failure
	LintWarning                  // unreachable code, unused variable
	LintInfo                     // style suggestions
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is a single lint finding, anchored to a 1-based source line
// (asmr has no notion of column: Line is the unit of syntax).
type LintIssue struct {
	Level   LintLevel
	Line    int
	Message string
	Code    string // e.g. "UNDEF_LABEL", "UNREACHABLE_CODE", "UNUSED_VARIABLE"
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("line %d: %s: %s [%s]", i.Line, i.Level, i.Message, i.Code)
}

// LintOptions controls which analysis passes the linter runs.
type LintOptions struct {
	CheckUnused  bool // flag db/resb variables that are never referenced
	CheckReach   bool // flag code after an unconditional jmp/ret
	SuggestFixes bool // suggest a similarly-spelled label on UNDEF_LABEL
}

// DefaultLintOptions returns the linter's default options: every pass on.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{CheckUnused: true, CheckReach: true, SuggestFixes: true}
}

// Linter analyzes asmr source for undefined label references, unreachable
// code, and unused variables.
type Linter struct {
	options *LintOptions
	issues  []*LintIssue
	program []parser.Line

	definedLabels   map[string]int // label -> 1-based line
	definedVars     map[string]int // identifier -> 1-based line
	referencedNames map[string]bool
}

// NewLinter creates a linter with the given options, or DefaultLintOptions
// if options is nil.
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{
		options:         options,
		definedLabels:   make(map[string]int),
		definedVars:     make(map[string]int),
		referencedNames: make(map[string]bool),
	}
}

// Lint parses source and runs every enabled analysis pass, returning
// findings sorted by line number. A parse failure short-circuits analysis:
// only the parse error is reported, since Line classification never
// completed.
func (l *Linter) Lint(source string) []*LintIssue {
	lines := strings.Split(source, "\n")

	program, err := parser.ParseLines(lines)
	if err != nil {
		if perr, ok := err.(*parser.Error); ok {
			l.issues = append(l.issues, &LintIssue{Level: LintError, Line: perr.LineNumber, Message: perr.Cause, Code: "PARSE_ERROR"})
		} else {
			l.issues = append(l.issues, &LintIssue{Level: LintError, Line: 1, Message: err.Error(), Code: "PARSE_ERROR"})
		}
		return l.issues
	}

	l.program = program
	l.collectDefinitions()
	l.checkUndefinedLabels()

	if l.options.CheckUnused {
		l.checkUnusedVariables()
	}
	if l.options.CheckReach {
		l.checkUnreachableCode()
	}

	sort.Slice(l.issues, func(i, j int) bool { return l.issues[i].Line < l.issues[j].Line })
	return l.issues
}

// jumpOpcodes lists every instruction whose first parameter names a
// control-transfer target (a label).
var jumpOpcodes = map[parser.Opcode]bool{
	parser.OpJmp: true, parser.OpJz: true, parser.OpJnz: true,
	parser.OpJg: true, parser.OpJl: true, parser.OpJge: true, parser.OpJle: true,
	parser.OpJe: true, parser.OpJne: true, parser.OpCall: true,
}

func (l *Linter) collectDefinitions() {
	for i, line := range l.program {
		switch line.Kind {
		case parser.LineLabel:
			l.definedLabels[line.Label] = i + 1
		case parser.LineVariable:
			l.definedVars[line.Identifier] = i + 1
		}
	}
}

// checkUndefinedLabels flags jmp/call targets that name no label in the
// program.
func (l *Linter) checkUndefinedLabels() {
	for i, line := range l.program {
		if line.Kind != parser.LineInstruction || !jumpOpcodes[line.Opcode] {
			continue
		}
		if len(line.Params) == 0 || line.Params[0].Kind != parser.TokenIdentifier {
			continue
		}

		target := line.Params[0].Text
		l.referencedNames[target] = true

		if _, exists := l.definedLabels[target]; !exists {
			msg := fmt.Sprintf("undefined label `%s`", target)
			if l.options.SuggestFixes {
				if suggestion := l.findSimilarLabel(target); suggestion != "" {
					msg += fmt.Sprintf(" (did you mean `%s`?)", suggestion)
				}
			}
			l.issues = append(l.issues, &LintIssue{Level: LintError, Line: i + 1, Message: msg, Code: "UNDEF_LABEL"})
		}
	}

	// mov/cmp/etc. may also reference a variable identifier; record every
	// identifier operand so checkUnusedVariables sees reads beyond call
	// targets.
	for _, line := range l.program {
		if line.Kind != parser.LineInstruction {
			continue
		}
		for _, p := range line.Params {
			if p.Kind == parser.TokenIdentifier {
				l.referencedNames[p.Text] = true
			}
		}
	}
}

// checkUnusedVariables warns about a db/resb identifier that no instruction
// ever reads or writes.
func (l *Linter) checkUnusedVariables() {
	for name, line := range l.definedVars {
		if !l.referencedNames[name] {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintWarning,
				Line:    line,
				Message: fmt.Sprintf("variable `%s` defined but never referenced", name),
				Code:    "UNUSED_VARIABLE",
			})
		}
	}
}

// checkUnreachableCode flags the first real line following an unconditional
// `jmp` or `ret` that isn't itself a label (a label is always a valid jump
// target, so code guarded by one is reachable).
func (l *Linter) checkUnreachableCode() {
	for i, line := range l.program {
		if line.Kind != parser.LineInstruction {
			continue
		}
		if line.Opcode != parser.OpJmp && line.Opcode != parser.OpRet {
			continue
		}

		for j := i + 1; j < len(l.program); j++ {
			next := l.program[j]
			if next.Kind == parser.LineBlank {
				continue
			}
			if next.Kind != parser.LineLabel {
				l.issues = append(l.issues, &LintIssue{
					Level:   LintWarning,
					Line:    j + 1,
					Message: "unreachable code",
					Code:    "UNREACHABLE_CODE",
				})
			}
			break
		}
	}
}

// findSimilarLabel finds the defined label closest (by edit distance) to
// target, for an UNDEF_LABEL suggestion.
func (l *Linter) findSimilarLabel(target string) string {
	best, bestDist := "", 4
	for label := range l.definedLabels {
		if dist := levenshteinDistance(label, target); dist < bestDist {
			best, bestDist = label, dist
		}
	}
	return best
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = minInt(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev = cur
	}

	return prev[len(b)]
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
