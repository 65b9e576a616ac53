// Package parser implements the asmr line parser: a quote-aware
// tokenizer/line-classifier that turns source text into an ordered
// sequence of [Line] values, rejecting malformed input with positional
// diagnostics.
package parser

import "strings"

// ParseLines parses an ordered sequence of source lines (no trailing
// newlines) into their corresponding [Line] representation. Line numbers
// reported in errors are 1-based over input order. The first offending
// line short-circuits parsing; no further lines are inspected.
func ParseLines(lines []string) ([]Line, error) {
	parsed := make([]Line, 0, len(lines))
	labels := make(map[string]bool, len(lines))

	for i, raw := range lines {
		lineNumber := i + 1

		line, err := parseLine(raw, lineNumber)
		if err != nil {
			return nil, err
		}

		if line.Kind == LineLabel {
			if labels[line.Label] {
				return nil, newError(lineNumber, "Duplicate label `"+line.Label+"`.")
			}
			labels[line.Label] = true
		}

		parsed = append(parsed, line)
	}

	return parsed, nil
}

// parseLine classifies a single trimmed, comment-stripped input line as one
// of Blank, Label, Instruction, or Variable.
func parseLine(raw string, lineNumber int) (Line, error) {
	trimmed := strings.TrimSpace(raw)

	first, hasFirst := firstWord(trimmed)
	if !hasFirst {
		return Line{Kind: LineBlank}, nil
	}

	// Strip inline comments: split on ';' using quote-aware splitting and
	// keep the first segment.
	line := trimmed
	if segments := splitQuoteAware(trimmed, ';'); len(segments) > 1 {
		line = strings.TrimSpace(segments[0])
	}

	if strings.HasPrefix(first, ";") {
		return Line{Kind: LineBlank}, nil
	}

	if opcode, ok := LookupOpcode(first); ok {
		remainder := strings.TrimSpace(line[len(first):])
		params, err := parseParams(remainder, lineNumber)
		if err != nil {
			return Line{}, err
		}
		return Line{Kind: LineInstruction, Opcode: opcode, Params: params}, nil
	}

	if strings.HasSuffix(line, ":") {
		label := strings.TrimSpace(line[:len(line)-1])
		if !IsValidIdentifier(label) {
			return Line{}, newError(lineNumber, "Invalid label `"+label+"`. Identifiers must be strictly [a-z, A-Z, 0-9, _, ., :] and must start with [a-z, A-Z, _, .].")
		}
		return Line{Kind: LineLabel, Label: label}, nil
	}

	if memType, ok, identifier, args := splitMemoryDirective(line); ok {
		identifier = strings.TrimSpace(identifier)
		args = strings.TrimSpace(args)

		if identifier == "" || args == "" {
			return Line{}, newError(lineNumber, "Invalid memory definition syntax.")
		}
		if !IsValidIdentifier(identifier) {
			return Line{}, newError(lineNumber, "Invalid identifier `"+identifier+"`. Identifiers must be strictly [a-z, A-Z, 0-9, _, ., :] and must start with [a-z, A-Z, _, .].")
		}

		params, err := parseParams(args, lineNumber)
		if err != nil {
			return Line{}, err
		}

		return Line{Kind: LineVariable, Identifier: identifier, MemType: memType, Params: params}, nil
	}

	return Line{}, newError(lineNumber, "Could not parse the line. There is likely an uncaught syntax error.")
}

// splitMemoryDirective recognizes `identifier db args` / `identifier resb
// args`. It looks for "db" or "resb" as its own whitespace-separated word,
// not a raw substring, so identifiers merely containing those letters
// (e.g. "adbc") are never misclassified as memory directives.
func splitMemoryDirective(line string) (memType MemType, ok bool, identifier, args string) {
	if idx, found := findKeywordField(line, "db"); found {
		return Db, true, line[:idx], line[idx+len("db"):]
	}
	if idx, found := findKeywordField(line, "resb"); found {
		return Resb, true, line[:idx], line[idx+len("resb"):]
	}
	return 0, false, "", ""
}

// findKeywordField reports the byte offset of keyword when it appears as
// its own whitespace-delimited field somewhere after the first field of
// line (the identifier), so the keyword is never matched against the
// identifier itself or against text that merely contains it as a substring.
func findKeywordField(line, keyword string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, false
	}

	offset := 0
	for i, f := range fields {
		idx := strings.Index(line[offset:], f)
		fieldStart := offset + idx
		if i > 0 && f == keyword {
			return fieldStart, true
		}
		offset = fieldStart + len(f)
	}
	return 0, false
}

// parseParams comma-splits (quote-aware) a parameter list and classifies
// each lexeme into a Token.
func parseParams(s string, lineNumber int) ([]Token, error) {
	if s == "" {
		return nil, nil
	}

	lexemes := splitQuoteAware(s, ',')
	params := make([]Token, 0, len(lexemes))
	for _, lexeme := range lexemes {
		tok, err := ClassifyToken(strings.TrimSpace(lexeme))
		if err != nil {
			return nil, newError(lineNumber, err.Error())
		}
		params = append(params, tok)
	}
	return params, nil
}

// firstWord returns the first whitespace-delimited word of s, if any.
func firstWord(s string) (string, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}
