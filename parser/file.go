package parser

import (
	"bufio"
	"os"
)

// ParseFile reads filePath line by line and parses its contents with
// [ParseLines]. This is the recommended entry point for parsing a source
// file from disk; a trailing newline is optional.
func ParseFile(filePath string) ([]Line, error) {
	f, err := os.Open(filePath) // #nosec G304 -- user-provided asmr source path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ParseLines(lines)
}
