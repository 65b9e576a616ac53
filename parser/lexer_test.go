package parser

import (
	"strings"
	"testing"
)

func TestSplitQuoteAwareIgnoresDelimiterInsideQuotes(t *testing.T) {
	segments := splitQuoteAware(`mov eax, "a,b", ecx`, ',')
	want := []string{`mov eax`, ` "a,b"`, ` ecx`}

	if len(segments) != len(want) {
		t.Fatalf("got %d segments %v, want %d", len(segments), segments, len(want))
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, segments[i], want[i])
		}
	}
}

func TestSplitQuoteAwarePreservesCharacterCount(t *testing.T) {
	input := `a,"b,c",d`
	segments := splitQuoteAware(input, ',')

	var rebuilt strings.Builder
	for i, s := range segments {
		if i > 0 {
			rebuilt.WriteRune(',')
		}
		rebuilt.WriteString(s)
	}
	if rebuilt.String() != input {
		t.Fatalf("rebuilt %q, want %q", rebuilt.String(), input)
	}
}

func TestSplitQuoteAwareNoDelimiterYieldsOneSegment(t *testing.T) {
	segments := splitQuoteAware("mov eax, ebx", ';')
	if len(segments) != 1 || segments[0] != "mov eax, ebx" {
		t.Fatalf("got %v, want a single unchanged segment", segments)
	}
}

func TestSplitQuoteAwarePanicsOnQuoteDelimiter(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when delim is '\"'")
		}
	}()
	splitQuoteAware("whatever", '"')
}
