package vm

// Heap is an ordered collection of independent byte buffers, each addressed
// by its index. There is no linear address space: buffers never alias one
// another and are never relocated, so no memory-protection model is needed.
type Heap struct {
	buffers [][]byte
}

// Push appends buf and returns its heap index.
func (h *Heap) Push(buf []byte) int32 {
	h.buffers = append(h.buffers, buf)
	return int32(len(h.buffers) - 1)
}

// Get returns the buffer at index p. Callers are expected to only pass
// indices obtained from the symbol table; asmr has no notion of an invalid
// heap index reachable through normal execution.
func (h *Heap) Get(p int32) []byte {
	return h.buffers[p]
}

// Len returns the number of allocated buffers. Diagnostic layers
// (the debugger's expression evaluator, the heap inspection endpoint)
// use it to validate indices that did not come from the symbol table.
func (h *Heap) Len() int {
	return len(h.buffers)
}

// Set replaces the buffer at index p.
func (h *Heap) Set(p int32, buf []byte) {
	h.buffers[p] = buf
}

// SymbolTable maps a variable identifier to the heap index that backs it.
type SymbolTable struct {
	entries map[string]int32
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string]int32)}
}

// Bind records identifier -> heapIndex.
func (s *SymbolTable) Bind(identifier string, heapIndex int32) {
	s.entries[identifier] = heapIndex
}

// Lookup returns the heap index bound to identifier, if any.
func (s *SymbolTable) Lookup(identifier string) (int32, bool) {
	idx, ok := s.entries[identifier]
	return idx, ok
}

// All returns a copy of the identifier -> heap index bindings, for
// diagnostics and editor tooling.
func (s *SymbolTable) All() map[string]int32 {
	out := make(map[string]int32, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// LabelTable maps a label name to its program line index.
type LabelTable struct {
	entries map[string]int
}

// NewLabelTable returns an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{entries: make(map[string]int)}
}

// Bind records name -> lineIndex.
func (l *LabelTable) Bind(name string, lineIndex int) {
	l.entries[name] = lineIndex
}

// Lookup returns the line index bound to name, if any.
func (l *LabelTable) Lookup(name string) (int, bool) {
	idx, ok := l.entries[name]
	return idx, ok
}

// All returns a copy of the label -> line index bindings.
func (l *LabelTable) All() map[string]int {
	out := make(map[string]int, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out
}
