// Package vm implements the asmr execution engine: an instruction-dispatch
// loop over a parsed program, managing registers, condition flags, a typed
// stack, a heap of byte buffers, a symbol table, labels, and an x86-style
// call/return convention (pushed return address, saved base pointer,
// stack-relative parameter access).
package vm

import "github.com/jpoag/asmr/parser"

// CellTag distinguishes a register/stack cell holding a plain Value from one
// holding a Pointer (a heap index, an instruction index, or a stack index,
// depending on context). The tag is preserved through arithmetic and ignored
// by comparisons, flag updates, and bitwise operations.
type CellTag int

const (
	Value CellTag = iota
	Pointer
)

// Cell is a tagged 32-bit integer: the fundamental unit of register and
// stack storage.
type Cell struct {
	Tag CellTag
	Raw int32
}

// NewValue constructs a Value-tagged cell.
func NewValue(v int32) Cell { return Cell{Tag: Value, Raw: v} }

// NewPointer constructs a Pointer-tagged cell.
func NewPointer(v int32) Cell { return Cell{Tag: Pointer, Raw: v} }

// withRaw returns a copy of c with its raw integer replaced, preserving c's
// tag. Every arithmetic operator goes through this so a Pointer
// arithmetically updated remains a Pointer.
func (c Cell) withRaw(raw int32) Cell {
	return Cell{Tag: c.Tag, Raw: raw}
}

func (c Cell) add(rhs int32) Cell { return c.withRaw(c.Raw + rhs) }
func (c Cell) sub(rhs int32) Cell { return c.withRaw(c.Raw - rhs) }
func (c Cell) mul(rhs int32) Cell { return c.withRaw(c.Raw * rhs) }
func (c Cell) div(rhs int32) Cell { return c.withRaw(c.Raw / rhs) }
func (c Cell) and(rhs int32) Cell { return c.withRaw(c.Raw & rhs) }
func (c Cell) or(rhs int32) Cell  { return c.withRaw(c.Raw | rhs) }
func (c Cell) xor(rhs int32) Cell { return c.withRaw(c.Raw ^ rhs) }
func (c Cell) not() Cell          { return c.withRaw(^c.Raw) }
func (c Cell) shl(n int32) Cell   { return c.withRaw(c.Raw << uint32(n)) }
func (c Cell) shr(n int32) Cell   { return c.withRaw(c.Raw >> uint32(n)) }

// Flag names a single condition-code bit.
type Flag int

const (
	CF Flag = 1 << iota
	ZF
	SF
	OF
)

// Flags is the condition-code bitset (CF, ZF, SF, OF).
type Flags struct {
	bits int
}

func (f *Flags) Get(flag Flag) bool { return f.bits&int(flag) != 0 }
func (f *Flags) Set(flag Flag)      { f.bits |= int(flag) }
func (f *Flags) Unset(flag Flag)    { f.bits &^= int(flag) }

// Registers holds the mutable Cell for every register the lexer recognizes.
// Each name is its own independent cell: instructions such as mov can write
// any of them, the 16-bit names do not alias their 32-bit counterparts, and
// the `flags` cell is separate from the condition-code bits in Context.Flags.
type Registers struct {
	cells map[parser.RegisterName]Cell
}

// NewRegisters creates a fresh register file. eip and esp start as
// Pointer(0); ebp starts as Pointer(1), the index of the saved base pointer
// seeded by NewContext. Every other register starts as Value(0).
func NewRegisters() *Registers {
	r := &Registers{cells: make(map[parser.RegisterName]Cell)}
	for name := Eax; name <= Flags_; name++ {
		r.cells[name] = NewValue(0)
	}
	r.cells[parser.Eip] = NewPointer(0)
	r.cells[parser.Esp] = NewPointer(0)
	r.cells[parser.Ebp] = NewPointer(1)
	return r
}

// The full closed set of recognized register names, reused here so
// NewRegisters can range over them without importing parser's private
// lookup table.
const (
	Eax    = parser.Eax
	Ebx    = parser.Ebx
	Ecx    = parser.Ecx
	Edx    = parser.Edx
	Ax     = parser.Ax
	Bx     = parser.Bx
	Cx     = parser.Cx
	Dx     = parser.Dx
	Eip    = parser.Eip
	Esp    = parser.Esp
	Ebp    = parser.Ebp
	Ip     = parser.Ip
	Sp     = parser.Sp
	Bp     = parser.Bp
	Esi    = parser.Esi
	Edi    = parser.Edi
	Si     = parser.Si
	Di     = parser.Di
	Flags_ = parser.Flags
)

// Get returns the current cell for name.
func (r *Registers) Get(name parser.RegisterName) Cell {
	return r.cells[name]
}

// Set overwrites the cell for name.
func (r *Registers) Set(name parser.RegisterName, c Cell) {
	r.cells[name] = c
}
