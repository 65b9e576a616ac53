package parser

// Opcode identifies an instruction mnemonic. Mnemonics are snake_case and
// case-sensitive; the set below is closed.
type Opcode string

const (
	OpNop  Opcode = "nop"
	OpPush Opcode = "push"
	OpPop  Opcode = "pop"
	OpMov  Opcode = "mov"
	OpXchg Opcode = "xchg"
	OpAdd  Opcode = "add"
	OpSub  Opcode = "sub"
	OpMul  Opcode = "mul"
	OpDiv  Opcode = "div"
	OpInc  Opcode = "inc"
	OpDec  Opcode = "dec"
	OpShl  Opcode = "shl"
	OpShr  Opcode = "shr"
	OpCmp  Opcode = "cmp"
	OpAnd  Opcode = "and"
	OpOr   Opcode = "or"
	OpNot  Opcode = "not"
	OpXor  Opcode = "xor"
	OpTest Opcode = "test"
	OpJmp  Opcode = "jmp"
	OpJz   Opcode = "jz"
	OpJnz  Opcode = "jnz"
	OpJg   Opcode = "jg"
	OpJl   Opcode = "jl"
	OpJge  Opcode = "jge"
	OpJle  Opcode = "jle"
	OpJe   Opcode = "je"
	OpJne  Opcode = "jne"
	OpCall Opcode = "call"
	OpRet  Opcode = "ret"
)

// Opcodes lists the closed instruction set in catalog order, used by the
// line classifier to recognize a mnemonic and by editor tooling to offer
// completions.
var Opcodes = []Opcode{
	OpNop, OpPush, OpPop, OpMov, OpXchg,
	OpAdd, OpSub, OpMul, OpDiv, OpInc, OpDec, OpShl, OpShr,
	OpCmp, OpAnd, OpOr, OpNot, OpXor, OpTest,
	OpJmp, OpJz, OpJnz, OpJg, OpJl, OpJge, OpJle, OpJe, OpJne,
	OpCall, OpRet,
}

var opcodeSet = func() map[string]Opcode {
	m := make(map[string]Opcode, len(Opcodes))
	for _, op := range Opcodes {
		m[string(op)] = op
	}
	return m
}()

// LookupOpcode reports whether s names a recognized instruction mnemonic.
func LookupOpcode(s string) (Opcode, bool) {
	op, ok := opcodeSet[s]
	return op, ok
}

// MemType distinguishes an initialized byte buffer (Db) from a reserved,
// zero-length-but-capacity-N buffer (Resb).
type MemType int

const (
	Db MemType = iota
	Resb
)

// LineKind tags the variant held by a Line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineLabel
	LineInstruction
	LineVariable
)

// Line is a single classified, parsed source line. Exactly one of the
// kind-specific fields is meaningful, selected by Kind.
type Line struct {
	Kind LineKind

	// LineLabel
	Label string

	// LineInstruction
	Opcode Opcode
	Params []Token

	// LineVariable
	Identifier string
	MemType    MemType
	// Variable params reuse Params above.
}
