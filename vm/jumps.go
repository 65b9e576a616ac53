package vm

import "github.com/jpoag/asmr/parser"

// jumpCondition reports whether op's condition currently holds.
func jumpCondition(ctx *Context, op parser.Opcode) bool {
	switch op {
	case parser.OpJmp:
		return true
	case parser.OpJe, parser.OpJz:
		return ctx.Flags.Get(ZF)
	case parser.OpJne, parser.OpJnz:
		return !ctx.Flags.Get(ZF)
	case parser.OpJg:
		return !ctx.Flags.Get(ZF) && ctx.Flags.Get(SF) == ctx.Flags.Get(OF)
	case parser.OpJge:
		return ctx.Flags.Get(SF) == ctx.Flags.Get(OF)
	case parser.OpJl:
		return ctx.Flags.Get(SF) != ctx.Flags.Get(OF)
	case parser.OpJle:
		return ctx.Flags.Get(ZF) || ctx.Flags.Get(SF) != ctx.Flags.Get(OF)
	default:
		return false
	}
}

// execJump implements jmp and the conditional jcc family: <Identifier>. If
// the condition holds, next is set to the label's line index; if the
// condition holds but the label is missing, that is a RuntimeError.
func execJump(ctx *Context, op parser.Opcode, params []parser.Token) error {
	if len(params) != 1 || params[0].Kind != parser.TokenIdentifier {
		return runtimeErrorf(ctx.Ptr, "`%s` takes one parameter of type <Identifier>", op)
	}

	if !jumpCondition(ctx, op) {
		return nil
	}

	name := params[0].Text
	addr, ok := ctx.Labels.Lookup(name)
	if !ok {
		return runtimeErrorf(ctx.Ptr, "no address associated with identifier `%s`", name)
	}

	ctx.Next = addr
	return nil
}
