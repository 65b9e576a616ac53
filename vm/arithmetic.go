package vm

import "github.com/jpoag/asmr/parser"

// operandRaw resolves a Register|Numeric token to its raw 32-bit value,
// reporting whether the token was one of those two shapes.
func operandRaw(ctx *Context, t parser.Token) (int32, bool) {
	switch t.Kind {
	case parser.TokenNumeric:
		return t.Numeric, true
	case parser.TokenRegister:
		return ctx.Registers.Get(t.Register).Raw, true
	default:
		return 0, false
	}
}

// execBinaryArith implements add/sub/mul/div/and/or/xor: <Register,
// [Register | Numeric]>, operating on the dest's raw integer with the dest's
// tag preserved.
func execBinaryArith(ctx *Context, op parser.Opcode, params []parser.Token) error {
	shape := "`" + string(op) + "` takes parameters of type <Register, [Register | Numeric]>"
	if len(params) != 2 || params[0].Kind != parser.TokenRegister {
		return runtimeErrorf(ctx.Ptr, shape)
	}

	rhs, ok := operandRaw(ctx, params[1])
	if !ok {
		return runtimeErrorf(ctx.Ptr, shape)
	}

	dest := params[0].Register
	cell := ctx.Registers.Get(dest)

	switch op {
	case parser.OpAdd:
		cell = cell.add(rhs)
	case parser.OpSub:
		cell = cell.sub(rhs)
	case parser.OpMul:
		cell = cell.mul(rhs)
	case parser.OpDiv:
		if rhs == 0 {
			return runtimeErrorf(ctx.Ptr, "division by zero")
		}
		cell = cell.div(rhs)
	case parser.OpAnd:
		cell = cell.and(rhs)
	case parser.OpOr:
		cell = cell.or(rhs)
	case parser.OpXor:
		cell = cell.xor(rhs)
	}

	ctx.Registers.Set(dest, cell)
	return nil
}

// execIncDec implements inc/dec: <Register>.
func execIncDec(ctx *Context, op parser.Opcode, params []parser.Token) error {
	if len(params) != 1 || params[0].Kind != parser.TokenRegister {
		return runtimeErrorf(ctx.Ptr, "`%s` takes one parameter of type <Register>", op)
	}

	dest := params[0].Register
	cell := ctx.Registers.Get(dest)
	if op == parser.OpInc {
		cell = cell.add(1)
	} else {
		cell = cell.sub(1)
	}
	ctx.Registers.Set(dest, cell)
	return nil
}

// execShift implements shl/shr: <Register, Numeric>, rejecting negative
// shift counts.
func execShift(ctx *Context, op parser.Opcode, params []parser.Token) error {
	if len(params) != 2 || params[0].Kind != parser.TokenRegister || params[1].Kind != parser.TokenNumeric {
		return runtimeErrorf(ctx.Ptr, "`%s` takes parameters of type <Register, Numeric>", op)
	}

	n := params[1].Numeric
	if n < 0 {
		return runtimeErrorf(ctx.Ptr, "`%s` requires the parameter <Numeric> to be greater than or equal to 0", op)
	}

	dest := params[0].Register
	cell := ctx.Registers.Get(dest)
	if op == parser.OpShl {
		cell = cell.shl(n)
	} else {
		cell = cell.shr(n)
	}
	ctx.Registers.Set(dest, cell)
	return nil
}

// execNot implements `not r`: bitwise complement of the raw value, tag
// preserved.
func execNot(ctx *Context, params []parser.Token) error {
	if len(params) != 1 || params[0].Kind != parser.TokenRegister {
		return runtimeErrorf(ctx.Ptr, "`not` takes one parameter of type <Register>")
	}

	dest := params[0].Register
	ctx.Registers.Set(dest, ctx.Registers.Get(dest).not())
	return nil
}
