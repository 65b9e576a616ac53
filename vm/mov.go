package vm

import "github.com/jpoag/asmr/parser"

// execMov implements `mov dest, src`. A Numeric source sets dest to
// Value(i); an Identifier source sets dest to Pointer(symtab[name]), with
// an unbound identifier reported as a RuntimeError like any other runtime
// failure; a Register source copies the tagged value across unchanged.
func execMov(ctx *Context, params []parser.Token) error {
	const shape = "`mov` takes parameters of type <Register, [Register | Identifier | Numeric]>"
	if len(params) != 2 || params[0].Kind != parser.TokenRegister {
		return runtimeErrorf(ctx.Ptr, shape)
	}

	dest := params[0].Register
	switch src := params[1]; src.Kind {
	case parser.TokenNumeric:
		ctx.Registers.Set(dest, NewValue(src.Numeric))
	case parser.TokenIdentifier:
		idx, ok := ctx.Symtab.Lookup(src.Text)
		if !ok {
			return runtimeErrorf(ctx.Ptr, "unknown identifier `%s`", src.Text)
		}
		ctx.Registers.Set(dest, NewPointer(idx))
	case parser.TokenRegister:
		ctx.Registers.Set(dest, ctx.Registers.Get(src.Register))
	default:
		return runtimeErrorf(ctx.Ptr, shape)
	}

	return nil
}

// execXchg implements `xchg r1, r2`: swaps the two registers' tagged
// values. Both operands are read into local temporaries before either
// write, so the two handles never alias mid-swap.
func execXchg(ctx *Context, params []parser.Token) error {
	if len(params) != 2 || params[0].Kind != parser.TokenRegister || params[1].Kind != parser.TokenRegister {
		return runtimeErrorf(ctx.Ptr, "`xchg` takes parameters of type <Register, Register>")
	}

	lhs, rhs := params[0].Register, params[1].Register
	lhsVal, rhsVal := ctx.Registers.Get(lhs), ctx.Registers.Get(rhs)
	ctx.Registers.Set(lhs, rhsVal)
	ctx.Registers.Set(rhs, lhsVal)
	return nil
}
