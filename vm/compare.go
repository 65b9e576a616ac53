package vm

import "github.com/jpoag/asmr/parser"

// execCmp implements `cmp lhs, rhs`: computes lhs-rhs logically and
// sets/clears ZF and CF. SF and OF are left untouched, so the
// signed-comparison jumps (jg/jl/jge/jle) behave as if SF == OF after a
// lone cmp; only `test` updates SF.
func execCmp(ctx *Context, params []parser.Token) error {
	if len(params) != 2 || params[0].Kind != parser.TokenRegister {
		return runtimeErrorf(ctx.Ptr, "`cmp` takes parameters of type <Register, [Register | Numeric]>")
	}

	rhs, ok := operandRaw(ctx, params[1])
	if !ok {
		return runtimeErrorf(ctx.Ptr, "`cmp` takes parameters of type <Register, [Register | Numeric]>")
	}
	lhs := ctx.Registers.Get(params[0].Register).Raw

	switch {
	case lhs == rhs:
		ctx.Flags.Set(ZF)
		ctx.Flags.Unset(CF)
	case lhs > rhs:
		ctx.Flags.Unset(ZF)
		ctx.Flags.Unset(CF)
	default:
		ctx.Flags.Unset(ZF)
		ctx.Flags.Set(CF)
	}

	return nil
}

// execTest implements `test lhs, rhs`: and := lhs & rhs; CF := 0; ZF :=
// (and == 0); SF := bit31(and); OF unchanged.
func execTest(ctx *Context, params []parser.Token) error {
	if len(params) != 2 || params[0].Kind != parser.TokenRegister {
		return runtimeErrorf(ctx.Ptr, "`test` takes parameters of type <Register, [Register | Numeric]>")
	}

	rhs, ok := operandRaw(ctx, params[1])
	if !ok {
		return runtimeErrorf(ctx.Ptr, "`test` takes parameters of type <Register, [Register | Numeric]>")
	}
	lhs := ctx.Registers.Get(params[0].Register).Raw

	and := lhs & rhs
	ctx.Flags.Unset(CF)
	if and == 0 {
		ctx.Flags.Set(ZF)
	} else {
		ctx.Flags.Unset(ZF)
	}
	if and&(int32(-1)<<31) != 0 {
		ctx.Flags.Set(SF)
	} else {
		ctx.Flags.Unset(SF)
	}

	return nil
}
