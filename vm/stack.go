package vm

import "github.com/jpoag/asmr/parser"

// execPush implements `push r1, r2, ...`: appends a copy of each register's
// tagged value to the stack, advancing esp by one per operand.
func execPush(ctx *Context, params []parser.Token) error {
	if len(params) < 1 {
		return runtimeErrorf(ctx.Ptr, "`push` takes parameters of type <...Register>")
	}

	for _, p := range params {
		if p.Kind != parser.TokenRegister {
			return runtimeErrorf(ctx.Ptr, "`push` takes parameters of type <...Register>")
		}
		ctx.Stack = append(ctx.Stack, ctx.Registers.Get(p.Register))
		ctx.setEsp(ctx.esp() + 1)
	}

	return nil
}

// execPop implements `pop r`: removes the topmost stack slot and copies it
// into the named register.
func execPop(ctx *Context, params []parser.Token) error {
	if len(params) != 1 || params[0].Kind != parser.TokenRegister {
		return runtimeErrorf(ctx.Ptr, "`pop` takes one parameter of type <Register>")
	}

	last := popRaw(ctx)
	ctx.Registers.Set(params[0].Register, last)
	return nil
}

// popRaw removes and returns the stack slot addressed by esp, decrementing
// esp. Shared by execPop and the call/ret and built-in frame machinery.
func popRaw(ctx *Context) Cell {
	idx := ctx.esp()
	last := ctx.Stack[idx]
	ctx.Stack = append(ctx.Stack[:idx], ctx.Stack[idx+1:]...)
	ctx.setEsp(idx - 1)
	return last
}
