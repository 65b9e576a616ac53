package vm

import "github.com/jpoag/asmr/parser"

// execCall implements `call name`: push eip, push ebp, mov ebp, esp; if name
// starts with "asmr::" invoke the built-in then execute ret, otherwise jump
// to the label. It is expressed as a composition of other instructions
// routed back through dispatch, so the stack-frame bookkeeping lives in one
// place; dispatch must stay reentrant for this.
func execCall(ctx *Context, params []parser.Token) error {
	if len(params) != 1 || params[0].Kind != parser.TokenIdentifier {
		return runtimeErrorf(ctx.Ptr, "`call` takes one parameter of type <Identifier>")
	}

	if err := dispatch(ctx, parser.OpPush, []parser.Token{{Kind: parser.TokenRegister, Register: parser.Eip}}); err != nil {
		return err
	}
	if err := dispatch(ctx, parser.OpPush, []parser.Token{{Kind: parser.TokenRegister, Register: parser.Ebp}}); err != nil {
		return err
	}
	if err := dispatch(ctx, parser.OpMov, []parser.Token{
		{Kind: parser.TokenRegister, Register: parser.Ebp},
		{Kind: parser.TokenRegister, Register: parser.Esp},
	}); err != nil {
		return err
	}

	name := params[0].Text
	if isBuiltin(name) {
		if err := callBuiltin(ctx, name); err != nil {
			return err
		}
		return dispatch(ctx, parser.OpRet, nil)
	}

	return dispatch(ctx, parser.OpJmp, params)
}

// execRet implements `ret`: mov esp, ebp; pop ebp; pop eip; next := eip+1.
func execRet(ctx *Context, params []parser.Token) error {
	if len(params) != 0 {
		return runtimeErrorf(ctx.Ptr, "`ret` takes no parameters")
	}

	if err := dispatch(ctx, parser.OpMov, []parser.Token{
		{Kind: parser.TokenRegister, Register: parser.Esp},
		{Kind: parser.TokenRegister, Register: parser.Ebp},
	}); err != nil {
		return err
	}
	if err := dispatch(ctx, parser.OpPop, []parser.Token{{Kind: parser.TokenRegister, Register: parser.Ebp}}); err != nil {
		return err
	}
	if err := dispatch(ctx, parser.OpPop, []parser.Token{{Kind: parser.TokenRegister, Register: parser.Eip}}); err != nil {
		return err
	}

	ctx.Next = int(ctx.Registers.Get(parser.Eip).Raw) + 1
	return nil
}
