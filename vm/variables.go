package vm

import (
	"encoding/binary"

	"github.com/jpoag/asmr/parser"
)

// handleVariable implements the two memory directives: db builds a byte
// buffer by concatenating its operands (each String contributes its UTF-8
// bytes, each Numeric its native 4-byte little-endian representation), while
// resb reserves an empty buffer with the given capacity. Both bind identifier
// to the resulting heap index.
func handleVariable(ctx *Context, identifier string, memType parser.MemType, params []parser.Token) error {
	switch memType {
	case parser.Db:
		return handleDb(ctx, identifier, params)
	case parser.Resb:
		return handleResb(ctx, identifier, params)
	default:
		return runtimeErrorf(ctx.Ptr, "unrecognized memory directive for `%s`", identifier)
	}
}

func handleDb(ctx *Context, identifier string, params []parser.Token) error {
	var buf []byte
	for _, p := range params {
		switch p.Kind {
		case parser.TokenString:
			buf = append(buf, []byte(p.Text)...)
		case parser.TokenNumeric:
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], uint32(p.Numeric))
			buf = append(buf, tmp[:]...)
		default:
			return runtimeErrorf(ctx.Ptr, "`db` operands must be of type <String | Numeric>")
		}
	}

	idx := ctx.Heap.Push(buf)
	ctx.Symtab.Bind(identifier, idx)
	return nil
}

func handleResb(ctx *Context, identifier string, params []parser.Token) error {
	if len(params) != 1 || params[0].Kind != parser.TokenNumeric || params[0].Numeric <= 0 {
		return runtimeErrorf(ctx.Ptr, "`resb` takes one parameter of type <Numeric> greater than 0")
	}

	idx := ctx.Heap.Push(make([]byte, 0, params[0].Numeric))
	ctx.Symtab.Bind(identifier, idx)
	return nil
}
