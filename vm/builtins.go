package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// isBuiltin reports whether an identifier names one of the asmr:: built-in
// routines rather than a user label.
func isBuiltin(name string) bool {
	return strings.HasPrefix(name, "asmr::")
}

// callBuiltin dispatches a call to a recognized asmr:: routine. Every
// built-in follows the same stack-relative parameter convention: the frame
// has already been opened by execCall (eip and ebp pushed, ebp==esp), so
// parameter n (1-indexed, counting back from the last one pushed) sits at ebp-1-n, and the built-in is
// responsible for clearing its own parameters before returning.
func callBuiltin(ctx *Context, name string) error {
	switch name {
	case "asmr::io::print":
		return builtinPrint(ctx)
	case "asmr::io::readln":
		return builtinReadln(ctx)
	default:
		return runtimeErrorf(ctx.Ptr, "unknown built-in `%s`", name)
	}
}

// getParam returns the n-th (1-indexed) parameter below the current frame.
func getParam(ctx *Context, n int) Cell {
	idx := int(ctx.ebp()) - 1 - n
	return ctx.Stack[idx]
}

// clearParams drains the count parameter slots immediately below the saved
// eip, then shifts ebp and esp down by count so the frame ret expects (mov
// esp,ebp; pop ebp; pop eip) still lines up.
func clearParams(ctx *Context, count int) {
	if count == 0 {
		return
	}

	ebpIdx := int(ctx.ebp())
	start := ebpIdx - 1 - count
	end := ebpIdx - 1
	ctx.Stack = append(ctx.Stack[:start], ctx.Stack[end:]...)
	ctx.setEbp(ctx.ebp() - int32(count))
	ctx.setEsp(ctx.esp() - int32(count))
}

// builtinPrint implements asmr::io::print(x): a Value prints as a decimal
// integer, a Pointer prints the heap buffer it addresses as characters.
// Trailing NUL bytes (the padding a small `db` numeric leaves behind its
// 4-byte encoding) are not printed. Output is flushed immediately so
// interleaved print/readln calls observe a consistent terminal.
func builtinPrint(ctx *Context) error {
	cell := getParam(ctx, 1)

	switch cell.Tag {
	case Value:
		fmt.Fprint(ctx.Stdout, strconv.FormatInt(int64(cell.Raw), 10))
	case Pointer:
		buf := ctx.Heap.Get(cell.Raw)
		fmt.Fprint(ctx.Stdout, strings.TrimRight(string(buf), "\x00"))
	}

	if f, ok := ctx.Stdout.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}

	clearParams(ctx, 1)
	return nil
}

// builtinReadln implements asmr::io::readln(buf): reads a line from stdin,
// strips the trailing newline, and stores it into the heap buffer buf
// addresses. The parameter must be a Pointer.
func builtinReadln(ctx *Context) error {
	cell := getParam(ctx, 1)
	if cell.Tag != Pointer {
		return runtimeErrorf(ctx.Ptr, "`asmr::io::readln` requires a Pointer parameter")
	}

	line, err := ctx.Stdin.ReadString('\n')
	if err != nil && line == "" {
		return runtimeErrorf(ctx.Ptr, "could not read a line from stdin: %s", err)
	}
	line = strings.TrimRight(line, "\r\n")

	ctx.Heap.Set(cell.Raw, []byte(line))
	clearParams(ctx, 1)
	return nil
}
