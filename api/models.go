package api

import (
	"time"

	"github.com/jpoag/asmr/service"
	"github.com/jpoag/asmr/tools"
)

// SessionCreateResponse represents the response from creating a session.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session.
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	Line      int    `json:"line"`
	Error     string `json:"error,omitempty"`
}

// LoadProgramRequest represents a request to load a program.
type LoadProgramRequest struct {
	Source string `json:"source"`
}

// LoadProgramResponse represents the response from loading a program.
type LoadProgramResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Symbols map[string]int `json:"symbols,omitempty"`
}

// RegistersResponse represents the current register and flag state.
type RegistersResponse struct {
	Eax   int32           `json:"eax"`
	Ebx   int32           `json:"ebx"`
	Ecx   int32           `json:"ecx"`
	Edx   int32           `json:"edx"`
	Esi   int32           `json:"esi"`
	Edi   int32           `json:"edi"`
	Esp   int32           `json:"esp"`
	Ebp   int32           `json:"ebp"`
	Eip   int32           `json:"eip"`
	Tags  map[string]bool `json:"tags"`
	Flags FlagsResponse   `json:"flags"`
}

// FlagsResponse represents the condition-code flags.
type FlagsResponse struct {
	CF bool `json:"cf"`
	ZF bool `json:"zf"`
	SF bool `json:"sf"`
	OF bool `json:"of"`
}

// HeapRequest represents a request for heap buffer contents.
type HeapRequest struct {
	Index  int32 `json:"index"`
	Length int   `json:"length"`
}

// HeapResponse represents a heap buffer's contents.
type HeapResponse struct {
	Index int    `json:"index"`
	Data  []byte `json:"data"`
}

// ListingRequest represents a request for an annotated source listing.
type ListingRequest struct {
	Start int `json:"start"` // 1-indexed
	Count int `json:"count"`
}

// ListingResponse represents an annotated source listing.
type ListingResponse struct {
	Lines []service.SourceLine `json:"lines"`
}

// BreakpointRequest represents a request to add a breakpoint.
type BreakpointRequest struct {
	Line      string `json:"line"` // a 1-based line number or a label name
	Condition string `json:"condition,omitempty"`
}

// BreakpointsResponse represents a list of breakpoints.
type BreakpointsResponse struct {
	Breakpoints []service.BreakpointInfo `json:"breakpoints"`
}

// WatchpointRequest represents a request to add a watchpoint.
type WatchpointRequest struct {
	Expression string `json:"expression"`
	Type       string `json:"type"` // "read", "write", "readwrite"
}

// WatchpointsResponse represents a list of watchpoints.
type WatchpointsResponse struct {
	Watchpoints []service.WatchpointInfo `json:"watchpoints"`
}

// StackResponse represents the top slots of a session's stack.
type StackResponse struct {
	Entries []service.StackEntry `json:"entries"`
}

// SymbolsResponse maps each label name to its 1-indexed program line.
type SymbolsResponse struct {
	Symbols map[string]int `json:"symbols"`
}

// EvaluateRequest represents a request to evaluate a debugger expression.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse represents an evaluated expression's value.
type EvaluateResponse struct {
	Expression string `json:"expression"`
	Value      int32  `json:"value"`
	Hex        string `json:"hex"`
}

// ToolingRequest carries the source text for the editor-tooling endpoints.
type ToolingRequest struct {
	Source string `json:"source"`
}

// CompletionResponse represents the completion provider's token list.
type CompletionResponse struct {
	Items []tools.CompletionItem `json:"items"`
}

// DocumentSymbolsResponse represents the document-symbol provider's outline.
type DocumentSymbolsResponse struct {
	Symbols []tools.DocumentSymbol `json:"symbols"`
}

// SemanticTokensResponse represents the semantic-token provider's spans.
type SemanticTokensResponse struct {
	Tokens []tools.SemanticToken `json:"tokens"`
}

// StdinRequest represents a request to send a line of stdin to a session.
type StdinRequest struct {
	Line string `json:"line"`
}

// CommandRequest represents a raw debugger command, for clients that want
// the full `break`/`watch`/`print`/`info` command language over HTTP.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse represents a debugger command's captured output.
type CommandResponse struct {
	Output string `json:"output"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// StateEvent represents a state change event, broadcast after every step or
// run-loop pause. Registers carries the same tagged-cell/flag snapshot the
// registers endpoint returns, so WebSocket clients and polling clients see
// one shape.
type StateEvent struct {
	State     string            `json:"state"`
	Line      int               `json:"line"`
	Registers RegistersResponse `json:"registers"`
}

// OutputEvent represents console output.
type OutputEvent struct {
	Stream  string `json:"stream"`
	Content string `json:"content"`
}

// ExecutionEvent represents execution events like breakpoints or halts.
// ExitCode is meaningful only for "halted" events: the low 8 bits of eax.
type ExecutionEvent struct {
	Event    string `json:"event"` // "stopped", "error", "halted"
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message,omitempty"`
	ExitCode uint8  `json:"exitCode"`
}

// SubscriptionAck confirms a WebSocket subscription request back to the
// client, echoing the filters that took effect.
type SubscriptionAck struct {
	Events []string `json:"events"`
}

// ToRegistersResponse converts a service.RegisterState to its API response.
func ToRegistersResponse(regs service.RegisterState) RegistersResponse {
	return RegistersResponse{
		Eax:  regs.Eax,
		Ebx:  regs.Ebx,
		Ecx:  regs.Ecx,
		Edx:  regs.Edx,
		Esi:  regs.Esi,
		Edi:  regs.Edi,
		Esp:  regs.Esp,
		Ebp:  regs.Ebp,
		Eip:  regs.Eip,
		Tags: regs.Tags,
		Flags: FlagsResponse{
			CF: regs.Flags.CF,
			ZF: regs.Flags.ZF,
			SF: regs.Flags.SF,
			OF: regs.Flags.OF,
		},
	}
}
