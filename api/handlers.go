package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jpoag/asmr/config"
	"github.com/jpoag/asmr/service"
	"github.com/jpoag/asmr/tools"
)

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.CreateSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	response := SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	}

	writeJSON(w, http.StatusCreated, response)
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()

	response := map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	response := SessionStatusResponse{SessionID: sessionID}

	state, stateErr := session.Service.GetExecutionState()
	if stateErr != nil {
		// Session exists but no program is loaded yet.
		response.State = "empty"
		writeJSON(w, http.StatusOK, response)
		return
	}

	regs, regsErr := session.Service.GetRegisterState()
	if regsErr == nil {
		response.Line = int(regs.Eip) + 1
	}
	response.State = string(state)

	writeJSON(w, http.StatusOK, response)
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	err := s.sessions.DestroySession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Session destroyed",
	})
}

// handleLoadProgram handles POST /api/v1/session/{id}/load
func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req LoadProgramRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if loadErr := session.Service.LoadProgram(req.Source); loadErr != nil {
		response := LoadProgramResponse{
			Success: false,
			Error:   loadErr.Error(),
		}
		writeJSON(w, http.StatusBadRequest, response)
		return
	}

	response := LoadProgramResponse{
		Success: true,
		Symbols: session.Service.GetSymbols(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleRun handles POST /api/v1/session/{id}/run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	// Mark the session running synchronously, before the goroutine starts,
	// so the frontend immediately observes the state change.
	if err := session.Service.Continue(); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to start: %v", err))
		return
	}
	session.Service.FlushBufferedStdin()

	// Drive the program asynchronously; results reach clients as events.
	go func() {
		reason, halted, runErr := session.Service.RunUntilHalt()
		s.broadcastRunResult(sessionID, session.Service, reason, halted, runErr)
	}()

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Program started",
	})
}

// handleStop handles POST /api/v1/session/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Service.Pause()

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Program stopped",
	})
}

// handleStep handles POST /api/v1/session/{id}/step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.handleStepKind(w, r, sessionID, "step")
}

// handleStepOver handles POST /api/v1/session/{id}/step-over
func (s *Server) handleStepOver(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.handleStepKind(w, r, sessionID, "step-over")
}

// handleStepOut handles POST /api/v1/session/{id}/step-out
func (s *Server) handleStepOut(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.handleStepKind(w, r, sessionID, "step-out")
}

func (s *Server) handleStepKind(w http.ResponseWriter, r *http.Request, sessionID, kind string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var halted bool
	var stepErr error
	switch kind {
	case "step-over":
		halted, stepErr = session.Service.StepOver()
	case "step-out":
		halted, stepErr = session.Service.StepOut()
	default:
		halted, stepErr = session.Service.Step()
	}
	if stepErr != nil {
		s.broadcastExecutionError(sessionID, stepErr)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
		return
	}

	regs, regsErr := session.Service.GetRegisterState()
	if regsErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", regsErr))
		return
	}
	state, _ := session.Service.GetExecutionState()

	s.broadcastStateChange(sessionID, regs, state)
	if halted {
		exitCode, _ := session.Service.GetExitCode()
		s.broadcaster.BroadcastExecutionEvent(sessionID, ExecutionEvent{
			Event:    "halted",
			ExitCode: exitCode,
		})
	}

	writeJSON(w, http.StatusOK, ToRegistersResponse(regs))
}

// handleReset handles POST /api/v1/session/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Reset failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Session reset",
	})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	regs, regsErr := session.Service.GetRegisterState()
	if regsErr != nil {
		writeError(w, http.StatusBadRequest, regsErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, ToRegistersResponse(regs))
}

// handleGetStack handles GET /api/v1/session/{id}/stack?count=N
func (s *Server) handleGetStack(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	count := queryInt(r, "count", 16)
	const maxStackRead = 1024
	if count > maxStackRead {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Count too large (max %d)", maxStackRead))
		return
	}

	response := StackResponse{
		Entries: session.Service.GetStack(count),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetHeap handles GET /api/v1/session/{id}/heap?index=N&length=N
func (s *Server) handleGetHeap(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	index, err := strconv.ParseInt(r.URL.Query().Get("index"), 10, 32)
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "Invalid index parameter")
		return
	}

	length := queryInt(r, "length", 0) // 0 = whole buffer

	const maxHeapRead = 1024 * 1024 // 1MB
	if length > maxHeapRead {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Length too large (max %d bytes)", maxHeapRead))
		return
	}

	region := session.Service.GetHeap(int32(index), length)

	response := HeapResponse{
		Index: region.Index,
		Data:  region.Data,
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetSymbols handles GET /api/v1/session/{id}/symbols
func (s *Server) handleGetSymbols(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	response := SymbolsResponse{
		Symbols: session.Service.GetSymbols(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetListing handles GET /api/v1/session/{id}/listing?start=N&count=N
func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	start := queryInt(r, "start", 1)
	count := queryInt(r, "count", 50)

	const maxListing = 1000
	if count > maxListing {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Count too large (max %d)", maxListing))
		return
	}

	response := ListingResponse{
		Lines: session.Service.GetListing(start, count),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetConsole handles GET /api/v1/session/{id}/console
func (s *Server) handleGetConsole(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, CommandResponse{
		Output: session.Service.GetOutput(),
	})
}

// handleBreakpoint handles POST /api/v1/session/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bp, bpErr := session.Service.AddBreakpoint(req.Line, req.Condition)
	if bpErr != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to add breakpoint: %v", bpErr))
		return
	}

	writeJSON(w, http.StatusOK, bp)
}

// handleDeleteBreakpoint handles DELETE /api/v1/session/{id}/breakpoint/{breakpointID}
func (s *Server) handleDeleteBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string, breakpointID int) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.RemoveBreakpoint(breakpointID); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove breakpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Breakpoint removed",
	})
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	response := BreakpointsResponse{
		Breakpoints: session.Service.GetBreakpoints(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleWatchpoint handles POST /api/v1/session/{id}/watchpoint
func (s *Server) handleWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req WatchpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wp, wpErr := session.Service.AddWatchpoint(req.Expression, req.Type)
	if wpErr != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to add watchpoint: %v", wpErr))
		return
	}

	writeJSON(w, http.StatusOK, wp)
}

// handleDeleteWatchpoint handles DELETE /api/v1/session/{id}/watchpoint/{watchpointID}
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string, watchpointID int) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.RemoveWatchpoint(watchpointID); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Watchpoint removed",
	})
}

// handleListWatchpoints handles GET /api/v1/session/{id}/watchpoints
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	response := WatchpointsResponse{
		Watchpoints: session.Service.GetWatchpoints(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleEvaluateExpression handles POST /api/v1/session/{id}/evaluate
func (s *Server) handleEvaluateExpression(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req EvaluateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	value, evalErr := session.Service.EvaluateExpression(req.Expression)
	if evalErr != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Evaluation failed: %v", evalErr))
		return
	}

	response := EvaluateResponse{
		Expression: req.Expression,
		Value:      int32(value),
		Hex:        fmt.Sprintf("0x%x", value),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleCommand handles POST /api/v1/session/{id}/command: the full
// debugger command language (break/watch/print/info/...) over HTTP, for
// clients that want more than the structured endpoints.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req CommandRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	output, cmdErr := session.Service.ExecuteCommand(req.Command)
	if cmdErr != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Command failed: %v", cmdErr))
		return
	}

	writeJSON(w, http.StatusOK, CommandResponse{Output: output})
}

// handleSendStdin handles POST /api/v1/session/{id}/stdin
func (s *Server) handleSendStdin(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req StdinRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if stdinErr := session.Service.SendInput(req.Line); stdinErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to send stdin: %v", stdinErr))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Stdin sent",
	})
}

// handleToolingCompletion handles POST /api/v1/tooling/completion
func (s *Server) handleToolingCompletion(w http.ResponseWriter, r *http.Request) {
	source, ok := readToolingSource(w, r)
	if !ok {
		return
	}

	items, err := tools.CompletionItems(source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CompletionResponse{Items: items})
}

// handleToolingSymbols handles POST /api/v1/tooling/symbols
func (s *Server) handleToolingSymbols(w http.ResponseWriter, r *http.Request) {
	source, ok := readToolingSource(w, r)
	if !ok {
		return
	}

	symbols, err := tools.DocumentSymbols(source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DocumentSymbolsResponse{Symbols: symbols})
}

// handleToolingSemanticTokens handles POST /api/v1/tooling/semantic-tokens
func (s *Server) handleToolingSemanticTokens(w http.ResponseWriter, r *http.Request) {
	source, ok := readToolingSource(w, r)
	if !ok {
		return
	}

	tokens, err := tools.SemanticTokens(source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SemanticTokensResponse{Tokens: tokens})
}

func readToolingSource(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}

	var req ToolingRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return "", false
	}

	return req.Source, true
}

// handleGetConfig handles GET /api/v1/config
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleUpdateConfig handles PUT /api/v1/config
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := config.DefaultConfig()
	if err := readJSON(r, cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := cfg.Save(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Configuration updated",
	})
}

// queryInt parses a non-negative integer query parameter, falling back to a
// default when the parameter is absent or malformed.
func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// broadcastStateChange broadcasts the register/flag snapshot to WebSocket
// clients after a step or a run-loop pause, in the same shape the registers
// endpoint returns.
func (s *Server) broadcastStateChange(sessionID string, regs service.RegisterState, state service.ExecutionState) {
	if s.broadcaster == nil {
		return
	}

	s.broadcaster.BroadcastState(sessionID, StateEvent{
		State:     string(state),
		Line:      int(regs.Eip) + 1,
		Registers: ToRegistersResponse(regs),
	})
}

// broadcastRunResult reports the outcome of an asynchronous run: a
// breakpoint/watchpoint stop, a normal halt with its exit code, or a
// runtime error.
func (s *Server) broadcastRunResult(sessionID string, svc *service.DebuggerService, reason string, halted bool, runErr error) {
	if s.broadcaster == nil {
		return
	}

	line := 0
	if regs, err := svc.GetRegisterState(); err == nil {
		line = int(regs.Eip) + 1
		state, _ := svc.GetExecutionState()
		s.broadcastStateChange(sessionID, regs, state)
	}

	switch {
	case runErr != nil:
		s.broadcastExecutionError(sessionID, runErr)
	case halted:
		exitCode, _ := svc.GetExitCode()
		s.broadcaster.BroadcastExecutionEvent(sessionID, ExecutionEvent{
			Event:    "halted",
			ExitCode: exitCode,
		})
	case reason != "":
		s.broadcaster.BroadcastExecutionEvent(sessionID, ExecutionEvent{
			Event:   "stopped",
			Line:    line,
			Message: reason,
		})
	}
}

func (s *Server) broadcastExecutionError(sessionID string, err error) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastExecutionEvent(sessionID, ExecutionEvent{
		Event:   "error",
		Message: err.Error(),
	})
}
