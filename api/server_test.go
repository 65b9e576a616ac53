package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(0)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.broadcaster.Close()
	})
	return s, ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var health map[string]interface{}
	decodeJSON(t, resp, &health)
	if health["status"] != "ok" {
		t.Errorf("status = %v, want ok", health["status"])
	}
}

func TestSessionLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	// Create
	resp := postJSON(t, ts.URL+"/api/v1/session", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created SessionCreateResponse
	decodeJSON(t, resp, &created)
	if created.SessionID == "" {
		t.Fatal("empty session ID")
	}
	base := fmt.Sprintf("%s/api/v1/session/%s", ts.URL, created.SessionID)

	// Load
	resp = postJSON(t, base+"/load", LoadProgramRequest{Source: "start:\nmov eax, 7\nadd eax, eax"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d, want 200", resp.StatusCode)
	}
	var loaded LoadProgramResponse
	decodeJSON(t, resp, &loaded)
	if !loaded.Success {
		t.Fatalf("load failed: %s", loaded.Error)
	}
	if loaded.Symbols["start"] != 1 {
		t.Errorf("start symbol = %d, want 1", loaded.Symbols["start"])
	}

	// Step twice: over the label, then mov eax, 7
	for i := 0; i < 2; i++ {
		resp = postJSON(t, base+"/step", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("step status = %d, want 200", resp.StatusCode)
		}
		resp.Body.Close()
	}

	// Registers now show the mov's result
	resp, err := http.Get(base + "/registers")
	if err != nil {
		t.Fatalf("GET registers: %v", err)
	}
	var regs RegistersResponse
	decodeJSON(t, resp, &regs)
	if regs.Eax != 7 {
		t.Errorf("eax = %d, want 7", regs.Eax)
	}

	// Destroy
	req, _ := http.NewRequest(http.MethodDelete, base, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("destroy status = %d, want 200", resp.StatusCode)
	}
}

func TestLoadProgramParseError(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/session", nil)
	var created SessionCreateResponse
	decodeJSON(t, resp, &created)

	resp = postJSON(t, fmt.Sprintf("%s/api/v1/session/%s/load", ts.URL, created.SessionID),
		LoadProgramRequest{Source: "this is not asmr"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var loaded LoadProgramResponse
	decodeJSON(t, resp, &loaded)
	if loaded.Success || loaded.Error == "" {
		t.Errorf("expected a failed load with an error message, got %+v", loaded)
	}
}

func TestBreakpointRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/session", nil)
	var created SessionCreateResponse
	decodeJSON(t, resp, &created)
	base := fmt.Sprintf("%s/api/v1/session/%s", ts.URL, created.SessionID)

	resp = postJSON(t, base+"/load", LoadProgramRequest{Source: "loop:\nmov eax, 1\njmp loop"})
	resp.Body.Close()

	resp = postJSON(t, base+"/breakpoint", BreakpointRequest{Line: "loop"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("breakpoint status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Get(base + "/breakpoints")
	if err != nil {
		t.Fatalf("GET breakpoints: %v", err)
	}
	var bps BreakpointsResponse
	decodeJSON(t, resp, &bps)
	if len(bps.Breakpoints) != 1 || bps.Breakpoints[0].Line != 1 {
		t.Errorf("breakpoints = %+v, want one at line 1", bps.Breakpoints)
	}
}

func TestToolingCompletionEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/tooling/completion",
		ToolingRequest{Source: "msg db \"hi\"\nstart:\nmov eax, msg"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var completion CompletionResponse
	decodeJSON(t, resp, &completion)

	found := map[string]string{}
	for _, item := range completion.Items {
		found[item.TokenName] = string(item.TokenType)
	}
	if found["msg"] != "variable" || found["start"] != "label" {
		t.Errorf("missing declaration completions: %v", found)
	}
	if found["asmr::io::print"] != "function" {
		t.Errorf("missing builtin completion: %v", found)
	}
}

func TestToolingSemanticTokensEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/tooling/semantic-tokens",
		ToolingRequest{Source: "push eax\ncall asmr::io::print"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var tokens SemanticTokensResponse
	decodeJSON(t, resp, &tokens)
	if len(tokens.Tokens) != 1 || tokens.Tokens[0].TokenType != "function" {
		t.Errorf("tokens = %+v, want one function token", tokens.Tokens)
	}
}

func TestToolingParseErrorIsBadRequest(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/tooling/symbols", ToolingRequest{Source: "not a line"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/session/nosuch/registers")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
