package api

import (
	"io"
	"sync"
)

// EventWriter is the io.Writer a session installs as its program's stdout:
// every asmr::io::print flush arrives here and fans out to the session's
// WebSocket subscribers as an OutputEvent. The write path is what the VM's
// builtins block on, so it must never stall — Broadcast's non-blocking
// delivery guarantees that.
type EventWriter struct {
	broadcaster *Broadcaster
	sessionID   string
	stream      string // "stdout" or "stderr"
	mu          sync.Mutex
	written     int64
}

// NewEventWriter creates a writer broadcasting to the given session's
// subscribers on the named stream.
func NewEventWriter(broadcaster *Broadcaster, sessionID string, stream string) *EventWriter {
	return &EventWriter{
		broadcaster: broadcaster,
		sessionID:   sessionID,
		stream:      stream,
	}
}

// Write broadcasts p as an output event to all subscribed WebSocket clients.
func (w *EventWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	w.written += int64(len(p))
	w.mu.Unlock()

	if len(p) > 0 && w.broadcaster != nil {
		w.broadcaster.BroadcastOutput(w.sessionID, w.stream, string(p))
	}
	return len(p), nil
}

// BytesWritten returns the total number of output bytes the session's
// program has produced.
func (w *EventWriter) BytesWritten() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Ensure EventWriter implements io.Writer
var _ io.Writer = (*EventWriter)(nil)
