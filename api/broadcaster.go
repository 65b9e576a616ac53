package api

import (
	"sync"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	// EventTypeState represents machine state change events: a StateEvent
	// payload with the full register/flag snapshot
	EventTypeState EventType = "state"
	// EventTypeOutput represents program console output: an OutputEvent payload
	EventTypeOutput EventType = "output"
	// EventTypeExecution represents execution events (breakpoint, halt,
	// error): an ExecutionEvent payload
	EventTypeExecution EventType = "event"
	// EventTypeSubscribed acknowledges a client's subscription request: a
	// SubscriptionAck payload
	EventTypeSubscribed EventType = "subscribed"
)

// BroadcastEvent is one event delivered to WebSocket subscribers. Data holds
// the typed payload matching Type: StateEvent, OutputEvent, ExecutionEvent,
// or SubscriptionAck.
type BroadcastEvent struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"sessionId"`
	Data      interface{} `json:"data"`
}

// Subscription represents a client's subscription to events
type Subscription struct {
	SessionID  string
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// matches reports whether event passes the subscription's session and
// event-type filters (an empty filter admits everything).
func (s *Subscription) matches(event BroadcastEvent) bool {
	if s.SessionID != "" && s.SessionID != event.SessionID {
		return false
	}
	if len(s.EventTypes) > 0 && !s.EventTypes[event.Type] {
		return false
	}
	return true
}

// Broadcaster fans session events out to every subscribed WebSocket client.
// Subscriptions are mutated directly under the mutex; delivery is a
// non-blocking send per subscriber so a slow client can never stall the
// execution it is observing.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	closed        bool
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
	}
}

// Subscribe creates a new subscription for events.
// sessionID filters events to a specific session (empty string = all sessions);
// eventTypes filters events by type (empty = all types).
func (b *Broadcaster) Subscribe(sessionID string, eventTypes []EventType) *Subscription {
	types := make(map[EventType]bool, len(eventTypes))
	for _, et := range eventTypes {
		types[et] = true
	}

	sub := &Subscription{
		SessionID:  sessionID,
		EventTypes: types,
		Channel:    make(chan BroadcastEvent, 64), // Buffered to handle bursts
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.Channel)
		return sub
	}
	b.subscriptions[sub] = true
	return sub
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// for a subscription that was already removed (or never added).
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscriptions[sub] {
		delete(b.subscriptions, sub)
		close(sub.Channel)
	}
}

// Broadcast delivers event to every matching subscription. A subscriber
// whose channel is full misses this event rather than blocking the caller.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for sub := range b.subscriptions {
		if !sub.matches(event) {
			continue
		}
		select {
		case sub.Channel <- event:
		default:
			// Client is too slow, skip this event
		}
	}
}

// BroadcastState sends the post-step register/flag snapshot.
func (b *Broadcaster) BroadcastState(sessionID string, state StateEvent) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeState,
		SessionID: sessionID,
		Data:      state,
	})
}

// BroadcastOutput sends a chunk of program console output.
func (b *Broadcaster) BroadcastOutput(sessionID, stream, content string) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeOutput,
		SessionID: sessionID,
		Data:      OutputEvent{Stream: stream, Content: content},
	})
}

// BroadcastExecutionEvent sends a breakpoint/halt/error notification.
func (b *Broadcaster) BroadcastExecutionEvent(sessionID string, event ExecutionEvent) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeExecution,
		SessionID: sessionID,
		Data:      event,
	})
}

// Close shuts down the broadcaster and closes all subscriptions. Safe to
// call more than once; later Broadcast/Subscribe calls become no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subscriptions {
		close(sub.Channel)
	}
	b.subscriptions = make(map[*Subscription]bool)
}

// SubscriptionCount returns the number of active subscriptions
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
