package api

import (
	"testing"
	"time"
)

func TestBroadcasterDeliversTypedStateEvent(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("sess1", nil)

	state := StateEvent{
		State: "breakpoint",
		Line:  3,
		Registers: RegistersResponse{
			Eax:  7,
			Tags: map[string]bool{"eax": false},
			Flags: FlagsResponse{
				ZF: true,
			},
		},
	}
	b.BroadcastState("sess1", state)

	select {
	case event := <-sub.Channel:
		if event.Type != EventTypeState || event.SessionID != "sess1" {
			t.Fatalf("got %s/%s, want state/sess1", event.Type, event.SessionID)
		}
		got, ok := event.Data.(StateEvent)
		if !ok {
			t.Fatalf("Data is %T, want StateEvent", event.Data)
		}
		if got.Line != 3 || got.Registers.Eax != 7 || !got.Registers.Flags.ZF {
			t.Errorf("payload = %+v, want the broadcast snapshot", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestBroadcasterFiltersBySessionAndType(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("sess1", []EventType{EventTypeOutput})

	// Wrong session, wrong type: neither should arrive.
	b.BroadcastOutput("other", "stdout", "nope")
	b.BroadcastExecutionEvent("sess1", ExecutionEvent{Event: "halted"})
	// Matching both filters.
	b.BroadcastOutput("sess1", "stdout", "hello")

	select {
	case event := <-sub.Channel:
		out, ok := event.Data.(OutputEvent)
		if !ok || out.Content != "hello" {
			t.Fatalf("got %+v, want the matching output event", event)
		}
	case <-time.After(time.Second):
		t.Fatal("matching event was not delivered")
	}

	select {
	case event := <-sub.Channel:
		t.Fatalf("unexpected extra event: %+v", event)
	default:
	}
}

func TestBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("", nil)
	b.Unsubscribe(sub)

	if _, open := <-sub.Channel; open {
		t.Error("channel still open after Unsubscribe")
	}
	if b.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount = %d, want 0", b.SubscriptionCount())
	}

	// A second Unsubscribe of the same subscription is a no-op.
	b.Unsubscribe(sub)
}

func TestBroadcasterCloseIsIdempotent(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe("", nil)

	b.Close()
	b.Close()

	if _, open := <-sub.Channel; open {
		t.Error("channel still open after Close")
	}

	// Post-close operations are no-ops, not panics.
	b.BroadcastOutput("sess1", "stdout", "dropped")
	late := b.Subscribe("sess1", nil)
	if _, open := <-late.Channel; open {
		t.Error("post-close Subscribe returned an open channel")
	}
}
