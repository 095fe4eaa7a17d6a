package blogauth

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDispatcherDeliversEvents(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)
	t.Cleanup(d.Close)

	d.Emit(context.Background(), AuditEvent{EventType: EventLoginSuccess, PrincipalID: "p-1"})

	select {
	case event := <-sink.Events():
		if event.EventType != EventLoginSuccess || event.PrincipalID != "p-1" {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{release: block}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event occupies the sink, one fills the buffer, the rest drop.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: EventTokenRejected})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events")
	}

	close(block)
	d.Close()
}

type blockingSink struct {
	release chan struct{}
}

func (s blockingSink) Emit(context.Context, AuditEvent) { <-s.release }

func TestDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled config should yield nil dispatcher")
	}
	// nil receivers are safe
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		EventType:   EventLoginFailure,
		PrincipalID: "p-1",
		Error:       "invalid credentials",
	})
	sink.Emit(context.Background(), AuditEvent{EventType: EventLoginSuccess, Success: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var event AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.EventType != EventLoginFailure || event.Error != "invalid credentials" {
		t.Fatalf("unexpected event %+v", event)
	}
}
