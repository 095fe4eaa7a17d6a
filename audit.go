package blogauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Audit event types. Failure causes stay distinct here even though the API
// collapses them; this stream is the only place operators can tell an
// expired token from a forged one.
const (
	EventLoginSuccess      = "login_success"
	EventLoginFailure      = "login_failure"
	EventLoginRateLimited  = "login_rate_limited"
	EventRegisterSuccess   = "register_success"
	EventRegisterDuplicate = "register_duplicate"
	EventRefreshSuccess    = "refresh_success"
	EventRefreshFailure    = "refresh_failure"
	EventTokenRejected     = "token_rejected"
)

// AuditEvent is one security-relevant occurrence. Raw tokens and secrets are
// never placed in events; the request path is, because rejected-token
// warnings are only actionable with it.
type AuditEvent struct {
	Timestamp   time.Time         `json:"timestamp"`
	EventType   string            `json:"event_type"`
	PrincipalID string            `json:"principal_id,omitempty"`
	IP          string            `json:"ip,omitempty"`
	Path        string            `json:"path,omitempty"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives emitted audit events.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes audit events into a buffered channel for callers that
// forward them elsewhere.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan AuditEvent, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

func (s *JSONWriterSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
