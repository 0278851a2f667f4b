package auth

import (
	"context"
	"io"
	"time"

	"github.com/lumenweb/auth/internal/audit"
)

// Audit event types emitted by the service.
const (
	AuditLogin          = "login"
	AuditRotate         = "rotate"
	AuditLogout         = "logout"
	AuditRevokeAll      = "revoke_all"
	AuditPasswordChange = "password_change"
	AuditReuseDetected  = "secret_reuse_detected"
)

// AuditEvent is the record delivered to audit sinks.
type AuditEvent = audit.Event

// AuditSink receives audit events. Delivery is asynchronous; sinks should
// not block for long.
type AuditSink = audit.Sink

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int

	// DropIfFull trades completeness for latency: with it set, a full
	// buffer drops the event instead of blocking the operation.
	DropIfFull bool
}

// NewJSONWriterAuditSink returns a sink writing one JSON object per line.
func NewJSONWriterAuditSink(w io.Writer) AuditSink {
	return audit.NewJSONWriterSink(w)
}

// NewChannelAuditSink returns a sink delivering events on a channel, mainly
// useful in tests.
func NewChannelAuditSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

func (s *Service) emitAudit(ctx context.Context, eventType, userID, sessionID string, success bool, errMsg string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Event{
		ID:        audit.NewEventID(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		IP:        ClientIPFromContext(ctx),
		UserAgent: UserAgentFromContext(ctx),
		Success:   success,
		Error:     errMsg,
	})
}
