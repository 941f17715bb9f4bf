package authtools

import (
	"context"
	"io"
	"time"

	"github.com/MrEthical07/authtools/internal/audit"
	"github.com/MrEthical07/authtools/internal/flows"
)

// AuditEvent records the outcome of one flow.
type AuditEvent = audit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = audit.Sink

type (
	NoOpSink       = audit.NoOpSink
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
)

// NewChannelSink returns a sink that buffers up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink that writes one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *audit.Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	return audit.NewDispatcher(audit.Config{
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}

// emitAudit records one flow outcome. reason overrides the failure name of
// res for outcomes decided outside the flow.
func (e *Engine) emitAudit(ctx context.Context, flow Flow, st Status, res flows.Result, reason string) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:     time.Now().UTC(),
		Flow:          flow.String(),
		IP:            clientIPFromContext(ctx),
		UserAgent:     userAgentFromContext(ctx),
		Success:       !st.Error,
		Code:          int(st.Code),
		InterceptCode: st.InterceptCode,
	}
	sensitive := e.config.SensitiveLogs
	switch {
	case sensitive && res.Failure == flows.FailurePasswordMismatch:
	case res.User != nil && res.User.ID != "":
		event.UserID = res.User.ID
	case res.Payload.SubjectID != "":
		event.UserID = res.Payload.SubjectID
	}
	switch {
	case reason != "":
		event.Reason = reason
	case !res.OK():
		event.Reason = auditReason(res.Failure, sensitive)
	}

	e.audit.Emit(ctx, event)
}

// auditReason names failure. SensitiveLogs folds the same pairs as the
// debug log lines.
func auditReason(failure flows.Failure, sensitive bool) string {
	if sensitive {
		switch failure {
		case flows.FailureEmailTaken, flows.FailureUsernameTaken:
			return "login_taken"
		case flows.FailureUserNotFound, flows.FailurePasswordMismatch:
			return "invalid_credentials"
		}
	}
	return failure.String()
}
