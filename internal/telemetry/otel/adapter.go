package otel

import (
	"context"
	"encoding/json"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"

	activitydomain "multi-tenant-crm/backend/internal/activity/domain"
)

const activityScope = "crm.activity"

// recordEmitter is the subset of otellog.Logger used by ActivityMirror.
type recordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// ActivityMirror emits every appended deal activity as an OTel log record so the audit trail reaches
// the log pipeline alongside traces.
type ActivityMirror struct {
	emitter recordEmitter
	logger  *zap.Logger
}

// NewActivityMirror returns a mirror that emits through provider. A nil provider yields a mirror
// that drops everything.
func NewActivityMirror(provider *sdklog.LoggerProvider, logger *zap.Logger) *ActivityMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &ActivityMirror{logger: logger}
	if provider != nil {
		m.emitter = provider.Logger(activityScope)
	}
	return m
}

// MirrorActivity converts a to a log record and emits it. Best-effort; failures are logged.
func (m *ActivityMirror) MirrorActivity(ctx context.Context, a *activitydomain.Activity) {
	if m == nil || m.emitter == nil || a == nil {
		return
	}
	rec := otellog.Record{}
	rec.SetTimestamp(a.CreatedAt)
	if rec.Timestamp().IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetEventName("deal." + string(a.Type))
	if len(a.Payload) > 0 {
		body, err := json.Marshal(a.Payload)
		if err != nil {
			m.logger.Warn("activity mirror: payload not serializable",
				zap.String("activity_id", a.ID), zap.Error(err))
		} else {
			rec.SetBody(otellog.BytesValue(body))
		}
	}
	rec.AddAttributes(
		otellog.String("activity_id", a.ID),
		otellog.String("deal_id", a.DealID),
		otellog.String("activity_type", string(a.Type)),
	)
	if a.AuthorUserID != nil && *a.AuthorUserID != "" {
		rec.AddAttributes(otellog.String("user_id", *a.AuthorUserID))
	}
	m.emitter.Emit(ctx, rec)
}
