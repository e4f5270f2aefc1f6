package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldUserID is the field name for user ID.
	LogFieldUserID = "user_id"
	// LogFieldCalendarID is the field name for calendar ID.
	LogFieldCalendarID = "calendar_id"
	// LogFieldIntentType is the field name for intent type.
	LogFieldIntentType = "intent_type"
	// LogFieldConfidence is the field name for intent confidence.
	LogFieldConfidence = "confidence"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
	// LogFieldStage is the field name for the pipeline stage.
	LogFieldStage = "stage"
)

// RequestContext carries structured logging state for a single assistant request.
type RequestContext struct {
	RequestID string
	UserID    int32
	Stage     string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a new request context with a generated request ID.
func NewRequestContext(logger *slog.Logger, stage string, userID int32) *RequestContext {
	return &RequestContext{
		RequestID: uuid.NewString(),
		UserID:    userID,
		Stage:     stage,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

func (r *RequestContext) baseAttrs(attrs ...slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldRequestID, r.RequestID),
		slog.Int(LogFieldUserID, int(r.UserID)),
		slog.String(LogFieldStage, r.Stage),
	}
	return append(base, attrs...)
}

// Info logs an info message with the request's base fields.
func (r *RequestContext) Info(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, r.baseAttrs(attrs...)...)
}

// Warn logs a warning message with the request's base fields.
func (r *RequestContext) Warn(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, r.baseAttrs(attrs...)...)
}

// Error logs an error message with the request's base fields.
func (r *RequestContext) Error(msg string, err error, attrs ...slog.Attr) {
	combined := r.baseAttrs(attrs...)
	if err != nil {
		combined = append(combined, slog.String("error", err.Error()))
	}
	r.Logger.LogAttrs(context.Background(), slog.LevelError, msg, combined...)
}

// Elapsed returns the duration since the request started in milliseconds.
func (r *RequestContext) Elapsed() int64 {
	return time.Since(r.StartTime).Milliseconds()
}
