package logging

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Standard attribute keys.
const (
	FieldComponent = "component"
	// FieldRunID tags every line produced by one CLI invocation.
	FieldRunID      = "run_id"
	FieldSourceHash = "source_hash"
	FieldVideoID    = "video_id"
	// FieldOrder is the 1-based playlist position.
	FieldOrder = "order"
	// FieldEventType classifies warnings for filtering.
	FieldEventType = "event_type"
	// FieldImpact says what the user loses because of a warning.
	FieldImpact = "impact"
)

// Attr is an alias so callers need not import log/slog.
type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key, value string) Attr { return slog.String(key, value) }

// Error records err under the "error" key.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger yields
// a tagged no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type and impact.
// Skipped videos and fallback titles go through here.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	hasEvent, hasImpact := false, false
	args := make([]any, 0, len(attrs)+2)
	for _, a := range attrs {
		switch a.Key {
		case FieldEventType:
			hasEvent = true
		case FieldImpact:
			hasImpact = true
		}
		args = append(args, a)
	}
	if !hasEvent {
		args = append(args, String(FieldEventType, eventType))
	}
	if !hasImpact {
		args = append(args, String(FieldImpact, "operation completed with warnings"))
	}
	logger.Warn(msg, args...)
}

type runIDKey struct{}

// WithRunID stores a run identifier on the context. Blank IDs are ignored.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID = strings.TrimSpace(runID); runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext adds the run ID carried by ctx to logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return logger.With(String(FieldRunID, id))
	}
	return logger
}
