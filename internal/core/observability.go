package core

import (
	"context"
	"log/slog"
	"time"

	"fleetcore/pkg/domain"
)

// Logger is the minimal structured logging surface the service depends on.
// Keyvals alternate keys and values, slog style.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NewSlogLogger adapts a *slog.Logger to the service Logger interface. A nil
// argument adapts slog.Default().
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Debug(msg string, keyvals ...any) { l.logger.Debug(msg, keyvals...) }
func (l slogLogger) Info(msg string, keyvals ...any)  { l.logger.Info(msg, keyvals...) }
func (l slogLogger) Warn(msg string, keyvals ...any)  { l.logger.Warn(msg, keyvals...) }
func (l slogLogger) Error(msg string, keyvals ...any) { l.logger.Error(msg, keyvals...) }

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// AuditStatus classifies the outcome recorded in an audit entry.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one completed service mutation for the audit trail.
type AuditEntry struct {
	Operation string
	Entity    domain.EntityType
	EntityID  string
	Action    domain.Action
	Actor     string
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder consumes audit entries. Implementations must tolerate
// concurrent calls.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}
