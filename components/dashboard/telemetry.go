package dashboard

import (
	"context"

	"github.com/rs/zerolog"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes telemetry events as structured debug lines.
type LogTelemetry struct {
	Logger zerolog.Logger
}

// Record logs the event with its payload fields.
func (t LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.Logger.Debug().Str("event", event).Fields(payload).Msg("dashboard telemetry")
}

func normalizeLogger(l *zerolog.Logger) zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return *l
}
