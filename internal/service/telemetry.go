package service

import (
	"log/slog"
	"time"

	"github.com/voxa-app/voxa-api/internal/observability/metrics"
)

// Telemetry groups the optional logging and metrics hooks shared by the account services.
type Telemetry struct {
	Logger  *slog.Logger     // Optional: defaults to slog.Default()
	Metrics metrics.Recorder // Optional: nil disables metrics
}

func (t Telemetry) logger(component string) *slog.Logger {
	l := t.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}

func (t Telemetry) record(event, result string, started time.Time, err error) {
	if t.Metrics == nil {
		return
	}
	t.Metrics.RecordAccount(metrics.AccountMetric{
		Event:    event,
		Result:   result,
		Duration: time.Since(started),
		Err:      err,
	})
}
