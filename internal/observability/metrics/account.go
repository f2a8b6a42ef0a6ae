// Package metrics records account lifecycle and HTTP observations to StatsD and Prometheus.
package metrics

import (
	"time"

	obserrors "github.com/voxa-app/voxa-api/internal/observability/errors"
	"github.com/voxa-app/voxa-api/internal/observability/statsd"
)

// Account events.
const (
	EventSignUp        = "sign_up"
	EventSignIn        = "sign_in"
	EventLogout        = "logout"
	EventResolve       = "resolve"
	EventUpgrade       = "upgrade"
	EventPaymentIntent = "payment_intent"
)

// Result constants for metric tagging.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultRejected  = "rejected"
	ResultAnonymous = "anonymous"
)

// AccountMetric captures one account lifecycle observation.
type AccountMetric struct {
	Event    string
	Result   string
	Duration time.Duration
	Err      error
}

// Recorder receives account observations. Services hold one optionally.
type Recorder interface {
	RecordAccount(in AccountMetric)
}

// Emitter fans observations out to a StatsD sink and a Prometheus collector.
// Either may be nil.
type Emitter struct {
	Sink      statsd.Sink
	Collector *Collector
}

var _ Recorder = Emitter{}

// RecordAccount implements Recorder.
func (e Emitter) RecordAccount(in AccountMetric) {
	EmitAccountEvent(e.Sink, in)
	e.Collector.ObserveAccount(in)
}

// EmitAccountEvent emits standardised account metrics to sink.
func EmitAccountEvent(sink statsd.Sink, in AccountMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"event":  in.Event,
		"result": in.Result,
	}
	if class := errorClass(in); class != "" {
		tags["error_class"] = class
	}

	sink.Count("account.event", 1, tags)
	if in.Duration > 0 {
		sink.Timing("account.duration", in.Duration, CloneTags(tags))
	}
}

func errorClass(in AccountMetric) string {
	if in.Err == nil || in.Result != ResultError {
		return ""
	}
	return obserrors.Classify(in.Err)
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k != "" {
			out[k] = v
		}
	}
	return out
}
