package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMetric struct {
	kind string
	name string
	tags map[string]string
}

type fakeSink struct {
	metrics []recordedMetric
}

func (f *fakeSink) Count(name string, _ int64, tags map[string]string) {
	f.metrics = append(f.metrics, recordedMetric{kind: "count", name: name, tags: tags})
}

func (f *fakeSink) Gauge(name string, _ float64, tags map[string]string) {
	f.metrics = append(f.metrics, recordedMetric{kind: "gauge", name: name, tags: tags})
}

func (f *fakeSink) Timing(name string, _ time.Duration, tags map[string]string) {
	f.metrics = append(f.metrics, recordedMetric{kind: "timing", name: name, tags: tags})
}

type storeError struct{}

func (storeError) Error() string { return "store down" }

func TestEmitAccountEvent(t *testing.T) {
	sink := &fakeSink{}
	EmitAccountEvent(sink, AccountMetric{
		Event:    EventUpgrade,
		Result:   ResultError,
		Duration: 20 * time.Millisecond,
		Err:      errors.Join(storeError{}),
	})

	require.Len(t, sink.metrics, 2)
	assert.Equal(t, "account.event", sink.metrics[0].name)
	assert.Equal(t, "upgrade", sink.metrics[0].tags["event"])
	assert.Equal(t, "error", sink.metrics[0].tags["result"])
	assert.NotEmpty(t, sink.metrics[0].tags["error_class"])
	assert.Equal(t, "timing", sink.metrics[1].kind)
}

func TestEmitAccountEvent_NoErrorClassOnSuccess(t *testing.T) {
	sink := &fakeSink{}
	EmitAccountEvent(sink, AccountMetric{Event: EventSignIn, Result: ResultSuccess, Err: storeError{}})

	require.Len(t, sink.metrics, 1)
	_, ok := sink.metrics[0].tags["error_class"]
	assert.False(t, ok)

	EmitAccountEvent(nil, AccountMetric{Event: EventSignIn})
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestEmitterFansOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := &fakeSink{}
	e := Emitter{Sink: sink, Collector: NewCollector(reg)}

	e.RecordAccount(AccountMetric{Event: EventSignUp, Result: ResultSuccess})
	e.RecordAccount(AccountMetric{Event: EventSignUp, Result: ResultSuccess})
	e.RecordAccount(AccountMetric{Event: EventSignUp, Result: ResultRejected})

	assert.Len(t, sink.metrics, 3)
	assert.InDelta(t, 2, counterValue(t, reg, "voxa_account_events_total",
		map[string]string{"event": "sign_up", "result": "success"}), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "voxa_account_events_total",
		map[string]string{"event": "sign_up", "result": "rejected"}), 0)

	Emitter{}.RecordAccount(AccountMetric{Event: EventLogout})
}

func TestCollectorHTTPAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveHTTP(http.MethodPost, "POST /api/update-plan", http.StatusOK, 5*time.Millisecond)
	c.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.InDelta(t, 1, counterValue(t, reg, "voxa_http_requests_total",
		map[string]string{"route": "unmatched", "status_code": "404"}), 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "voxa_http_request_duration_seconds")

	var nilCollector *Collector
	nilCollector.ObserveHTTP("GET", "/", 200, time.Millisecond)
	nilCollector.ObserveAccount(AccountMetric{})
}
