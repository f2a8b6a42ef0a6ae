package httpx

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandlers reports readiness of the service's dependencies.
type HealthHandlers struct {
	Checks  map[string]HealthCheck
	Timeout time.Duration // defaults to 2s
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health runs every check concurrently and returns 503 when any fails.
// GET|HEAD /healthz.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.Checks))
		failed  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range sortedCheckNames(h.Checks) {
		check := h.Checks[name]
		g.Go(func() error {
			status := "ok"
			if err := check(gctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			failed = failed || status != "ok"
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	resp := healthResponse{Status: "ok", Checks: results}
	if failed {
		code = http.StatusServiceUnavailable
		resp.Status = "unavailable"
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(code)
		return
	}
	WriteJSON(w, code, resp)
}

func sortedCheckNames(checks map[string]HealthCheck) []string {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
