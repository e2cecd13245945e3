package http

import (
	"net/http"
	"time"

	"aceiro/internal/core"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

type readiness struct {
	Status   string         `json:"status"`
	LoadID   string         `json:"load_id,omitempty"`
	LoadedAt string         `json:"loaded_at,omitempty"`
	Source   string         `json:"source,omitempty"`
	Rows     map[string]int `json:"rows,omitempty"`
	Checks   map[string]any `json:"checks"`
}

// handleReady reports the loaded dataset. The server is ready once a dataset
// is present and templates parsed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readiness{Status: "ready", Checks: map[string]any{}}
	status := http.StatusOK

	if s.templates == nil {
		resp.Checks["templates"] = "failed: templates not loaded"
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["templates"] = "ok"
	}

	if s.dataset == nil {
		resp.Checks["dataset"] = "not loaded"
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["dataset"] = "ok"
		resp.LoadID = s.dataset.LoadID
		resp.Source = s.dataset.Source
		if !s.dataset.LoadedAt.IsZero() {
			resp.LoadedAt = s.dataset.LoadedAt.Format(time.RFC3339)
		}
		resp.Rows = rowCounts(s.dataset)
	}

	geo := s.geoCache.Stats()
	resp.Checks["geo_cache"] = map[string]any{"size": geo.Size, "hits": geo.Hits, "misses": geo.Misses}
	resp.Checks["rate_limit"] = map[string]any{"clients": s.limiter.ActiveClients(), "rejected": s.limiter.Rejected()}
	m := s.tracer.Metrics()
	resp.Checks["requests"] = map[string]any{
		"total":          m.TotalRequests,
		"server_errors":  m.ServerErrors,
		"avg_latency_ms": float64(m.AverageLatency().Microseconds()) / 1000,
	}

	if status != http.StatusOK {
		resp.Status = "not_ready"
	}
	writeJSON(w, status, resp)
}

func rowCounts(ds *core.Dataset) map[string]int {
	out := make(map[string]int, len(core.Entities()))
	for e, n := range ds.Counts() {
		out[e.String()] = n
	}
	return out
}
