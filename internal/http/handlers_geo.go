package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	applog "aceiro/internal/log"
)

// handleBoundaries proxies the boundary GeoJSON so the map is drawn from a
// same-origin URL. Upstream documents are cached.
func (s *Server) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	if s.geoURL == "" {
		writeError(w, http.StatusNotFound, "no boundary source configured")
		return
	}

	body, ok := s.geoCache.Get(s.geoURL)
	if !ok {
		var err error
		body, err = s.fetchBoundaries(r.Context())
		if err != nil {
			applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
				"Boundary fetch failed", err, applog.ComponentGeo, applog.OpFetch,
				applog.NewFields().WithSource(s.geoURL))
			writeError(w, http.StatusBadGateway, "boundary data unavailable")
			return
		}
		s.geoCache.Set(s.geoURL, body)
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(body)
}

func (s *Server) fetchBoundaries(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.geoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.geoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", s.geoURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGeoJSONBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.geoURL, err)
	}
	if len(body) > maxGeoJSONBytes {
		return nil, fmt.Errorf("get %s: document larger than %d bytes", s.geoURL, maxGeoJSONBytes)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("get %s: response is not valid JSON", s.geoURL)
	}
	return body, nil
}
