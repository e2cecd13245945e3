package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"aceiro/internal/aggregate"
	"aceiro/internal/charts"
	"aceiro/internal/core"
	applog "aceiro/internal/log"
)

type chartCardPartial struct {
	Card    charts.Card
	Spec    charts.ChartSpec
	Empty   bool
	Map     bool
	SVGURL  string
	SpecURL string
}

// buildChart recomputes the card's aggregate from the dataset.
func (s *Server) buildChart(r *http.Request, card charts.Card) charts.ChartSpec {
	start := time.Now()
	spec := card.Build(s.dataset, s.env)
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogChartRendered(r.Context(), spec.ID, string(spec.Type), len(spec.Points), time.Since(start))
	return spec
}

// handleChartPartial renders one chart card. Bar, line and pie cards embed
// the server-rendered SVG; the map card carries its spec URL for the client.
func (s *Server) handleChartPartial(w http.ResponseWriter, r *http.Request) {
	card, ok := charts.FindCard(r.PathValue("id"))
	if !ok {
		writePartialError(w, http.StatusNotFound, "Gráfico não encontrado")
		return
	}

	spec := s.buildChart(r, card)
	data := chartCardPartial{
		Card:    card,
		Spec:    spec,
		Empty:   spec.IsEmpty(),
		Map:     spec.Type == charts.TypeChoropleth,
		SVGURL:  "/charts/" + card.ID + ".svg",
		SpecURL: "/api/charts/" + card.ID,
	}
	s.render(w, r, "chart_card", data)
}

// handleChartSVG serves /charts/{id}.svg.
func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	card, ok := charts.FindCard(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown chart "+id)
		return
	}

	etag := `"` + card.ID + "-" + s.loadID() + `"`
	if etagMatches(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	spec := s.buildChart(r, card)
	var buf bytes.Buffer
	if err := charts.RenderSVG(&buf, spec); err != nil {
		switch {
		case errors.Is(err, charts.ErrNotRenderable):
			writeError(w, http.StatusNotFound, "chart "+id+" is drawn client-side; use /api/charts/"+id)
		case errors.Is(err, charts.ErrEmptyChart):
			writeError(w, http.StatusNotFound, "chart "+id+" has no data")
		default:
			applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
				"Chart render failed", err, applog.ComponentCharts, applog.OpRender,
				applog.NewFields().WithChart(spec.ID, string(spec.Type), len(spec.Points)))
			writeError(w, http.StatusInternalServerError, "failed to render chart")
		}
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)
	_, _ = buf.WriteTo(w)
}

type chartSummary struct {
	charts.Card
	SpecURL string `json:"spec_url"`
	SVGURL  string `json:"svg_url,omitempty"`
}

// handleListCharts lists the dashboard cards in page order.
func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	cards := charts.Cards()
	out := make([]chartSummary, 0, len(cards))
	for _, c := range cards {
		sum := chartSummary{Card: c, SpecURL: "/api/charts/" + c.ID}
		if c.Type != charts.TypeChoropleth {
			sum.SVGURL = "/charts/" + c.ID + ".svg"
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleChartSpec returns the ChartSpec of one card.
func (s *Server) handleChartSpec(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	card, ok := charts.FindCard(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown chart "+id)
		return
	}
	writeJSON(w, http.StatusOK, s.buildChart(r, card))
}

// handleListAggregates lists the aggregate table names.
func (s *Server) handleListAggregates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, append(aggregate.Names(), aggregate.NameStaffing))
}

// handleAggregate returns one aggregate table, recomputed from the dataset.
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var (
		table core.AggregateTable
		ok    bool
	)
	if name == aggregate.NameStaffing {
		table, ok = aggregate.Staffing(s.env.Staffing), true
	} else {
		table, ok = aggregate.Lookup(s.dataset, name)
	}
	if !ok {
		writeError(w, http.StatusNotFound, "unknown aggregate "+name)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) loadID() string {
	if s.dataset == nil {
		return "empty"
	}
	return s.dataset.LoadID
}
