package http

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"aceiro/internal/charts"
	applog "aceiro/internal/log"
)

const dashboardTitle = "Dashboard de Ocorrências"

type dashboardPage struct {
	Title    string
	Columns  [][]charts.Card
	LoadID   string
	LoadedAt time.Time
	Source   string
	Total    int
}

// handleDashboard renders the page shell. Cards and the table are fetched
// by the browser as separate partials.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := dashboardPage{
		Title:   dashboardTitle,
		Columns: [][]charts.Card{charts.CardsInColumn(0), charts.CardsInColumn(1), charts.CardsInColumn(2)},
	}
	if s.dataset != nil {
		data.LoadID = s.dataset.LoadID
		data.LoadedAt = s.dataset.LoadedAt
		data.Source = s.dataset.Source
		data.Total = len(s.dataset.Incidents)
	}

	s.render(w, r, "dashboard.html", data)
}

type incidentTablePartial struct {
	Table charts.TableSpec
	Query TableQuery
	Prev  string
	Next  string
}

// handleIncidentTable renders one page of the incident table.
func (s *Server) handleIncidentTable(w http.ResponseWriter, r *http.Request) {
	q, err := ParseTableQuery(r.URL.Query())
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			writePartialError(w, http.StatusBadRequest, err.Error())
			return
		}
		writePartialError(w, http.StatusInternalServerError, "Erro ao ler parâmetros")
		return
	}

	table := charts.IncidentTable(s.dataset, q.Page, q.PerPage, q.Municipality)
	q.Page = table.Page

	data := incidentTablePartial{Table: table, Query: q}
	if table.HasPrev() {
		prev := q
		prev.Page--
		data.Prev = tableURL(prev)
	}
	if table.HasNext() {
		next := q
		next.Page++
		data.Next = tableURL(next)
	}

	s.render(w, r, "incident_table", data)
}

func tableURL(q TableQuery) string {
	if enc := q.Values().Encode(); enc != "" {
		return "/ui/incidents?" + enc
	}
	return "/ui/incidents"
}

// render executes a template into a buffer so a failure never leaves a half
// written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		writePartialError(w, http.StatusInternalServerError, "templates not loaded")
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"error", err, "template", name)
		writePartialError(w, http.StatusInternalServerError, "Erro ao renderizar")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
