package charts

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"aceiro/internal/core"
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 200
)

// TableSpec is one page of the incident table widget.
type TableSpec struct {
	Title          string     `json:"title"`
	Columns        []string   `json:"columns"`
	Rows           [][]string `json:"rows"`
	Page           int        `json:"page"`
	PerPage        int        `json:"per_page"`
	Pages          int        `json:"pages"`
	Total          int        `json:"total"`
	Municipality   string     `json:"municipio,omitempty"`
	Municipalities []string   `json:"municipios"`
	Theme          Theme      `json:"theme"`
}

// HasPrev reports whether a previous page exists.
func (t TableSpec) HasPrev() bool { return t.Page > 1 }

// HasNext reports whether a next page exists.
func (t TableSpec) HasNext() bool { return t.Page < t.Pages }

// IncidentTable pages through the incidents, optionally restricted to one
// municipality (case-insensitive). Columns are the source header followed by
// the derived month and area columns. Out of range pages are clamped.
func IncidentTable(ds *core.Dataset, page, perPage int, municipality string) TableSpec {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)
	municipality = strings.TrimSpace(municipality)

	var (
		header    []string
		incidents []core.Incident
	)
	if ds != nil {
		header = ds.IncidentColumns
		incidents = ds.Incidents
	}

	columns := make([]string, 0, len(header)+2)
	columns = append(columns, header...)
	columns = append(columns, core.ColMonth, core.ColAreaName)

	municipalities := lo.Uniq(lo.Map(incidents, func(i core.Incident, _ int) string { return i.Municipality }))
	municipalities = lo.Filter(municipalities, func(m string, _ int) bool { return m != "" })
	slices.Sort(municipalities)

	if municipality != "" {
		incidents = lo.Filter(incidents, func(i core.Incident, _ int) bool {
			return strings.EqualFold(i.Municipality, municipality)
		})
	}

	total := len(incidents)
	pages := max(1, (total+perPage-1)/perPage)
	page = min(max(page, 1), pages)

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	rows := lo.Map(incidents[start:end], func(i core.Incident, _ int) []string {
		return incidentRow(i, len(header))
	})

	return TableSpec{
		Title:          "Tabela de Ocorrências",
		Columns:        columns,
		Rows:           rows,
		Page:           page,
		PerPage:        perPage,
		Pages:          pages,
		Total:          total,
		Municipality:   municipality,
		Municipalities: municipalities,
		Theme:          DarkTheme,
	}
}

// incidentRow pads or truncates the source cells to width and appends the
// derived columns.
func incidentRow(i core.Incident, width int) []string {
	row := make([]string, width, width+2)
	copy(row, i.Row)
	return append(row, i.MonthName(), i.AreaLabel())
}
