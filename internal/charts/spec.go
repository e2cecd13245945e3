// Package charts maps aggregate tables to declarative chart specifications
// and renders them. Builders are pure: the same table always yields the same
// spec.
package charts

import (
	"aceiro/internal/core"
)

// Type is the chart kind of a spec.
type Type string

const (
	TypeBar        Type = "bar"
	TypeLine       Type = "line"
	TypePie        Type = "pie"
	TypeChoropleth Type = "choropleth"
)

// Theme is the color set shared by every chart on the dashboard.
type Theme struct {
	Background string `json:"background"`
	Font       string `json:"font"`
	Land       string `json:"land,omitempty"`
	Lake       string `json:"lake,omitempty"`
	Subunit    string `json:"subunit,omitempty"`
}

// DarkTheme is the dashboard theme.
var DarkTheme = Theme{
	Background: "#1e1e1e",
	Font:       "white",
	Land:       "rgb(243, 243, 243)",
	Lake:       "#1e1e1e",
	Subunit:    "white",
}

type (
	// Point is one category/value pair of a bar, line or pie chart.
	Point struct {
		Label string `json:"label"`
		Value int    `json:"value"`
	}

	// RangeButton is a quick range selector shown above a time axis.
	// A zero Count selects the whole range.
	RangeButton struct {
		Label    string `json:"label"`
		Count    int    `json:"count,omitempty"`
		Step     string `json:"step"`
		StepMode string `json:"stepmode,omitempty"`
	}

	// GeoSpec references the boundary data of a choropleth. The boundaries
	// themselves are never embedded in the spec.
	GeoSpec struct {
		GeoJSONURL   string   `json:"geojson"`
		FeatureIDKey string   `json:"featureidkey"`
		Locations    []string `json:"locations"`
		Projection   string   `json:"projection"`
		FitBounds    string   `json:"fitbounds"`
	}

	// ChartSpec is the declarative description of one dashboard chart.
	ChartSpec struct {
		ID            string        `json:"id"`
		Type          Type          `json:"type"`
		Title         string        `json:"title"`
		XField        string        `json:"x_field,omitempty"`
		YField        string        `json:"y_field,omitempty"`
		Theme         Theme         `json:"theme"`
		Points        []Point       `json:"points"`
		Geo           *GeoSpec      `json:"geo,omitempty"`
		RangeSelector []RangeButton `json:"range_selector,omitempty"`
	}
)

// DefaultRangeSelector is attached to every line chart.
var DefaultRangeSelector = []RangeButton{
	{Label: "1M", Count: 1, Step: "month", StepMode: "backward"},
	{Label: "6M", Count: 6, Step: "month", StepMode: "backward"},
	{Label: "Tudo", Step: "all"},
}

// Bar maps table keys to the x axis and counts to bar heights.
func Bar(id, title string, t core.AggregateTable) ChartSpec {
	return fromTable(id, TypeBar, title, t)
}

// Line maps table keys to a date axis and counts to the y values.
func Line(id, title string, t core.AggregateTable) ChartSpec {
	s := fromTable(id, TypeLine, title, t)
	s.RangeSelector = append([]RangeButton(nil), DefaultRangeSelector...)
	return s
}

// Pie maps table keys to slice names and counts to slice sizes.
func Pie(id, title string, t core.AggregateTable) ChartSpec {
	return fromTable(id, TypePie, title, t)
}

// Choropleth passes the boundary reference through unchanged.
func Choropleth(id, title string, geo GeoSpec) ChartSpec {
	g := geo
	g.Locations = append([]string{}, geo.Locations...)
	if g.Projection == "" {
		g.Projection = "mercator"
	}
	if g.FitBounds == "" {
		g.FitBounds = "locations"
	}
	return ChartSpec{
		ID:     id,
		Type:   TypeChoropleth,
		Title:  title,
		Theme:  DarkTheme,
		Points: []Point{},
		Geo:    &g,
	}
}

// IsEmpty reports whether the spec has nothing to draw. Points that are all
// zero count as empty.
func (s ChartSpec) IsEmpty() bool {
	if s.Type == TypeChoropleth {
		return s.Geo == nil || len(s.Geo.Locations) == 0
	}
	for _, p := range s.Points {
		if p.Value != 0 {
			return false
		}
	}
	return true
}

func fromTable(id string, typ Type, title string, t core.AggregateTable) ChartSpec {
	points := make([]Point, 0, len(t.Rows))
	for _, b := range t.Rows {
		points = append(points, Point{Label: b.Key, Value: b.Count})
	}
	return ChartSpec{
		ID:     id,
		Type:   typ,
		Title:  title,
		XField: t.KeyField,
		YField: t.ValueField,
		Theme:  DarkTheme,
		Points: points,
	}
}
