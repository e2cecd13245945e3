package charts

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// ErrNotRenderable is returned for chart types drawn by the browser.
	ErrNotRenderable = errors.New("chart type is rendered client-side")
	// ErrEmptyChart is returned when a spec has no non-zero points.
	ErrEmptyChart = errors.New("chart has no data")
)

// SVG canvas size.
const (
	RenderWidth  = 560
	RenderHeight = 380
)

// Series palette.
var palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// RenderSVG draws bar, line and pie specs as SVG in the spec's theme.
func RenderSVG(w io.Writer, s ChartSpec) error {
	if s.Type == TypeChoropleth {
		return ErrNotRenderable
	}
	if s.IsEmpty() {
		return ErrEmptyChart
	}

	var err error
	switch s.Type {
	case TypeBar:
		err = renderBar(w, s)
	case TypeLine:
		err = renderLine(w, s)
	case TypePie:
		err = renderPie(w, s)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrNotRenderable, s.Type)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", s.ID, err)
	}
	return nil
}

func renderBar(w io.Writer, s ChartSpec) error {
	bg, fg := themeColors(s.Theme)
	bars := make([]chart.Value, 0, len(s.Points))
	for i, p := range s.Points {
		c := paletteColor(i)
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: float64(p.Value),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
	}

	bc := chart.BarChart{
		Title:      s.Title,
		TitleStyle: chart.Style{FontColor: fg},
		Width:      RenderWidth,
		Height:     RenderHeight,
		BarWidth:   barWidth(len(bars)),
		Background: chart.Style{FillColor: bg, Padding: chart.Box{Top: 48, Left: 12, Right: 12, Bottom: 12}},
		Canvas:     chart.Style{FillColor: bg},
		XAxis:      chart.Style{FontColor: fg, StrokeColor: fg},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontColor: fg, StrokeColor: fg},
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax(s.Points)},
			ValueFormatter: intFormatter,
		},
		Bars: bars,
	}
	return bc.Render(chart.SVG, w)
}

func renderLine(w io.Writer, s ChartSpec) error {
	bg, fg := themeColors(s.Theme)
	xs := make([]time.Time, 0, len(s.Points))
	ys := make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		t, err := time.Parse(time.DateOnly, p.Label)
		if err != nil {
			return fmt.Errorf("point %q: %w", p.Label, err)
		}
		xs = append(xs, t)
		ys = append(ys, float64(p.Value))
	}

	// Pad the axis so a single day still has a non-zero range.
	minX := chart.TimeToFloat64(xs[0].Add(-12 * time.Hour))
	maxX := chart.TimeToFloat64(xs[len(xs)-1].Add(12 * time.Hour))
	c := paletteColor(0)

	ch := chart.Chart{
		Title:      s.Title,
		TitleStyle: chart.Style{FontColor: fg},
		Width:      RenderWidth,
		Height:     RenderHeight,
		Background: chart.Style{FillColor: bg, Padding: chart.Box{Top: 48, Left: 12, Right: 16, Bottom: 12}},
		Canvas:     chart.Style{FillColor: bg},
		XAxis: chart.XAxis{
			Style:          chart.Style{FontColor: fg, StrokeColor: fg},
			Range:          &chart.ContinuousRange{Min: minX, Max: maxX},
			ValueFormatter: dayFormatter,
		},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontColor: fg, StrokeColor: fg},
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax(s.Points)},
			ValueFormatter: intFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    s.YField,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: c, StrokeWidth: 2, DotColor: c, DotWidth: 3},
			},
		},
	}
	return ch.Render(chart.SVG, w)
}

func renderPie(w io.Writer, s ChartSpec) error {
	bg, fg := themeColors(s.Theme)
	values := make([]chart.Value, 0, len(s.Points))
	for i, p := range s.Points {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", p.Label, p.Value),
			Value: float64(p.Value),
			Style: chart.Style{FillColor: paletteColor(i), StrokeColor: bg, FontColor: fg},
		})
	}

	pc := chart.PieChart{
		Title:      s.Title,
		TitleStyle: chart.Style{FontColor: fg},
		Width:      RenderWidth,
		Height:     RenderHeight,
		Background: chart.Style{FillColor: bg, Padding: chart.Box{Top: 48, Left: 12, Right: 12, Bottom: 12}},
		Canvas:     chart.Style{FillColor: bg},
		Values:     values,
	}
	return pc.Render(chart.SVG, w)
}

func themeColors(t Theme) (bg, fg drawing.Color) {
	return parseColor(t.Background, drawing.ColorBlack), parseColor(t.Font, drawing.ColorWhite)
}

// parseColor understands #rrggbb, rgb(r, g, b) and the names white and black.
func parseColor(s string, fallback drawing.Color) drawing.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "white":
		return drawing.ColorWhite
	case s == "black":
		return drawing.ColorBlack
	case strings.HasPrefix(s, "#") && (len(s) == 7 || len(s) == 4):
		return drawing.ColorFromHex(s[1:])
	case strings.HasPrefix(s, "rgb("):
		var r, g, b uint8
		if _, err := fmt.Sscanf(s, "rgb(%d, %d, %d)", &r, &g, &b); err == nil {
			return drawing.Color{R: r, G: g, B: b, A: 255}
		}
	}
	return fallback
}

func paletteColor(i int) drawing.Color {
	return parseColor(palette[i%len(palette)], drawing.ColorBlue)
}

func yMax(points []Point) float64 {
	m := 0
	for _, p := range points {
		m = max(m, p.Value)
	}
	return float64(m)*1.1 + 1
}

func barWidth(n int) int {
	if n <= 0 {
		return 40
	}
	return min(60, max(8, (RenderWidth-80)/(n*2)))
}

func intFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return fmt.Sprint(v)
}

func dayFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return time.Unix(0, int64(f)).UTC().Format("02/01")
	}
	return fmt.Sprint(v)
}
