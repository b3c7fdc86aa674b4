package leaderboardservice

import (
	"bytes"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colours of the points chart. Lines cycle through
// Lines when there are more users than colours.
type ChartPalette struct {
	Background drawing.Color
	Text       drawing.Color
	Lines      []drawing.Color
}

// DefaultPalette is the pool's line palette on a white background.
func DefaultPalette() ChartPalette {
	hex := []string{"#55efc4", "#81ecec", "#a29bfe", "#ffeaa7", "#fab1a0", "#ff7675", "#fd79a8"}
	lines := make([]drawing.Color, len(hex))
	for i, h := range hex {
		lines[i] = drawing.ColorFromHex(h[1:])
	}
	return ChartPalette{
		Background: drawing.ColorWhite,
		Text:       drawing.ColorFromHex("417690"),
		Lines:      lines,
	}
}

// LineColor returns the colour of the i-th series.
func (p ChartPalette) LineColor(i int) drawing.Color {
	if len(p.Lines) == 0 {
		return drawing.ColorBlack
	}
	return p.Lines[i%len(p.Lines)]
}

// GeneratePointsChart produces a PNG line chart with one cumulative points
// line per user.
func GeneratePointsChart(history []PointsSeries, palette ChartPalette) ([]byte, error) {
	var series []chart.Series
	maxPoints := 1.0
	for i, h := range history {
		if len(h.Points) == 0 {
			continue
		}
		// Lines start from zero the day before the first fixture, so a
		// single fixture still draws a segment.
		xValues := make([]time.Time, 0, len(h.Points)+1)
		yValues := make([]float64, 0, len(h.Points)+1)
		xValues = append(xValues, h.Points[0].At.Add(-24*time.Hour))
		yValues = append(yValues, 0)
		for _, p := range h.Points {
			xValues = append(xValues, p.At)
			yValues = append(yValues, float64(p.Points))
			maxPoints = max(maxPoints, float64(p.Points))
		}

		color := palette.LineColor(i)
		series = append(series, chart.TimeSeries{
			Name:    h.DisplayName,
			XValues: xValues,
			YValues: yValues,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotWidth:    3,
				DotColor:    color,
			},
		})
	}
	if len(series) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	graph := chart.Chart{
		Width:  900,
		Height: 450,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Kickoff",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style:          chart.Style{FontColor: palette.Text},
		},
		// fixed from zero so an all-zero board still has a y range
		YAxis: chart.YAxis{
			Name:  "Points",
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: maxPoints},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws the message on a bare PNG canvas. A
// chart.Chart cannot be rendered without at least one series.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No concluded fixtures yet"
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(palette.Background)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(palette.Text)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
