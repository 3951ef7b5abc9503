package leaderboardservice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette colors the rendered charts.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultPalette matches the app's crimson theme.
func DefaultPalette() ChartPalette {
	return ChartPalette{
		Background:  drawing.ColorFromHex("ffffff"),
		PrimaryLine: drawing.ColorFromHex("a51c30"),
		AccentLine:  drawing.ColorFromHex("ff7900"),
		TextColor:   drawing.ColorFromHex("333333"),
	}
}

// GenerateWinsChart produces a PNG line chart of a participant's cumulative
// wins. The line starts from zero a day before the first game.
func GenerateWinsChart(participant string, history []HistoryEntry, palette ChartPalette) ([]byte, error) {
	if len(history) == 0 {
		return renderNoDataPlaceholder(fmt.Sprintf("No games recorded for %s", participant), palette)
	}

	xValues := make([]time.Time, 0, len(history)+1)
	yValues := make([]float64, 0, len(history)+1)
	xValues = append(xValues, history[0].CompletedAt.Add(-24*time.Hour))
	yValues = append(yValues, 0)

	maxWins := 1
	for _, entry := range history {
		xValues = append(xValues, entry.CompletedAt)
		yValues = append(yValues, float64(entry.Wins))
		if entry.Wins > maxWins {
			maxWins = entry.Wins
		}
	}

	mainSeries := chart.TimeSeries{
		Name:    participant,
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: palette.PrimaryLine,
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    palette.AccentLine,
		},
	}

	graph := chart.Chart{
		Title:  participant,
		Width:  800,
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		YAxis: chart.YAxis{
			Name: "Wins",
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(maxWins),
			},
		},
		Series: []chart.Series{mainSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws msg centred on an empty canvas. go-chart
// refuses to render without a visible series, so a transparent one is drawn
// under the text.
func renderNoDataPlaceholder(msg string, palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{Style: chart.Hidden()},
		YAxis: chart.YAxis{Style: chart.Hidden()},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style: chart.Style{
					StrokeColor: drawing.ColorTransparent,
				},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFont(chartDefaults.Font)
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
