// Package analytics turns aggregated drill history into PNG charts:
// per-note answer latency and per-note success rate, one panel per
// clef, both with error bars.
package analytics

import (
	"bytes"
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/csoneira/solfeo-bot/internal/history"
	"github.com/csoneira/solfeo-bot/internal/music"
)

// ErrNoData is returned when the aggregation has no attempts to chart.
var ErrNoData = errors.New("analytics: no chart data")

// series holds one panel's worth of per-letter values in LetterOrder.
type series struct {
	means []float64
	errs  []float64
}

func (s series) Len() int                        { return len(s.means) }
func (s series) XY(i int) (float64, float64)     { return float64(i), s.means[i] }
func (s series) YError(i int) (float64, float64) { return s.errs[i], s.errs[i] }
func (s series) empty() bool {
	for _, m := range s.means {
		if m != 0 {
			return false
		}
	}
	for _, e := range s.errs {
		if e != 0 {
			return false
		}
	}
	return true
}

func (s series) maxWithErr() float64 {
	var max float64
	for i := range s.means {
		if v := s.means[i] + s.errs[i]; v > max {
			max = v
		}
	}
	return max
}

// timeSeries extracts correct-answer latency means and spreads for one clef.
func timeSeries(agg history.Aggregation, clef music.Clef) series {
	s := series{
		means: make([]float64, len(music.LetterOrder)),
		errs:  make([]float64, len(music.LetterOrder)),
	}
	for i, letter := range music.LetterOrder {
		stats := agg.Get(clef, letter)
		s.means[i] = stats.AvgSeconds
		s.errs[i] = stats.StdSeconds
	}
	return s
}

// successSeries extracts success percentages and their standard errors.
func successSeries(agg history.Aggregation, clef music.Clef) series {
	s := series{
		means: make([]float64, len(music.LetterOrder)),
		errs:  make([]float64, len(music.LetterOrder)),
	}
	for i, letter := range music.LetterOrder {
		stats := agg.Get(clef, letter)
		if stats.Attempts == 0 {
			continue
		}
		s.means[i] = stats.SuccessRate
		s.errs[i] = stats.SuccessSE
	}
	return s
}

// timeYMax gives both latency panels a shared y range so the clefs are
// comparable at a glance. Never below one second.
func timeYMax(panels []series) float64 {
	max := 1.0
	for _, s := range panels {
		if v := s.maxWithErr() * 1.10; v > max {
			max = v
		}
	}
	return max
}

// TimeChart renders the per-note mean answer time, one panel per clef,
// with population standard deviation error bars.
func TimeChart(agg history.Aggregation) ([]byte, error) {
	panels := make([]series, len(music.Clefs))
	for i, clef := range music.Clefs {
		panels[i] = timeSeries(agg, clef)
	}
	if panels[0].empty() && panels[1].empty() {
		return nil, ErrNoData
	}
	yMax := timeYMax(panels)

	plots := make([]*plot.Plot, len(panels))
	for i, clef := range music.Clefs {
		p, err := panel(panels[i], fmt.Sprintf("Mean answer time (%s clef)", clef), "Seconds")
		if err != nil {
			return nil, err
		}
		p.Y.Min = 0
		p.Y.Max = yMax
		plots[i] = p
	}
	return stack(plots)
}

// SuccessChart renders the per-note success rate, one panel per clef,
// with binomial standard error bars on a fixed 0-100 scale.
func SuccessChart(agg history.Aggregation) ([]byte, error) {
	panels := make([]series, len(music.Clefs))
	for i, clef := range music.Clefs {
		panels[i] = successSeries(agg, clef)
	}
	if panels[0].empty() && panels[1].empty() {
		return nil, ErrNoData
	}

	plots := make([]*plot.Plot, len(panels))
	for i, clef := range music.Clefs {
		p, err := panel(panels[i], fmt.Sprintf("Success rate (%s clef)", clef), "Percent")
		if err != nil {
			return nil, err
		}
		p.Y.Min = 0
		p.Y.Max = 100
		plots[i] = p
	}
	return stack(plots)
}

// panel builds one bar-plus-error-bars plot over the letter axis.
func panel(s series, title, yLabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(s.means), vg.Points(24))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.LineStyle.Width = 0
	bars.Offset = 0

	errBars, err := plotter.NewYErrorBars(s)
	if err != nil {
		return nil, fmt.Errorf("error bars: %w", err)
	}

	p.Add(bars, errBars)
	p.NominalX(music.LetterOrder...)
	return p, nil
}

// stack draws the plots in a single column and encodes the canvas as PNG.
func stack(plots []*plot.Plot) ([]byte, error) {
	img := vgimg.New(vg.Points(460), 230*vg.Length(len(plots)))
	dc := draw.New(img)

	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadX: vg.Points(6),
		PadY: vg.Points(6),
	}
	canvases := plot.Align(rows, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[i][0])
	}

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
