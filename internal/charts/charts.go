// Package charts renders the dashboard figures with gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/service"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	Width  = 10 * vg.Inch
	Height = 5 * vg.Inch
)

var ErrNoPoints = errors.New("no data for current selection")

var (
	actualColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	predictedColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	barColor       = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// Forecast draws the monthly mean of actual and predicted units for model.
func Forecast(points []analytics.AggregatedPoint, model string) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	actual := make(plotter.XYs, len(points))
	predicted := make(plotter.XYs, len(points))
	for i, p := range points {
		x := float64(p.Month.Unix())
		actual[i] = plotter.XY{X: x, Y: p.MeanActual}
		predicted[i] = plotter.XY{X: x, Y: p.MeanPredicted}
	}

	p := newTimePlot("Monthly Average Forecast", "Month", "Average units sold", "2006-01")
	if err := addSeries(p, actual, "Actual", actualColor); err != nil {
		return nil, err
	}
	if err := addSeries(p, predicted, model, predictedColor); err != nil {
		return nil, err
	}
	return p, nil
}

// Overview draws every selected record's units sold against the model's prediction.
func Overview(table service.SalesTable) (*plot.Plot, error) {
	if table.Empty() {
		return nil, ErrNoPoints
	}

	actual := make(plotter.XYs, len(table.Rows))
	predicted := make(plotter.XYs, len(table.Rows))
	for i, r := range table.Rows {
		x := float64(r.Date.Unix())
		actual[i] = plotter.XY{X: x, Y: r.UnitsSold}
		predicted[i] = plotter.XY{X: x, Y: r.Predicted}
	}

	title := fmt.Sprintf("Actual vs %s for %s", table.Model, table.EquipmentType)
	p := newTimePlot(title, "Date", "Units sold", "2006-01-02")
	if err := addSeries(p, actual, "Actual", actualColor); err != nil {
		return nil, err
	}
	if err := addSeries(p, predicted, table.Model, predictedColor); err != nil {
		return nil, err
	}
	return p, nil
}

// ModelErrors draws one bar per model, in the order given.
func ModelErrors(errs []analytics.ModelError) (*plot.Plot, error) {
	if len(errs) == 0 {
		return nil, ErrNoPoints
	}

	values := make(plotter.Values, len(errs))
	names := make([]string, len(errs))
	for i, e := range errs {
		values[i] = e.MAE
		names[i] = e.Model
	}

	p := plot.New()
	p.Title.Text = "Mean Absolute Error by Model"
	p.X.Label.Text = "Model"
	p.Y.Label.Text = "MAE"

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0

	p.Add(plotter.NewGrid(), bars)
	p.NominalX(names...)
	return p, nil
}

// WritePNG encodes p as a Width x Height PNG.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func newTimePlot(title, xLabel, yLabel, tickFormat string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: tickFormat}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func addSeries(p *plot.Plot, xys plotter.XYs, name string, c color.Color) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("series %q: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	points.Shape = draw.CircleGlyph{}
	points.Color = c

	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}
