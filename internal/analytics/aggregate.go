package analytics

import (
	"errors"
	"slices"
	"time"

	"github.com/ritik2105/market-dashboard/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

var ErrUnknownModel = errors.New("unknown model column")

// AggregatedPoint is the monthly mean of actual and predicted units.
type AggregatedPoint struct {
	Month         time.Time `json:"month"`
	MeanActual    float64   `json:"mean_actual"`
	MeanPredicted float64   `json:"mean_predicted"`
	Count         int       `json:"count"`
}

// MonthStart truncates t to the first day of the calendar month it falls in within
// its own location. The result is expressed in UTC so equal months compare equal.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyAverages groups records by calendar month and averages units sold and the
// prediction at index model. Points are ordered by month ascending.
func MonthlyAverages(records []dataset.Record, model int) ([]AggregatedPoint, error) {
	out := make([]AggregatedPoint, 0)
	if len(records) == 0 {
		return out, nil
	}
	if model < 0 || model >= len(records[0].Predictions) {
		return nil, ErrUnknownModel
	}

	type bucket struct {
		actual    []float64
		predicted []float64
	}
	buckets := make(map[time.Time]*bucket)
	months := make([]time.Time, 0)

	for _, r := range records {
		m := MonthStart(r.Date)
		b, ok := buckets[m]
		if !ok {
			b = &bucket{}
			buckets[m] = b
			months = append(months, m)
		}
		b.actual = append(b.actual, r.UnitsSold)
		b.predicted = append(b.predicted, r.Predictions[model])
	}

	slices.SortFunc(months, time.Time.Compare)

	for _, m := range months {
		b := buckets[m]
		out = append(out, AggregatedPoint{
			Month:         m,
			MeanActual:    stat.Mean(b.actual, nil),
			MeanPredicted: stat.Mean(b.predicted, nil),
			Count:         len(b.actual),
		})
	}
	return out, nil
}
