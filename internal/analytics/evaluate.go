package analytics

import (
	"errors"
	"math"
	"sort"

	"github.com/ritik2105/market-dashboard/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptySelection is returned instead of a NaN when there is nothing to evaluate.
	ErrEmptySelection = errors.New("no records to evaluate")
	ErrNoModels       = errors.New("no model columns to evaluate")
)

// ModelError is the mean absolute error of one prediction column.
type ModelError struct {
	Model string  `json:"model"`
	MAE   float64 `json:"mae"`
}

// Evaluate computes the mean absolute error of every model against units sold.
// models[i] names Predictions[i]. The result is sorted by MAE ascending; ties keep
// column order.
func Evaluate(records []dataset.Record, models []string) ([]ModelError, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	if len(records) == 0 {
		return nil, ErrEmptySelection
	}
	if len(models) > len(records[0].Predictions) {
		return nil, ErrUnknownModel
	}

	out := make([]ModelError, len(models))
	diffs := make([]float64, len(records))
	for m, name := range models {
		for i, r := range records {
			diffs[i] = math.Abs(r.UnitsSold - r.Predictions[m])
		}
		out[m] = ModelError{Model: name, MAE: stat.Mean(diffs, nil)}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MAE < out[j].MAE
	})
	return out, nil
}
