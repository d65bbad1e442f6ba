package analytics

import (
	"errors"
	"slices"

	"github.com/ritik2105/market-dashboard/internal/dataset"
)

var ErrInvalidCriteria = errors.New("invalid filter criteria")

// Criteria is the user's current selection. It is built once per interaction
// and never modified afterwards.
type Criteria struct {
	years         []int
	yearSet       map[int]struct{}
	equipmentType string
	model         string
}

// NewCriteria validates and freezes a selection. Years are de-duplicated and sorted.
func NewCriteria(years []int, equipmentType, model string) (Criteria, error) {
	if len(years) == 0 {
		return Criteria{}, errors.Join(ErrInvalidCriteria, errors.New("at least one year is required"))
	}
	if equipmentType == "" {
		return Criteria{}, errors.Join(ErrInvalidCriteria, errors.New("equipment type is required"))
	}

	sorted := slices.Clone(years)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	set := make(map[int]struct{}, len(sorted))
	for _, y := range sorted {
		set[y] = struct{}{}
	}

	return Criteria{
		years:         sorted,
		yearSet:       set,
		equipmentType: equipmentType,
		model:         model,
	}, nil
}

// Years returns the selected years in ascending order.
func (c Criteria) Years() []int {
	return slices.Clone(c.years)
}

func (c Criteria) EquipmentType() string {
	return c.equipmentType
}

func (c Criteria) Model() string {
	return c.model
}

// Matches reports whether r satisfies both predicates of the selection.
func (c Criteria) Matches(r dataset.Record) bool {
	if r.EquipmentType != c.equipmentType {
		return false
	}
	_, ok := c.yearSet[r.Year]
	return ok
}

// Filter returns the records matching c, in source order. The input is not modified
// and an empty, non-nil slice is returned when nothing matches.
func Filter(records []dataset.Record, c Criteria) []dataset.Record {
	out := make([]dataset.Record, 0)
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
