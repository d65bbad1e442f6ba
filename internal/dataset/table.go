package dataset

import (
	"fmt"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Column names recognised in the source file.
const (
	ColumnDate          = "Date"
	ColumnYear          = "Year"
	ColumnEquipmentType = "Equipment Type"
	ColumnUnitsSold     = "Units sold"

	DefaultModelPrefix = "Prediction_"
)

// Schema describes the columns of a loaded file. It is resolved once at load time.
type Schema struct {
	Columns []string
	Models  []string

	dateIdx   int
	yearIdx   int
	typeIdx   int
	unitsIdx  int
	modelIdxs []int
}

// ModelIndex returns the position of model in Models, or -1.
func (s Schema) ModelIndex(model string) int {
	return slices.Index(s.Models, model)
}

// HasModel reports whether model is one of the discovered prediction columns.
func (s Schema) HasModel(model string) bool {
	return s.ModelIndex(model) >= 0
}

// Record is one row of the source table.
type Record struct {
	Date          time.Time
	Year          int
	EquipmentType string
	UnitsSold     float64
	// Predictions is aligned with Schema.Models.
	Predictions []float64
	// Raw holds the row's cells in Schema.Columns order.
	Raw []string
}

// Prediction returns the value for the model at index i.
func (r Record) Prediction(i int) float64 {
	return r.Predictions[i]
}

// Table is the read-only, in-memory result of a load.
type Table struct {
	schema         Schema
	records        []Record
	years          []int
	equipmentTypes []string
	fingerprint    string
}

// NewTable builds a table handle and resolves the distinct years and equipment types.
func NewTable(schema Schema, records []Record) *Table {
	years := make([]int, 0)
	types := make([]string, 0)
	seenYear := make(map[int]struct{})
	seenType := make(map[string]struct{})

	for _, r := range records {
		if _, ok := seenYear[r.Year]; !ok {
			seenYear[r.Year] = struct{}{}
			years = append(years, r.Year)
		}
		if _, ok := seenType[r.EquipmentType]; !ok {
			seenType[r.EquipmentType] = struct{}{}
			types = append(types, r.EquipmentType)
		}
	}
	slices.Sort(years)
	slices.Sort(types)

	return &Table{
		schema:         schema,
		records:        records,
		years:          years,
		equipmentTypes: types,
		fingerprint:    fingerprint(schema, records),
	}
}

// fingerprint hashes the header and every raw cell. Cells are separated by 0x1f
// and rows by 0x1e so shifting a value between cells changes the digest.
func fingerprint(schema Schema, records []Record) string {
	d := xxhash.New()
	for _, c := range schema.Columns {
		_, _ = d.WriteString(c)
		_, _ = d.WriteString("\x1f")
	}
	for _, r := range records {
		_, _ = d.WriteString("\x1e")
		for _, c := range r.Raw {
			_, _ = d.WriteString(c)
			_, _ = d.WriteString("\x1f")
		}
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

func (t *Table) Schema() Schema {
	return t.schema
}

// Records returns a copy of the record slice; the records themselves must be treated as read-only.
func (t *Table) Records() []Record {
	return slices.Clone(t.records)
}

// Fingerprint identifies the table's content. Two loads of the same file agree;
// any change to a header or cell yields a different value.
func (t *Table) Fingerprint() string {
	return t.fingerprint
}

func (t *Table) Len() int {
	return len(t.records)
}

// Years returns the distinct years in ascending order.
func (t *Table) Years() []int {
	return slices.Clone(t.years)
}

// EquipmentTypes returns the distinct equipment types in ascending order.
func (t *Table) EquipmentTypes() []string {
	return slices.Clone(t.equipmentTypes)
}
