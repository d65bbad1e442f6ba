package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DateLayout is the layout used when a date has to be rendered back into a cell.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
}

type Options struct {
	ModelPrefix string
	Sheet       string
}

type Option func(*Options)

// WithModelPrefix sets the column-name prefix that marks a prediction column.
func WithModelPrefix(prefix string) Option {
	return func(o *Options) {
		if prefix != "" {
			o.ModelPrefix = prefix
		}
	}
}

// WithSheet selects the worksheet read from an .xlsx file.
func WithSheet(sheet string) Option {
	return func(o *Options) { o.Sheet = sheet }
}

func newOptions(opts []Option) *Options {
	options := &Options{ModelPrefix: DefaultModelPrefix}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Load reads the file at path into a Table. Files ending in .xlsx are read as
// workbooks, anything else as CSV. Any failure is returned as a *LoadError and
// no partial table is produced.
func Load(path string, opts ...Option) (*Table, error) {
	options := newOptions(opts)

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := readSheet(path, options.Sheet)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrFileUnreadable, err)}
		}
		return decode(path, rows, options, true)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrFileUnreadable, err)}
	}
	defer f.Close()

	return readCSV(path, f, options)
}

// ReadCSV decodes CSV content from r. name is only used in error messages.
func ReadCSV(name string, r io.Reader, opts ...Option) (*Table, error) {
	return readCSV(name, r, newOptions(opts))
}

func readCSV(name string, r io.Reader, options *Options) (*Table, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("%w: %v", ErrFileUnreadable, err)}
	}
	return decode(name, rows, options, false)
}

func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func decode(path string, rows [][]string, options *Options, fromSheet bool) (*Table, error) {
	if len(rows) == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: empty file", ErrFileUnreadable)}
	}

	schema, err := buildSchema(path, rows[0], options.ModelPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		rec, err := decodeRow(schema, row, fromSheet)
		if err != nil {
			err.Path = path
			err.Line = line
			return nil, err
		}
		records = append(records, rec)
	}

	return NewTable(schema, records), nil
}

func buildSchema(path string, header []string, prefix string) (Schema, error) {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	}

	schema := Schema{Columns: columns, Models: make([]string, 0)}

	for _, req := range []struct {
		name string
		dst  *int
	}{
		{ColumnDate, &schema.dateIdx},
		{ColumnYear, &schema.yearIdx},
		{ColumnEquipmentType, &schema.typeIdx},
		{ColumnUnitsSold, &schema.unitsIdx},
	} {
		idx := slices.Index(columns, req.name)
		if idx < 0 {
			return Schema{}, &LoadError{Path: path, Column: req.name, Err: ErrMissingColumn}
		}
		*req.dst = idx
	}

	for i, c := range columns {
		if strings.HasPrefix(c, prefix) {
			schema.Models = append(schema.Models, c)
			schema.modelIdxs = append(schema.modelIdxs, i)
		}
	}
	if len(schema.Models) == 0 {
		return Schema{}, &LoadError{Path: path, Err: fmt.Errorf("%w: prefix %q", ErrNoModelColumns, prefix)}
	}

	return schema, nil
}

func decodeRow(schema Schema, row []string, fromSheet bool) (Record, *LoadError) {
	raw := make([]string, len(schema.Columns))
	copy(raw, row)

	date, err := parseDate(raw[schema.dateIdx], fromSheet)
	if err != nil {
		return Record{}, &LoadError{Column: ColumnDate, Err: err}
	}
	if fromSheet {
		// serial dates are normalised so an export reloads to the same record
		raw[schema.dateIdx] = date.Format(DateLayout)
	}

	equipment := strings.TrimSpace(raw[schema.typeIdx])
	if equipment == "" {
		return Record{}, &LoadError{Column: ColumnEquipmentType, Err: ErrMissingValue}
	}

	year := date.Year()
	if cell := strings.TrimSpace(raw[schema.yearIdx]); cell != "" {
		year, err = parseYear(cell)
		if err != nil {
			return Record{}, &LoadError{Column: ColumnYear, Err: err}
		}
	}

	units, err := parseNumber(raw[schema.unitsIdx])
	if err != nil {
		return Record{}, &LoadError{Column: ColumnUnitsSold, Err: err}
	}

	predictions := make([]float64, len(schema.modelIdxs))
	for i, idx := range schema.modelIdxs {
		v, err := parseNumber(raw[idx])
		if err != nil {
			return Record{}, &LoadError{Column: schema.Models[i], Err: err}
		}
		predictions[i] = v
	}

	return Record{
		Date:          date,
		Year:          year,
		EquipmentType: equipment,
		UnitsSold:     units,
		Predictions:   predictions,
		Raw:           raw,
	}, nil
}

func parseDate(cell string, fromSheet bool) (time.Time, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, ErrMissingValue
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return wallClock(t), nil
		}
	}
	if fromSheet {
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err == nil {
				return t.UTC(), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// wallClock keeps the local date and time written in the cell and drops its offset,
// so the month and year of a record are those of the source text.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, s)
	}
	return int(f), nil
}

func parseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, ErrMissingValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
