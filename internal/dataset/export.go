package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the worksheet name used for .xlsx exports.
const ExportSheet = "Filtered Data"

// WriteCSV writes the schema header followed by each record's raw cells.
// Reading the output back with ReadCSV yields the same records in the same order.
func WriteCSV(w io.Writer, schema Schema, records []Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(schema.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range records {
		if err := writer.Write(r.Raw); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the same content as WriteCSV into a single-sheet workbook.
// Units sold and prediction columns are stored as numbers.
func WriteXLSX(w io.Writer, schema Schema, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(schema.Columns))
	for i, c := range schema.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	numeric := make(map[int]int, len(schema.modelIdxs)+1)
	numeric[schema.unitsIdx] = -1
	for m, idx := range schema.modelIdxs {
		numeric[idx] = m
	}

	for i, r := range records {
		row := make([]any, len(r.Raw))
		for j, cell := range r.Raw {
			m, ok := numeric[j]
			switch {
			case !ok:
				row[j] = cell
			case m < 0:
				row[j] = r.UnitsSold
			default:
				row[j] = r.Predictions[m]
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExportSheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
