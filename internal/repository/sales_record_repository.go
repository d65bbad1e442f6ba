package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/dataset"
	"github.com/ritik2105/market-dashboard/internal/repository/models"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS sales_records (
		id INTEGER PRIMARY KEY,
		sale_date TEXT NOT NULL,
		year INTEGER NOT NULL,
		equipment_type TEXT NOT NULL,
		units_sold REAL NOT NULL,
		predictions TEXT NOT NULL,
		raw TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sales_records_type_year
		ON sales_records (equipment_type, year);
`

// SalesRecordRepository mirrors a loaded table into SQL and answers filters with queries.
type SalesRecordRepository struct {
	db     *sql.DB
	schema dataset.Schema
}

func NewSalesRecordRepository(db *sql.DB, schema dataset.Schema) *SalesRecordRepository {
	return &SalesRecordRepository{db: db, schema: schema}
}

// Migrate creates the tables if they do not exist.
func (s *SalesRecordRepository) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate sales_records: %w", err)
	}
	return nil
}

// Import replaces the mirrored rows with records inside a single transaction.
// Row ids follow the slice order so queries can return records in source order.
func (s *SalesRecordRepository) Import(ctx context.Context, records []dataset.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales_records`); err != nil {
		return fmt.Errorf("clear sales_records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_records (id, sale_date, year, equipment_type, units_sold, predictions, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		row, err := toRow(int64(i+1), r)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row.ID, row.SaleDate, row.Year, row.EquipmentType, row.UnitsSold, row.Predictions, row.Raw); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func (s *SalesRecordRepository) Schema() dataset.Schema {
	return s.schema
}

// Years returns the distinct years in ascending order.
func (s *SalesRecordRepository) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM sales_records ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("query Years: %w", err)
	}
	defer rows.Close()

	years := make([]int, 0)
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan Years row: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate Years: %w", err)
	}
	return years, nil
}

// EquipmentTypes returns the distinct equipment types in ascending order.
func (s *SalesRecordRepository) EquipmentTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT equipment_type FROM sales_records ORDER BY equipment_type`)
	if err != nil {
		return nil, fmt.Errorf("query EquipmentTypes: %w", err)
	}
	defer rows.Close()

	types := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan EquipmentTypes row: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate EquipmentTypes: %w", err)
	}
	return types, nil
}

// FindRecords returns the records matching c in source order.
func (s *SalesRecordRepository) FindRecords(ctx context.Context, c analytics.Criteria) ([]dataset.Record, error) {
	years := c.Years()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(years)), ",")

	query := `
		SELECT id, sale_date, year, equipment_type, units_sold, predictions, raw
		FROM sales_records
		WHERE equipment_type = ? AND year IN (` + placeholders + `)
		ORDER BY id
	`

	args := make([]any, 0, len(years)+1)
	args = append(args, c.EquipmentType())
	for _, y := range years {
		args = append(args, y)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query FindRecords: %w", err)
	}
	defer rows.Close()

	records := make([]dataset.Record, 0)
	for rows.Next() {
		var row models.SalesRecordRow
		if err := rows.Scan(&row.ID, &row.SaleDate, &row.Year, &row.EquipmentType, &row.UnitsSold, &row.Predictions, &row.Raw); err != nil {
			return nil, fmt.Errorf("scan FindRecords row: %w", err)
		}
		r, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate FindRecords: %w", err)
	}
	return records, nil
}

func toRow(id int64, r dataset.Record) (models.SalesRecordRow, error) {
	preds, err := json.Marshal(r.Predictions)
	if err != nil {
		return models.SalesRecordRow{}, fmt.Errorf("encode predictions: %w", err)
	}
	raw, err := json.Marshal(r.Raw)
	if err != nil {
		return models.SalesRecordRow{}, fmt.Errorf("encode raw cells: %w", err)
	}
	return models.SalesRecordRow{
		ID:            id,
		SaleDate:      r.Date.UTC().Format(time.RFC3339Nano),
		Year:          r.Year,
		EquipmentType: r.EquipmentType,
		UnitsSold:     r.UnitsSold,
		Predictions:   string(preds),
		Raw:           string(raw),
	}, nil
}

func fromRow(row models.SalesRecordRow) (dataset.Record, error) {
	date, err := time.Parse(time.RFC3339Nano, row.SaleDate)
	if err != nil {
		return dataset.Record{}, fmt.Errorf("decode sale_date of row %d: %w", row.ID, err)
	}

	r := dataset.Record{
		Date:          date.UTC(),
		Year:          row.Year,
		EquipmentType: row.EquipmentType,
		UnitsSold:     row.UnitsSold,
	}
	if err := json.Unmarshal([]byte(row.Predictions), &r.Predictions); err != nil {
		return dataset.Record{}, fmt.Errorf("decode predictions of row %d: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Raw), &r.Raw); err != nil {
		return dataset.Record{}, fmt.Errorf("decode raw cells of row %d: %w", row.ID, err)
	}
	return r, nil
}
