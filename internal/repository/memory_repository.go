package repository

import (
	"context"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/dataset"
)

// MemoryRepository serves records straight from the loaded table.
type MemoryRepository struct {
	table *dataset.Table
}

func NewMemoryRepository(table *dataset.Table) *MemoryRepository {
	if table == nil {
		panic("table must not be nil")
	}
	return &MemoryRepository{table: table}
}

func (m *MemoryRepository) Schema() dataset.Schema {
	return m.table.Schema()
}

func (m *MemoryRepository) Years(ctx context.Context) ([]int, error) {
	return m.table.Years(), nil
}

func (m *MemoryRepository) EquipmentTypes(ctx context.Context) ([]string, error) {
	return m.table.EquipmentTypes(), nil
}

func (m *MemoryRepository) FindRecords(ctx context.Context, c analytics.Criteria) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analytics.Filter(m.table.Records(), c), nil
}
