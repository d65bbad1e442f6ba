package mocks

import (
	"context"
	"errors"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/dataset"
)

// MockRecordRepository is a mock implementation of the RecordRepository interface
// for testing the service layer.
type MockRecordRepository struct {
	SchemaValue        dataset.Schema
	YearsFunc          func(ctx context.Context) ([]int, error)
	EquipmentTypesFunc func(ctx context.Context) ([]string, error)
	FindRecordsFunc    func(ctx context.Context, c analytics.Criteria) ([]dataset.Record, error)
}

// Schema implements the RecordRepository interface
func (m *MockRecordRepository) Schema() dataset.Schema {
	return m.SchemaValue
}

// Years implements the RecordRepository interface
func (m *MockRecordRepository) Years(ctx context.Context) ([]int, error) {
	if m.YearsFunc != nil {
		return m.YearsFunc(ctx)
	}
	return nil, errors.New("YearsFunc not implemented")
}

// EquipmentTypes implements the RecordRepository interface
func (m *MockRecordRepository) EquipmentTypes(ctx context.Context) ([]string, error) {
	if m.EquipmentTypesFunc != nil {
		return m.EquipmentTypesFunc(ctx)
	}
	return nil, errors.New("EquipmentTypesFunc not implemented")
}

// FindRecords implements the RecordRepository interface
func (m *MockRecordRepository) FindRecords(ctx context.Context, c analytics.Criteria) ([]dataset.Record, error) {
	if m.FindRecordsFunc != nil {
		return m.FindRecordsFunc(ctx, c)
	}
	return nil, errors.New("FindRecordsFunc not implemented")
}
