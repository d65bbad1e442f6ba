package service

import (
	"context"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/dataset"
)

// RecordRepository defines the record lookups the service needs.
type RecordRepository interface {
	Schema() dataset.Schema
	Years(ctx context.Context) ([]int, error)
	EquipmentTypes(ctx context.Context) ([]string, error)
	FindRecords(ctx context.Context, c analytics.Criteria) ([]dataset.Record, error)
}
