package grpc

import (
	"context"
	"time"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type DashboardService interface {
	FilterOptions(ctx context.Context) (service.FilterOptions, error)
	SalesTable(ctx context.Context, sel service.Selection) (service.SalesTable, error)
	MonthlyAverages(ctx context.Context, sel service.Selection) ([]analytics.AggregatedPoint, error)
	CompareModels(ctx context.Context, sel service.Selection) ([]analytics.ModelError, error)
}
