package httpapi

import (
	"context"
	"io"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/service"
)

type DashboardService interface {
	SalesTable(ctx context.Context, sel service.Selection) (service.SalesTable, error)
	MonthlyAverages(ctx context.Context, sel service.Selection) ([]analytics.AggregatedPoint, error)
	CompareModels(ctx context.Context, sel service.Selection) ([]analytics.ModelError, error)
	Export(ctx context.Context, sel service.Selection, format service.ExportFormat, w io.Writer) error
}
