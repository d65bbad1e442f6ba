package mocks

import (
	"context"
	"errors"
	"io"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/service"
)

// MockDashboardService is a function-field mock of the HTTP layer's DashboardService.
type MockDashboardService struct {
	SalesTableFunc      func(ctx context.Context, sel service.Selection) (service.SalesTable, error)
	MonthlyAveragesFunc func(ctx context.Context, sel service.Selection) ([]analytics.AggregatedPoint, error)
	CompareModelsFunc   func(ctx context.Context, sel service.Selection) ([]analytics.ModelError, error)
	ExportFunc          func(ctx context.Context, sel service.Selection, format service.ExportFormat, w io.Writer) error
}

func (m *MockDashboardService) SalesTable(ctx context.Context, sel service.Selection) (service.SalesTable, error) {
	if m.SalesTableFunc != nil {
		return m.SalesTableFunc(ctx, sel)
	}
	return service.SalesTable{}, errors.New("SalesTableFunc not implemented")
}

func (m *MockDashboardService) MonthlyAverages(ctx context.Context, sel service.Selection) ([]analytics.AggregatedPoint, error) {
	if m.MonthlyAveragesFunc != nil {
		return m.MonthlyAveragesFunc(ctx, sel)
	}
	return nil, errors.New("MonthlyAveragesFunc not implemented")
}

func (m *MockDashboardService) CompareModels(ctx context.Context, sel service.Selection) ([]analytics.ModelError, error) {
	if m.CompareModelsFunc != nil {
		return m.CompareModelsFunc(ctx, sel)
	}
	return nil, errors.New("CompareModelsFunc not implemented")
}

func (m *MockDashboardService) Export(ctx context.Context, sel service.Selection, format service.ExportFormat, w io.Writer) error {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, sel, format, w)
	}
	return errors.New("ExportFunc not implemented")
}
