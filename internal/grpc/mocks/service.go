package mocks

import (
	"context"
	"errors"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/service"
)

// MockDashboardService is a mock implementation of the DashboardService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockDashboardService struct {
	FilterOptionsFunc   func(ctx context.Context) (service.FilterOptions, error)
	SalesTableFunc      func(ctx context.Context, sel service.Selection) (service.SalesTable, error)
	MonthlyAveragesFunc func(ctx context.Context, sel service.Selection) ([]analytics.AggregatedPoint, error)
	CompareModelsFunc   func(ctx context.Context, sel service.Selection) ([]analytics.ModelError, error)
}

// FilterOptions implements the DashboardService interface
func (m *MockDashboardService) FilterOptions(ctx context.Context) (service.FilterOptions, error) {
	if m.FilterOptionsFunc != nil {
		return m.FilterOptionsFunc(ctx)
	}
	return service.FilterOptions{}, errors.New("FilterOptionsFunc not implemented")
}

// SalesTable implements the DashboardService interface
func (m *MockDashboardService) SalesTable(ctx context.Context, sel service.Selection) (service.SalesTable, error) {
	if m.SalesTableFunc != nil {
		return m.SalesTableFunc(ctx, sel)
	}
	return service.SalesTable{}, errors.New("SalesTableFunc not implemented")
}

// MonthlyAverages implements the DashboardService interface
func (m *MockDashboardService) MonthlyAverages(ctx context.Context, sel service.Selection) ([]analytics.AggregatedPoint, error) {
	if m.MonthlyAveragesFunc != nil {
		return m.MonthlyAveragesFunc(ctx, sel)
	}
	return nil, errors.New("MonthlyAveragesFunc not implemented")
}

// CompareModels implements the DashboardService interface
func (m *MockDashboardService) CompareModels(ctx context.Context, sel service.Selection) ([]analytics.ModelError, error) {
	if m.CompareModelsFunc != nil {
		return m.CompareModelsFunc(ctx, sel)
	}
	return nil, errors.New("CompareModelsFunc not implemented")
}
