package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/dataset"
	"github.com/ritik2105/market-dashboard/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const fixture = `Date,Year,Equipment Type,Units sold,Prediction_A,Prediction_B
2023-02-14,2023,Tractor,80,85,82
2023-01-05,2023,Tractor,100,110,98
2023-01-20,2023,Tractor,120,110,121
2023-02-14,2023,Baler,10,12,9
2022-03-03,2022,Baler,7,7,7
`

func loadFixture(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.ReadCSV("fixture.csv", strings.NewReader(fixture))
	require.NoError(t, err)
	return table
}

// newRepo returns a mock that filters the fixture table in memory.
func newRepo(t *testing.T) *mocks.MockRecordRepository {
	table := loadFixture(t)
	return &mocks.MockRecordRepository{
		SchemaValue: table.Schema(),
		YearsFunc: func(ctx context.Context) ([]int, error) {
			return table.Years(), nil
		},
		EquipmentTypesFunc: func(ctx context.Context) ([]string, error) {
			return table.EquipmentTypes(), nil
		},
		FindRecordsFunc: func(ctx context.Context, c analytics.Criteria) ([]dataset.Record, error) {
			return analytics.Filter(table.Records(), c), nil
		},
	}
}

func tractors2023(model string) Selection {
	return Selection{Years: []int{2023}, EquipmentType: "Tractor", Model: model}
}

func TestNewDashboardService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockRepo := &mocks.MockRecordRepository{}
		logger := zap.NewNop()

		service := NewDashboardService(mockRepo, logger)

		assert.NotNil(t, service)
		assert.Equal(t, mockRepo, service.storage)
		assert.Equal(t, logger, service.logger)
		assert.NotNil(t, service.validate)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewDashboardService(nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		service := NewDashboardService(&mocks.MockRecordRepository{}, nil)

		assert.NotNil(t, service.logger)
	})
}

func TestParseExportFormat(t *testing.T) {
	testCases := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"pdf", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseExportFormat(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFilterOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the latest year", func(t *testing.T) {
		service := NewDashboardService(newRepo(t), zap.NewNop())

		opts, err := service.FilterOptions(ctx)

		require.NoError(t, err)
		assert.Equal(t, []int{2022, 2023}, opts.Years)
		assert.Equal(t, []int{2023}, opts.DefaultYears)
		assert.Equal(t, []string{"Baler", "Tractor"}, opts.EquipmentTypes)
		assert.Equal(t, []string{"Prediction_A", "Prediction_B"}, opts.Models)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := newRepo(t)
		repo.YearsFunc = func(ctx context.Context) ([]int, error) {
			return nil, errors.New("disk on fire")
		}
		service := NewDashboardService(repo, zap.NewNop())

		_, err := service.FilterOptions(ctx)

		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestSalesTable(t *testing.T) {
	ctx := context.Background()
	service := NewDashboardService(newRepo(t), zap.NewNop())

	t.Run("rows sorted by date with the chosen prediction", func(t *testing.T) {
		table, err := service.SalesTable(ctx, tractors2023("Prediction_B"))

		require.NoError(t, err)
		assert.Equal(t, "Prediction_B", table.Model)
		assert.Equal(t, "Tractor", table.EquipmentType)
		require.Len(t, table.Rows, 3)
		assert.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), table.Rows[0].Date)
		assert.Equal(t, 98.0, table.Rows[0].Predicted)
		assert.Equal(t, 121.0, table.Rows[1].Predicted)
		assert.Equal(t, 80.0, table.Rows[2].UnitsSold)
	})

	t.Run("empty selection is not an error", func(t *testing.T) {
		table, err := service.SalesTable(ctx, Selection{Years: []int{2022}, EquipmentType: "Tractor", Model: "Prediction_A"})

		require.NoError(t, err)
		assert.True(t, table.Empty())
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := service.SalesTable(ctx, tractors2023("Prediction_Z"))

		assert.ErrorIs(t, err, ErrUnknownModel)
	})
}

func TestSelectionValidation(t *testing.T) {
	ctx := context.Background()
	service := NewDashboardService(newRepo(t), zap.NewNop())

	testCases := []struct {
		name string
		sel  Selection
	}{
		{"no years", Selection{EquipmentType: "Tractor", Model: "Prediction_A"}},
		{"empty years", Selection{Years: []int{}, EquipmentType: "Tractor", Model: "Prediction_A"}},
		{"non-positive year", Selection{Years: []int{0}, EquipmentType: "Tractor", Model: "Prediction_A"}},
		{"no equipment type", Selection{Years: []int{2023}, Model: "Prediction_A"}},
		{"no model", Selection{Years: []int{2023}, EquipmentType: "Tractor"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.MonthlyAverages(ctx, tc.sel)
			assert.ErrorIs(t, err, ErrInvalidSelection)
		})
	}
}

func TestMonthlyAverages(t *testing.T) {
	ctx := context.Background()

	t.Run("one point per month", func(t *testing.T) {
		service := NewDashboardService(newRepo(t), zap.NewNop())

		points, err := service.MonthlyAverages(ctx, tractors2023("Prediction_A"))

		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, 110.0, points[0].MeanActual)
		assert.Equal(t, 110.0, points[0].MeanPredicted)
		assert.Equal(t, 80.0, points[1].MeanActual)
		assert.Equal(t, 85.0, points[1].MeanPredicted)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := newRepo(t)
		repo.FindRecordsFunc = func(ctx context.Context, c analytics.Criteria) ([]dataset.Record, error) {
			return nil, context.DeadlineExceeded
		}
		service := NewDashboardService(repo, zap.NewNop())

		_, err := service.MonthlyAverages(ctx, tractors2023("Prediction_A"))

		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestCompareModels(t *testing.T) {
	ctx := context.Background()
	service := NewDashboardService(newRepo(t), zap.NewNop())

	t.Run("ranked best first", func(t *testing.T) {
		errs, err := service.CompareModels(ctx, tractors2023("Prediction_A"))

		require.NoError(t, err)
		require.Len(t, errs, 2)
		assert.Equal(t, "Prediction_B", errs[0].Model)
		assert.InDelta(t, 5.0/3.0, errs[0].MAE, 1e-9)
		assert.Equal(t, "Prediction_A", errs[1].Model)
		assert.InDelta(t, 25.0/3.0, errs[1].MAE, 1e-9)
	})

	t.Run("model is not needed", func(t *testing.T) {
		withModel, err := service.CompareModels(ctx, tractors2023("Prediction_A"))
		require.NoError(t, err)
		withoutModel, err := service.CompareModels(ctx, tractors2023(""))
		require.NoError(t, err)
		unknownModel, err := service.CompareModels(ctx, tractors2023("Prediction_Z"))
		require.NoError(t, err)

		assert.Equal(t, withModel, withoutModel)
		assert.Equal(t, withModel, unknownModel)
	})

	t.Run("empty selection", func(t *testing.T) {
		errs, err := service.CompareModels(ctx, Selection{Years: []int{2019}, EquipmentType: "Tractor", Model: "Prediction_A"})

		assert.ErrorIs(t, err, ErrNoData)
		assert.Nil(t, errs)
	})
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	service := NewDashboardService(newRepo(t), zap.NewNop())

	t.Run("csv keeps every column and source order", func(t *testing.T) {
		var buf bytes.Buffer

		err := service.Export(ctx, tractors2023("Prediction_A"), FormatCSV, &buf)

		require.NoError(t, err)
		assert.Equal(t, `Date,Year,Equipment Type,Units sold,Prediction_A,Prediction_B
2023-02-14,2023,Tractor,80,85,82
2023-01-05,2023,Tractor,100,110,98
2023-01-20,2023,Tractor,120,110,121
`, buf.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer

		err := service.Export(ctx, tractors2023("Prediction_A"), FormatXLSX, &buf)
		require.NoError(t, err)

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(dataset.ExportSheet)
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("empty selection writes only the header", func(t *testing.T) {
		var buf bytes.Buffer

		err := service.Export(ctx, Selection{Years: []int{2022}, EquipmentType: "Tractor", Model: "Prediction_A"}, FormatCSV, &buf)

		require.NoError(t, err)
		assert.Equal(t, "Date,Year,Equipment Type,Units sold,Prediction_A,Prediction_B\n", buf.String())
	})

	t.Run("model is not needed", func(t *testing.T) {
		var withModel, withoutModel bytes.Buffer

		require.NoError(t, service.Export(ctx, tractors2023("Prediction_A"), FormatCSV, &withModel))
		require.NoError(t, service.Export(ctx, tractors2023(""), FormatCSV, &withoutModel))

		assert.Equal(t, withModel.String(), withoutModel.String())
	})

	t.Run("invalid selection", func(t *testing.T) {
		err := service.Export(ctx, Selection{EquipmentType: "Tractor"}, FormatCSV, &bytes.Buffer{})

		assert.ErrorIs(t, err, ErrInvalidSelection)
	})

	t.Run("unsupported format", func(t *testing.T) {
		err := service.Export(ctx, tractors2023("Prediction_A"), ExportFormat("pdf"), &bytes.Buffer{})

		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}
