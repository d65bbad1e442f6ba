package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/dataset"
	"github.com/ritik2105/market-dashboard/internal/metrics"
	"go.uber.org/zap"
)

const (
	dbTimeout = 1 * time.Second
)

const (
	opFilterOptions   = "filter_options"
	opSalesTable      = "sales_table"
	opMonthlyAverages = "monthly_averages"
	opCompareModels   = "compare_models"
	opExport          = "export"
)

var (
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrUnknownModel      = analytics.ErrUnknownModel
	ErrNoData            = errors.New("no data for current selection")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrStorageFailure    = errors.New("storage failure")
)

// DashboardService answers every view of the dashboard from the loaded records.
type DashboardService struct {
	storage  RecordRepository
	logger   *zap.Logger
	validate *validator.Validate
}

// NewDashboardService creates a new DashboardService instance.
func NewDashboardService(storage RecordRepository, logger *zap.Logger) *DashboardService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &DashboardService{
		storage:  storage,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ParseExportFormat maps a user-supplied format name to an ExportFormat. Empty means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// filterCriteria validates the years and equipment type of sel.
func (s *DashboardService) filterCriteria(sel Selection) (analytics.Criteria, error) {
	if err := s.validate.Struct(sel); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return analytics.Criteria{}, fmt.Errorf("%w: %s", ErrInvalidSelection, strings.Join(fields, ", "))
		}
		return analytics.Criteria{}, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}

	c, err := analytics.NewCriteria(sel.Years, sel.EquipmentType, sel.Model)
	if err != nil {
		return analytics.Criteria{}, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	return c, nil
}

// criteria is filterCriteria plus the index of the required model column.
func (s *DashboardService) criteria(sel Selection) (analytics.Criteria, int, error) {
	c, err := s.filterCriteria(sel)
	if err != nil {
		return analytics.Criteria{}, -1, err
	}
	if strings.TrimSpace(sel.Model) == "" {
		return analytics.Criteria{}, -1, fmt.Errorf("%w: Model failed required", ErrInvalidSelection)
	}

	model := s.storage.Schema().ModelIndex(sel.Model)
	if model < 0 {
		return analytics.Criteria{}, -1, fmt.Errorf("%w: %q", ErrUnknownModel, sel.Model)
	}
	return c, model, nil
}

func (s *DashboardService) records(ctx context.Context, op string, c analytics.Criteria) ([]dataset.Record, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	records, err := s.storage.FindRecords(dbCtx, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(records) == 0 {
		metrics.EmptySelectionsTotal.WithLabelValues(op).Inc()
		s.logger.Info("selection matched no records",
			zap.String("op", op),
			zap.Ints("years", c.Years()),
			zap.String("equipment_type", c.EquipmentType()))
	}
	return records, nil
}

// FilterOptions returns the values the year, equipment type and model selectors offer.
// The default year selection is the most recent year.
func (s *DashboardService) FilterOptions(ctx context.Context) (opts FilterOptions, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(opFilterOptions, start, err) }(time.Now())

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	years, err := s.storage.Years(dbCtx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	types, err := s.storage.EquipmentTypes(dbCtx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	defaults := make([]int, 0, 1)
	if len(years) > 0 {
		defaults = append(defaults, years[len(years)-1])
	}

	return FilterOptions{
		Years:          years,
		DefaultYears:   defaults,
		EquipmentTypes: types,
		Models:         slices.Clone(s.storage.Schema().Models),
	}, nil
}

// SalesTable returns the selected records with the chosen model's prediction, sorted by date.
func (s *DashboardService) SalesTable(ctx context.Context, sel Selection) (table SalesTable, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(opSalesTable, start, err) }(time.Now())

	c, model, err := s.criteria(sel)
	if err != nil {
		return SalesTable{}, err
	}
	records, err := s.records(ctx, opSalesTable, c)
	if err != nil {
		return SalesTable{}, err
	}

	rows := make([]SalesRow, len(records))
	for i, r := range records {
		rows[i] = SalesRow{
			Date:          r.Date,
			EquipmentType: r.EquipmentType,
			UnitsSold:     r.UnitsSold,
			Predicted:     r.Prediction(model),
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	return SalesTable{
		Model:         sel.Model,
		EquipmentType: sel.EquipmentType,
		Rows:          rows,
	}, nil
}

// MonthlyAverages returns the per-month mean of actual and predicted units.
// An empty selection yields an empty slice, not an error.
func (s *DashboardService) MonthlyAverages(ctx context.Context, sel Selection) (points []analytics.AggregatedPoint, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(opMonthlyAverages, start, err) }(time.Now())

	c, model, err := s.criteria(sel)
	if err != nil {
		return nil, err
	}
	records, err := s.records(ctx, opMonthlyAverages, c)
	if err != nil {
		return nil, err
	}

	points, err = analytics.MonthlyAverages(records, model)
	if err != nil {
		return nil, fmt.Errorf("monthly averages: %w", err)
	}

	s.logger.Debug("computed monthly averages",
		zap.String("model", sel.Model),
		zap.Int("records", len(records)),
		zap.Int("months", len(points)))

	return points, nil
}

// CompareModels ranks every prediction column by mean absolute error, best first.
// sel.Model is ignored.
func (s *DashboardService) CompareModels(ctx context.Context, sel Selection) (errs []analytics.ModelError, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(opCompareModels, start, err) }(time.Now())

	c, err := s.filterCriteria(sel)
	if err != nil {
		return nil, err
	}
	records, err := s.records(ctx, opCompareModels, c)
	if err != nil {
		return nil, err
	}

	errs, err = analytics.Evaluate(records, s.storage.Schema().Models)
	if err != nil {
		if errors.Is(err, analytics.ErrEmptySelection) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("evaluate models: %w", err)
	}

	s.logger.Info("compared models",
		zap.String("best_model", errs[0].Model),
		zap.Float64("best_mae", errs[0].MAE),
		zap.Int("records", len(records)))

	return errs, nil
}

// Export writes the selected records, with every source column, to w. sel.Model is ignored.
func (s *DashboardService) Export(ctx context.Context, sel Selection, format ExportFormat, w io.Writer) (err error) {
	defer func(start time.Time) { metrics.ObserveQuery(opExport, start, err) }(time.Now())

	c, err := s.filterCriteria(sel)
	if err != nil {
		return err
	}
	records, err := s.records(ctx, opExport, c)
	if err != nil {
		return err
	}

	schema := s.storage.Schema()
	switch format {
	case FormatCSV:
		err = dataset.WriteCSV(w, schema, records)
	case FormatXLSX:
		err = dataset.WriteXLSX(w, schema, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}

	metrics.ExportsTotal.WithLabelValues(string(format)).Inc()
	s.logger.Info("exported filtered data",
		zap.String("format", string(format)),
		zap.Int("records", len(records)))

	return nil
}
