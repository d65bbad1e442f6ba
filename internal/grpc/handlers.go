package grpc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	pb "github.com/ritik2105/market-dashboard/api/v1"
	"github.com/ritik2105/market-dashboard/internal/analytics"
	"github.com/ritik2105/market-dashboard/internal/dataset"
	"github.com/ritik2105/market-dashboard/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyFilterOptions   CacheKeyType = "grpc:filter_options"
	cacheKeySalesTable      CacheKeyType = "grpc:sales_table"
	cacheKeyMonthlyAverages CacheKeyType = "grpc:monthly_averages"
	cacheKeyCompareModels   CacheKeyType = "grpc:compare_models"
)

type DashboardHandlers struct {
	pb.UnimplementedDashboardServer
	dashboard DashboardService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
	dataset   string
}

// NewDashboardHandlers initializes the gRPC handlers. datasetVersion identifies the loaded
// data and scopes every cache key, so a restart on different data never reads old entries.
func NewDashboardHandlers(dashboard DashboardService, cache Cacher, logger *zap.Logger, ttl time.Duration, datasetVersion string) *DashboardHandlers {
	if dashboard == nil {
		panic("nil DashboardService provided to NewDashboardHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandlers{
		dashboard: dashboard,
		cache:     cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
		dataset:   datasetVersion,
	}
}

// parseAndValidate checks the request and returns a selection with sorted, unique years.
// The model is checked only when requireModel is set and is dropped otherwise.
func (s *DashboardHandlers) parseAndValidate(req *pb.SelectionRequest, requireModel bool) (service.Selection, error) {
	if len(req.GetYears()) == 0 {
		return service.Selection{}, status.Error(codes.InvalidArgument, "at least one year is required")
	}
	if strings.TrimSpace(req.GetEquipmentType()) == "" {
		return service.Selection{}, status.Error(codes.InvalidArgument, "equipment type is required")
	}
	model := ""
	if requireModel {
		if req.GetModel() == "" {
			return service.Selection{}, status.Error(codes.InvalidArgument, "model is required")
		}
		model = req.GetModel()
	}

	years := make([]int, len(req.GetYears()))
	for i, y := range req.GetYears() {
		years[i] = int(y)
	}
	slices.Sort(years)

	return service.Selection{
		Years:         slices.Compact(years),
		EquipmentType: req.GetEquipmentType(),
		Model:         model,
	}, nil
}

// normalizeKey builds a cache key that is identical for selections differing only
// in year order or duplicates. sel.Years must already be sorted and compacted.
// An empty model is left out of the key.
func normalizeKey(prefix CacheKeyType, sel service.Selection) string {
	years := make([]string, len(sel.Years))
	for i, y := range sel.Years {
		years[i] = strconv.Itoa(y)
	}
	key := fmt.Sprintf("%s:%s:%s", prefix, strings.Join(years, ","), sel.EquipmentType)
	if sel.Model != "" {
		key += ":" + sel.Model
	}
	return key
}

// cacheKey scopes key to the loaded dataset.
func (s *DashboardHandlers) cacheKey(key string) string {
	if s.dataset == "" {
		return key
	}
	return s.dataset + ":" + key
}

func (s *DashboardHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidSelection), errors.Is(err, service.ErrUnknownModel):
		s.logger.Info("invalid selection", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNoData):
		s.logger.Info("no data for selection", zap.String("op", op))
		return status.Error(codes.NotFound, service.ErrNoData.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "storage error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *DashboardHandlers) GetFilterOptions(ctx context.Context, req *pb.FilterOptionsRequest) (*pb.FilterOptionsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	opts, err := FindAndCache(ctx, s.cache, &s.sfGroup, s.cacheKey(string(cacheKeyFilterOptions)), s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.FilterOptions, error) {
		return s.dashboard.FilterOptions(fetchCtx)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetFilterOptions", err)
	}

	return &pb.FilterOptionsResponse{
		Years:          toInt32s(opts.Years),
		DefaultYears:   toInt32s(opts.DefaultYears),
		EquipmentTypes: opts.EquipmentTypes,
		Models:         opts.Models,
	}, nil
}

func (s *DashboardHandlers) GetSalesTable(ctx context.Context, req *pb.SelectionRequest) (*pb.SalesTableResponse, error) {
	sel, err := s.parseAndValidate(req, true)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.cacheKey(normalizeKey(cacheKeySalesTable, sel))

	table, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.SalesTable, error) {
		return s.dashboard.SalesTable(fetchCtx, sel)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetSalesTable", err)
	}

	rows := make([]*pb.SalesRow, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = &pb.SalesRow{
			Date:          r.Date.Format(dataset.DateLayout),
			EquipmentType: r.EquipmentType,
			UnitsSold:     r.UnitsSold,
			Predicted:     r.Predicted,
		}
	}

	return &pb.SalesTableResponse{
		Model:         table.Model,
		EquipmentType: table.EquipmentType,
		Rows:          rows,
	}, nil
}

func (s *DashboardHandlers) GetMonthlyAverages(ctx context.Context, req *pb.SelectionRequest) (*pb.MonthlyAveragesResponse, error) {
	sel, err := s.parseAndValidate(req, true)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.cacheKey(normalizeKey(cacheKeyMonthlyAverages, sel))

	points, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]analytics.AggregatedPoint, error) {
		return s.dashboard.MonthlyAverages(fetchCtx, sel)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetMonthlyAverages", err)
	}

	return &pb.MonthlyAveragesResponse{Points: s.mapToProtoPoints(points)}, nil
}

func (s *DashboardHandlers) CompareModels(ctx context.Context, req *pb.SelectionRequest) (*pb.CompareModelsResponse, error) {
	sel, err := s.parseAndValidate(req, false)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.cacheKey(normalizeKey(cacheKeyCompareModels, sel))

	results, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]analytics.ModelError, error) {
		return s.dashboard.CompareModels(fetchCtx, sel)
	})
	if err != nil {
		return nil, s.handleError(ctx, "CompareModels", err)
	}

	out := make([]*pb.ModelError, len(results))
	for i, r := range results {
		out[i] = &pb.ModelError{Model: r.Model, Mae: r.MAE}
	}
	return &pb.CompareModelsResponse{Errors: out}, nil
}

func (s *DashboardHandlers) mapToProtoPoints(points []analytics.AggregatedPoint) []*pb.MonthlyPoint {
	out := make([]*pb.MonthlyPoint, len(points))
	for i, p := range points {
		out[i] = &pb.MonthlyPoint{
			Month:         p.Month.Format("2006-01"),
			MeanActual:    p.MeanActual,
			MeanPredicted: p.MeanPredicted,
			Count:         int64(p.Count),
		}
	}
	return out
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}
