package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_queries_total",
		Help: "Total number of dashboard queries by operation.",
	}, []string{"operation"})
	QueryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_query_failures_total",
		Help: "Total number of dashboard queries that returned an error.",
	}, []string{"operation"})
	EmptySelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_empty_selections_total",
		Help: "Total number of queries whose selection matched no records.",
	}, []string{"operation"})
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_query_duration_seconds",
		Help:    "Duration of dashboard queries.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"operation"})
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_exports_total",
		Help: "Total number of filtered-data exports by format.",
	}, []string{"format"})
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_lookups_total",
		Help: "Cache lookups by result (hit, miss, error).",
	}, []string{"result"})
	DatasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_dataset_records",
		Help: "Number of records in the loaded dataset.",
	})
	DatasetModels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_dataset_models",
		Help: "Number of prediction columns in the loaded dataset.",
	})
	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_grpc_requests_total",
		Help: "gRPC requests by method and status code.",
	}, []string{"method", "code"})
	LoadDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_dataset_load_seconds",
		Help: "Time spent loading the dataset at startup.",
	})
)

// ObserveQuery records the outcome of one operation started at start.
func ObserveQuery(operation string, start time.Time, err error) {
	QueriesTotal.WithLabelValues(operation).Inc()
	QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		QueryFailuresTotal.WithLabelValues(operation).Inc()
	}
}

// UnaryServerInterceptor counts every unary call by full method name and status code.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		GRPCRequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}
