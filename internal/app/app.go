package app

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	pb "github.com/ritik2105/market-dashboard/api/v1"
	"github.com/ritik2105/market-dashboard/internal/config"
	"github.com/ritik2105/market-dashboard/internal/dataset"
	handler "github.com/ritik2105/market-dashboard/internal/grpc"
	"github.com/ritik2105/market-dashboard/internal/httpapi"
	"github.com/ritik2105/market-dashboard/internal/metrics"
	"github.com/ritik2105/market-dashboard/internal/repository"
	"github.com/ritik2105/market-dashboard/internal/service"
	"github.com/ritik2105/market-dashboard/pkg/cache"
	dbbuilder "github.com/ritik2105/market-dashboard/pkg/database"
	grpcsrv "github.com/ritik2105/market-dashboard/pkg/grpc/server"
	httpsrv "github.com/ritik2105/market-dashboard/pkg/http/server"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      handler.Cacher
	grpcServer *grpcsrv.Server
	httpServer *httpsrv.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	start := time.Now()
	table, err := dataset.Load(cfg.DataPath,
		dataset.WithModelPrefix(cfg.ModelColumnPrefix),
		dataset.WithSheet(cfg.DataSheet),
	)
	if err != nil {
		return nil, err
	}
	metrics.LoadDuration.Set(time.Since(start).Seconds())
	metrics.DatasetRecords.Set(float64(table.Len()))
	metrics.DatasetModels.Set(float64(len(table.Schema().Models)))
	logger.Info("Dataset loaded",
		zap.String("path", cfg.DataPath),
		zap.Int("records", table.Len()),
		zap.Strings("models", table.Schema().Models),
		zap.String("fingerprint", table.Fingerprint()),
		zap.Duration("took", time.Since(start)))

	a := &App{logger: logger}

	repo, err := a.newRepository(ctx, cfg, table)
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.CacheEnabled() {
		cacheClient, err := cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
			cache.WithKeyPrefix(cfg.CacheKeyPrefix),
		)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		a.cache = cacheClient
		logger.Info("Cache client initialized",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("db", cfg.RedisDB),
			zap.String("key_prefix", cfg.CacheKeyPrefix))
	} else {
		a.cache = cache.Nop{}
		logger.Info("Cache disabled, REDIS_ADDR is empty")
	}

	dashboardService := service.NewDashboardService(repo, logger.Named("dashboard"))

	grpcHandlers := handler.NewDashboardHandlers(dashboardService, a.cache, logger, cfg.CacheTTL, table.Fingerprint())

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithUnaryInterceptors(metrics.UnaryServerInterceptor()),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	a.grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterDashboardServer(s, grpcHandlers)
	})

	httpHandlers := httpapi.NewHandlers(dashboardService, logger, table.Len())
	a.httpServer, err = httpsrv.New(
		httpsrv.WithPort(cfg.HTTPPort),
		httpsrv.WithLogger(logger),
		httpsrv.WithHandler(httpHandlers.Routes()),
		httpsrv.WithTimeouts(cfg.HTTPReadHeaderTimeout, cfg.HTTPWriteTimeout),
	)
	if err != nil {
		_ = a.grpcServer.Shutdown(context.Background())
		a.close()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return a, nil
}

func (a *App) newRepository(ctx context.Context, cfg *config.Config, table *dataset.Table) (service.RecordRepository, error) {
	if cfg.StoreDriver != config.StoreSQLite {
		a.logger.Info("Serving records from memory")
		return repository.NewMemoryRepository(table), nil
	}

	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithMaxOpenConns(cfg.DBMaxOpenConns),
		dbbuilder.WithMaxIdleConns(cfg.DBMaxIdleConns),
		dbbuilder.WithConnMaxLifetime(cfg.DBConnMaxLifetime),
		dbbuilder.WithConnMaxIdleTime(cfg.DBConnMaxIdleTime),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	a.dbPool = dbPool

	repo := repository.NewSalesRecordRepository(dbPool, table.Schema())
	if err := repo.Migrate(ctx); err != nil {
		return nil, err
	}
	if err := repo.Import(ctx, table.Records()); err != nil {
		return nil, err
	}
	a.logger.Info("Records mirrored into SQLite", zap.String("path", cfg.DBPath), zap.Int("records", table.Len()))
	return repo, nil
}

// GRPCAddr returns the gRPC listening address.
func (a *App) GRPCAddr() net.Addr {
	return a.grpcServer.Addr()
}

// HTTPAddr returns the HTTP listening address.
func (a *App) HTTPAddr() net.Addr {
	return a.httpServer.Addr()
}

// Run starts both servers and blocks until ctx is canceled, then shuts down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	a.grpcServer.Start()
	a.httpServer.Start()

	<-ctx.Done()
	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(shutdownCtx)
	g.Go(func() error {
		return a.grpcServer.Shutdown(gctx)
	})
	g.Go(func() error {
		return a.httpServer.Shutdown(gctx)
	})
	err := g.Wait()

	a.close()

	if err != nil {
		a.logger.Warn("shutdown completed with errors", zap.Error(err))
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return err
}

func (a *App) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.logger.Error("database shutdown error", zap.Error(err))
		}
	}
}
