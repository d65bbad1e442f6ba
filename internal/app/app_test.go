package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ritik2105/market-dashboard/internal/config"
	"github.com/ritik2105/market-dashboard/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixture = `Date,Year,Equipment Type,Units sold,Prediction_A,Prediction_B
2023-01-05,2023,Tractor,100,110,98
2023-02-14,2023,Tractor,80,85,82
`

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T, data string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market.csv")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return &config.Config{
		AppEnv:            "test",
		DataPath:          path,
		ModelColumnPrefix: dataset.DefaultModelPrefix,
		StoreDriver:       config.StoreMemory,
		DBPath:            ":memory:",
		DBMaxOpenConns:    4,
		CacheTTL:          time.Minute,
		GRPCPort:          freePort(t),
		HTTPPort:          freePort(t),

		HTTPReadHeaderTimeout: time.Second,
		HTTPWriteTimeout:      5 * time.Second,
	}
}

func TestNewAppInvalidConfig(t *testing.T) {
	_, err := NewApp(context.Background(), &config.Config{}, zap.NewNop())

	assert.ErrorContains(t, err, "invalid configuration")
}

func TestNewAppLoadError(t *testing.T) {
	cfg := testConfig(t, "Date,Year,Units sold\n2023-01-01,2023,5\n")

	_, err := NewApp(context.Background(), cfg, zap.NewNop())

	var loadErr *dataset.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)
}

func TestRunAndShutdown(t *testing.T) {
	for _, driver := range []string{config.StoreMemory, config.StoreSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, fixture)
			cfg.StoreDriver = driver

			a, err := NewApp(context.Background(), cfg, zap.NewNop())
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- a.Run(ctx) }()

			url := fmt.Sprintf("http://127.0.0.1:%d/healthz", cfg.HTTPPort)
			require.NotNil(t, a.GRPCAddr())
			assert.Eventually(t, func() bool {
				resp, err := http.Get(url)
				if err != nil {
					return false
				}
				resp.Body.Close()
				return resp.StatusCode == http.StatusOK
			}, 2*time.Second, 20*time.Millisecond)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(shutdownTimeout + time.Second):
				t.Fatal("Run did not return after cancel")
			}
		})
	}
}
