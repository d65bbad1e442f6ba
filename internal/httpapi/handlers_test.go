package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ritik2105/market-dashboard/internal/dataset"
	"github.com/ritik2105/market-dashboard/internal/httpapi/mocks"
	"github.com/ritik2105/market-dashboard/internal/repository"
	"github.com/ritik2105/market-dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const fixture = `Date,Year,Equipment Type,Units sold,Prediction_A,Prediction_B
2023-01-05,2023,Tractor,100,110,98
2023-01-20,2023,Tractor,120,110,121
2023-02-14,2023,Tractor,80,85,82
2023-02-14,2023,Baler,10,12,9
2022-03-03,2022,Baler,7,7,7
`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	table, err := dataset.ReadCSV("fixture.csv", strings.NewReader(fixture))
	require.NoError(t, err)

	svc := service.NewDashboardService(repository.NewMemoryRepository(table), zap.NewNop())
	srv := httptest.NewServer(NewHandlers(svc, zap.NewNop(), table.Len()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()

	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Error
}

func TestNewHandlers(t *testing.T) {
	assert.Panics(t, func() {
		NewHandlers(nil, zap.NewNop(), 0)
	})
}

func TestHealth(t *testing.T) {
	srv := newServer(t)

	resp, body := get(t, srv, "/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","records":5}`, string(body))
}

func TestMetrics(t *testing.T) {
	srv := newServer(t)
	get(t, srv, "/api/v1/export?years=2023&equipment_type=Tractor&model=Prediction_A")

	resp, body := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "dashboard_exports_total")
}

func TestExport(t *testing.T) {
	srv := newServer(t)

	t.Run("csv attachment", func(t *testing.T) {
		resp, body := get(t, srv, "/api/v1/export?years=2023&equipment_type=Tractor&model=Prediction_A")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "attachment; filename=filtered_market_data.csv", resp.Header.Get("Content-Disposition"))
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "Date,Year,Equipment Type,Units sold,Prediction_A,Prediction_B", lines[0])
		assert.Equal(t, "2023-01-05,2023,Tractor,100,110,98", lines[1])
	})

	t.Run("model is not needed", func(t *testing.T) {
		_, withModel := get(t, srv, "/api/v1/export?years=2023&equipment_type=Tractor&model=Prediction_A")
		resp, withoutModel := get(t, srv, "/api/v1/export?years=2023&equipment_type=Tractor")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, string(withModel), string(withoutModel))
	})

	t.Run("export reads back to the same selection", func(t *testing.T) {
		_, body := get(t, srv, "/api/v1/export?years=2022,2023&equipment_type=Baler")

		table, err := dataset.ReadCSV("export.csv", bytes.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())
		assert.Equal(t, []string{"Baler"}, table.EquipmentTypes())
	})

	t.Run("xlsx attachment", func(t *testing.T) {
		resp, body := get(t, srv, "/api/v1/export?years=2023&equipment_type=Tractor&model=Prediction_A&format=xlsx")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "attachment; filename=filtered_market_data.xlsx", resp.Header.Get("Content-Disposition"))

		f, err := excelize.OpenReader(bytes.NewReader(body))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(dataset.ExportSheet)
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("empty selection exports the header", func(t *testing.T) {
		resp, body := get(t, srv, "/api/v1/export?years=2022&equipment_type=Tractor&model=Prediction_A")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Date,Year,Equipment Type,Units sold,Prediction_A,Prediction_B\n", string(body))
	})

	testCases := []struct {
		name  string
		query string
	}{
		{"missing years", "equipment_type=Tractor&model=Prediction_A"},
		{"bad year", "years=twenty&equipment_type=Tractor&model=Prediction_A"},
		{"unsupported format", "years=2023&equipment_type=Tractor&model=Prediction_A&format=pdf"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := get(t, srv, "/api/v1/export?"+tc.query)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, errorMessage(t, body))
		})
	}
}

func TestCharts(t *testing.T) {
	srv := newServer(t)
	query := "?years=2023&equipment_type=Tractor&model=Prediction_B"

	for _, path := range []string{"forecast.png", "overview.png", "mae.png"} {
		t.Run(path, func(t *testing.T) {
			resp, body := get(t, srv, "/api/v1/charts/"+path+query)

			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
			assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
		})

		t.Run(path+" empty selection", func(t *testing.T) {
			resp, body := get(t, srv, "/api/v1/charts/"+path+"?years=2019&equipment_type=Tractor&model=Prediction_B")

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "no data for current selection", errorMessage(t, body))
		})
	}
}

func TestChartsModel(t *testing.T) {
	srv := newServer(t)

	t.Run("mae chart does not need a model", func(t *testing.T) {
		resp, body := get(t, srv, "/api/v1/charts/mae.png?years=2023&equipment_type=Tractor")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
	})

	testCases := []struct {
		name  string
		query string
	}{
		{"forecast without model", "years=2023&equipment_type=Tractor"},
		{"forecast with unknown model", "years=2023&equipment_type=Tractor&model=Prediction_Z"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := get(t, srv, "/api/v1/charts/forecast.png?"+tc.query)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, errorMessage(t, body))
		})
	}
}

func TestInternalErrorIsHidden(t *testing.T) {
	mockDashboard := &mocks.MockDashboardService{
		ExportFunc: func(ctx context.Context, sel service.Selection, format service.ExportFormat, w io.Writer) error {
			_, _ = w.Write([]byte("partial"))
			return errors.New("disk full at /var/data")
		},
	}
	srv := httptest.NewServer(NewHandlers(mockDashboard, zap.NewNop(), 0).Routes())
	defer srv.Close()

	resp, body := get(t, srv, "/api/v1/export?years=2023&equipment_type=Tractor&model=Prediction_A")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "internal error", errorMessage(t, body))
}

func TestParseSelection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?years=2023&years=2021,2022&equipment_type=Baler&model=M", nil)

	sel, err := parseSelection(r)

	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2021, 2022}, sel.Years)
	assert.Equal(t, "Baler", sel.EquipmentType)
	assert.Equal(t, "M", sel.Model)
}
