// Package httpapi serves the dashboard's downloads, charts and health endpoints.
package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ritik2105/market-dashboard/internal/charts"
	"github.com/ritik2105/market-dashboard/internal/service"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
)

// ExportBaseName is the download name of an export, without extension.
const ExportBaseName = "filtered_market_data"

var errBadQuery = errors.New("bad query")

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

type Handlers struct {
	dashboard DashboardService
	logger    *zap.Logger
	records   int
}

// NewHandlers creates the HTTP handlers. records is reported by /healthz.
func NewHandlers(dashboard DashboardService, logger *zap.Logger, records int) *Handlers {
	if dashboard == nil {
		panic("nil DashboardService provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		dashboard: dashboard,
		logger:    logger.Named("http-handler"),
		records:   records,
	}
}

// Routes returns the full router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/export", h.Export)
		r.Route("/charts", func(r chi.Router) {
			r.Get("/forecast.png", h.ForecastChart)
			r.Get("/overview.png", h.OverviewChart)
			r.Get("/mae.png", h.ModelErrorsChart)
		})
	})

	return r
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{Status: "ok", Records: h.records})
}

// parseSelection reads years, equipment_type and model from the query string.
// Years may be repeated or comma separated.
func parseSelection(r *http.Request) (service.Selection, error) {
	q := r.URL.Query()

	var years []int
	for _, v := range q["years"] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			y, err := strconv.Atoi(part)
			if err != nil {
				return service.Selection{}, fmt.Errorf("%w: year %q is not a number", errBadQuery, part)
			}
			years = append(years, y)
		}
	}

	return service.Selection{
		Years:         years,
		EquipmentType: q.Get("equipment_type"),
		Model:         q.Get("model"),
	}, nil
}

func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	format, err := service.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.dashboard.Export(r.Context(), sel, format, &buf); err != nil {
		h.writeError(w, r, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == service.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", ExportBaseName, format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (h *Handlers) ForecastChart(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	points, err := h.dashboard.MonthlyAverages(r.Context(), sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := charts.Forecast(points, sel.Model)
	h.writeChart(w, r, p, err)
}

func (h *Handlers) OverviewChart(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	table, err := h.dashboard.SalesTable(r.Context(), sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := charts.Overview(table)
	h.writeChart(w, r, p, err)
}

func (h *Handlers) ModelErrorsChart(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errs, err := h.dashboard.CompareModels(r.Context(), sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := charts.ModelErrors(errs)
	h.writeChart(w, r, p, err)
}

func (h *Handlers) writeChart(w http.ResponseWriter, r *http.Request, p *plot.Plot, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := charts.WritePNG(&buf, p); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, errBadQuery),
		errors.Is(err, service.ErrInvalidSelection),
		errors.Is(err, service.ErrUnknownModel),
		errors.Is(err, service.ErrUnsupportedFormat):
		code = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, service.ErrNoData), errors.Is(err, charts.ErrNoPoints):
		code = http.StatusNotFound
		msg = service.ErrNoData.Error()
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}

	render.Status(r, code)
	render.JSON(w, r, errorResponse{Error: msg})
}
