package reporthttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerpos/ledgerpos/internal/platform/httpx"
	"github.com/ledgerpos/ledgerpos/internal/reports"
	"github.com/ledgerpos/ledgerpos/internal/reports/export"
)

const (
	requestTimeout = 2 * time.Second

	dashboardTopN = 5
	reportTopN    = 10
)

// ReportService defines the dashboard data contract used by the handler.
type ReportService interface {
	Summary(ctx context.Context, r reports.DateRange) (reports.Summary, error)
	TopProducts(ctx context.Context, r reports.DateRange, n int) ([]reports.RankedEntry, error)
	TopCustomers(ctx context.Context, r reports.DateRange, n int) ([]reports.RankedEntry, error)
	MonthlyTrend(ctx context.Context, r reports.DateRange) ([]reports.MonthPoint, error)
	Breakdowns(ctx context.Context, r reports.DateRange) (reports.Breakdowns, error)
	CustomerSegments(ctx context.Context, r reports.DateRange) ([]reports.CustomerSegment, error)
}

// Handler coordinates HTTP requests for the revenue reports.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// DashboardResponse bundles everything the dashboard view renders.
type DashboardResponse struct {
	Window       windowInfo               `json:"window"`
	Summary      reports.Summary          `json:"summary"`
	TopProducts  []reports.RankedEntry    `json:"top_products"`
	TopCustomers []reports.RankedEntry    `json:"top_customers"`
	Trend        []reports.MonthPoint     `json:"trend"`
	Breakdowns   reports.Breakdowns       `json:"breakdowns"`
	Segments     []reports.CustomerSegment `json:"segments"`
}

type windowInfo struct {
	Preset string `json:"preset,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	window, info, err := h.parseWindow(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, window, dashboardTopN)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	data.Window = info
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	window, info, err := h.parseWindow(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		top      []reports.RankedEntry
		segments []reports.CustomerSegment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := h.service.TopCustomers(gctx, window, reportTopN)
		if err != nil {
			return err
		}
		top = result
		return nil
	})
	g.Go(func() error {
		result, err := h.service.CustomerSegments(gctx, window)
		if err != nil {
			return err
		}
		segments = result
		return nil
	})
	if err := g.Wait(); err != nil {
		h.handleServerError(w, "load customer report", err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"window":        info,
		"top_customers": top,
		"segments":      segments,
	})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	window, info, err := h.parseWindow(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, window, reportTopN)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	label := info.Preset
	if label == "" {
		label = info.Start + ".." + info.End
	}
	if err := export.WriteSummaryCSV(buf, data.Summary, label); err != nil {
		h.handleServerError(w, "write summary csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteRankedCSV(buf, "Product", data.TopProducts); err != nil {
		h.handleServerError(w, "write products csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteRankedCSV(buf, "Customer", data.TopCustomers); err != nil {
		h.handleServerError(w, "write customers csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteTrendCSV(buf, data.Trend); err != nil {
		h.handleServerError(w, "write trend csv", err)
		return
	}

	filename := fmt.Sprintf("revenue-report-%s.csv", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) loadDashboardData(ctx context.Context, window reports.DateRange, topN int) (DashboardResponse, error) {
	var data DashboardResponse
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := h.service.Summary(ctx, window)
		if err != nil {
			return err
		}
		data.Summary = summary
		return nil
	})

	g.Go(func() error {
		products, err := h.service.TopProducts(ctx, window, topN)
		if err != nil {
			return err
		}
		data.TopProducts = products
		return nil
	})

	g.Go(func() error {
		customers, err := h.service.TopCustomers(ctx, window, topN)
		if err != nil {
			return err
		}
		data.TopCustomers = customers
		return nil
	})

	g.Go(func() error {
		trend, err := h.service.MonthlyTrend(ctx, window)
		if err != nil {
			return err
		}
		data.Trend = trend
		return nil
	})

	g.Go(func() error {
		breakdowns, err := h.service.Breakdowns(ctx, window)
		if err != nil {
			return err
		}
		data.Breakdowns = breakdowns
		return nil
	})

	g.Go(func() error {
		segments, err := h.service.CustomerSegments(ctx, window)
		if err != nil {
			return err
		}
		data.Segments = segments
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardResponse{}, err
	}
	return data, nil
}

// parseWindow resolves either a quick-filter preset or an explicit start/end
// pair. No parameters means all time.
func (h *Handler) parseWindow(r *http.Request) (reports.DateRange, windowInfo, error) {
	query := r.URL.Query()
	preset := strings.TrimSpace(query.Get("preset"))
	startRaw := strings.TrimSpace(query.Get("start"))
	endRaw := strings.TrimSpace(query.Get("end"))

	if preset != "" {
		if startRaw != "" || endRaw != "" {
			return reports.DateRange{}, windowInfo{}, validationError{field: "preset"}
		}
		window, err := reports.ResolvePreset(reports.Preset(preset), h.now().UTC())
		if err != nil {
			return reports.DateRange{}, windowInfo{}, validationError{field: "preset"}
		}
		return window, windowInfo{Preset: preset}, nil
	}

	var window reports.DateRange
	info := windowInfo{}
	if startRaw != "" {
		t, err := time.Parse("2006-01-02", startRaw)
		if err != nil {
			return reports.DateRange{}, windowInfo{}, validationError{field: "start"}
		}
		window.Start = &t
		info.Start = startRaw
	}
	if endRaw != "" {
		t, err := time.Parse("2006-01-02", endRaw)
		if err != nil {
			return reports.DateRange{}, windowInfo{}, validationError{field: "end"}
		}
		window.End = &t
		info.End = endRaw
	}
	if window.Start != nil && window.End != nil && window.End.Before(*window.Start) {
		return reports.DateRange{}, windowInfo{}, validationError{field: "end"}
	}
	return window, info, nil
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", vErr.Error())
		return
	}
	h.handleServerError(w, "parse window", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return "invalid " + v.field
}
