package pos

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerpos/ledgerpos/internal/docs"
	"github.com/ledgerpos/ledgerpos/internal/platform/httpx"
)

// Handler serves the POS transaction endpoints.
type Handler struct {
	logger          *slog.Logger
	service         *Service
	builder         *docs.Builder
	defaultCurrency string
}

// NewHandler constructs the POS HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, builder *docs.Builder, defaultCurrency string) *Handler {
	return &Handler{
		logger:          logger,
		service:         service,
		builder:         builder,
		defaultCurrency: defaultCurrency,
	}
}

// MountRoutes registers POS endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Post("/sales", h.handleCreateSale)
	r.Get("/sales", h.handleListSales)
	r.Get("/sales/{id}", h.handleGetSale)
	r.Get("/sales/{id}/document", h.handleSaleDocument)
	r.Post("/returns", h.handleCreateReturn)
	r.Get("/returns", h.handleListReturns)
	r.Post("/returns/{id}/approve", h.handleApproveReturn)
	r.Post("/returns/{id}/reject", h.handleRejectReturn)
	r.Post("/invoices", h.handleCreateInvoice)
	r.Get("/invoices", h.handleListInvoices)
}

func (h *Handler) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	sale, err := h.service.CreateSale(r.Context(), req)
	if err != nil {
		h.respondError(w, "create sale", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) handleListSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
		return
	}
	sales, err := h.service.ListSales(r.Context(), from, to)
	if err != nil {
		h.respondError(w, "list sales", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func (h *Handler) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) handleSaleDocument(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get sale", err)
		return
	}
	currency := strings.TrimSpace(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = h.defaultCurrency
	}
	httpx.JSON(w, http.StatusOK, h.builder.BuildSaleDocument(sale, currency))
}

func (h *Handler) handleCreateReturn(w http.ResponseWriter, r *http.Request) {
	var req CreateReturnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	ret, err := h.service.CreateReturn(r.Context(), req)
	if err != nil {
		h.respondError(w, "create return", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ret)
}

func (h *Handler) handleListReturns(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
		return
	}
	returns, err := h.service.ListReturns(r.Context(), from, to)
	if err != nil {
		h.respondError(w, "list returns", err)
		return
	}
	httpx.JSON(w, http.StatusOK, returns)
}

func (h *Handler) handleApproveReturn(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ApproveReturn(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "approve return", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(ReturnStatusApproved)})
}

func (h *Handler) handleRejectReturn(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RejectReturn(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "reject return", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(ReturnStatusRejected)})
}

func (h *Handler) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv Invoice
	if err := httpx.DecodeJSON(r, &inv); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	created, err := h.service.CreateInvoice(r.Context(), inv)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
		return
	}
	invoices, err := h.service.ListInvoices(r.Context(), from, to)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error(context, slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseWindow(r *http.Request) (from, to *time.Time, err error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		t, perr := time.Parse("2006-01-02", raw)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		t, perr := time.Parse("2006-01-02", raw)
		if perr != nil {
			return nil, nil, perr
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}
