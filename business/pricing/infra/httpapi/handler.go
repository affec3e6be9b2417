// Package httpapi exposes the pricing service over JSON HTTP.
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
	"github.com/fd1az/resale-pricer/internal/httpx"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Service is the part of the pricing service the handlers call.
type Service interface {
	ComputeMaxPurchasePrice(ctx context.Context, price decimal.Decimal, dutyInclusive bool) (domain.CalculationResult, error)
	ComputeRequiredSalePrice(ctx context.Context, cost decimal.Decimal) (domain.CalculationResult, error)
	EnumerateShippingOptions(ctx context.Context, parcel domain.Parcel, reference decimal.Decimal) ([]domain.ShippingOption, error)
	Settings(ctx context.Context) (domain.PricingConfiguration, error)
	SaveSettings(ctx context.Context, cfg domain.PricingConfiguration) error
	ResetSettings(ctx context.Context) error
	History(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the pricing endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/max-purchase", h.maxPurchase)
	r.Post("/sale-price", h.salePrice)
	r.Post("/shipping-options", h.shippingOptions)
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.putSettings)
	r.Delete("/settings", h.resetSettings)
	r.Get("/history", h.history)
}

type maxPurchaseRequest struct {
	Price         decimal.Decimal `json:"price"`
	DutyInclusive bool            `json:"duty_inclusive"`
}

type salePriceRequest struct {
	Cost decimal.Decimal `json:"cost"`
}

type shippingOptionsRequest struct {
	Weight         domain.Grams    `json:"weight"`
	Length         decimal.Decimal `json:"length"`
	Width          decimal.Decimal `json:"width"`
	Height         decimal.Decimal `json:"height"`
	ReferenceValue decimal.Decimal `json:"reference_value"`
}

type shippingOptionsResponse struct {
	Options []domain.ShippingOption `json:"options"`
}

type historyResponse struct {
	Records []domain.HistoryRecord `json:"records"`
}

func (h *Handler) maxPurchase(w http.ResponseWriter, r *http.Request) {
	var req maxPurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}

	result, err := h.svc.ComputeMaxPurchasePrice(r.Context(), req.Price, req.DutyInclusive)
	if err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) salePrice(w http.ResponseWriter, r *http.Request) {
	var req salePriceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}

	result, err := h.svc.ComputeRequiredSalePrice(r.Context(), req.Cost)
	if err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) shippingOptions(w http.ResponseWriter, r *http.Request) {
	var req shippingOptionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}

	parcel := domain.Parcel{
		ActualWeight: req.Weight,
		Length:       req.Length,
		Width:        req.Width,
		Height:       req.Height,
	}
	opts, err := h.svc.EnumerateShippingOptions(r.Context(), parcel, req.ReferenceValue)
	if err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, shippingOptionsResponse{Options: opts})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Settings(r.Context())
	if err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var cfg domain.PricingConfiguration
	if err := httpx.DecodeJSON(r, &cfg); err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}

	if err := h.svc.SaveSettings(r.Context(), cfg); err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) resetSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetSettings(r.Context()); err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			httpx.WriteError(r.Context(), w, apperror.Validationf(apperror.CodeInvalidInput,
				"limit must be an integer between 1 and %d, got %q", maxHistoryLimit, raw))
			return
		}
		limit = n
	}

	records, err := h.svc.History(r.Context(), limit)
	if err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	httpx.WriteJSON(w, http.StatusOK, historyResponse{Records: records})
}
