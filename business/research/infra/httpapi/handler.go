// Package httpapi exposes the research service over HTTP.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fd1az/resale-pricer/business/research/domain"
	"github.com/fd1az/resale-pricer/internal/httpx"
)

// Service is the part of the research service the handlers call.
type Service interface {
	GenerateKeywords(ctx context.Context, title string) (domain.KeywordSuggestion, error)
	AnalyzeSoldListings(ctx context.Context, source domain.Source, page io.Reader) (domain.SoldListingAnalysis, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the research endpoints under /research.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/research", func(r chi.Router) {
		r.Post("/keywords", h.keywords)
		// body is the captured results page as HTML
		r.Post("/sold-listings", h.soldListings)
	})
}

type keywordsRequest struct {
	Title string `json:"title"`
}

func (h *Handler) keywords(w http.ResponseWriter, r *http.Request) {
	var req keywordsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}

	suggestion, err := h.svc.GenerateKeywords(r.Context(), req.Title)
	if err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, suggestion)
}

func (h *Handler) soldListings(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseSource(r.URL.Query().Get("source"))
	if err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}

	page := http.MaxBytesReader(w, r.Body, httpx.MaxBodyBytes)
	analysis, err := h.svc.AnalyzeSoldListings(r.Context(), source, page)
	if err != nil {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, analysis)
}
