package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mediapeek/twitchpeek/internal/domain"
	"github.com/mediapeek/twitchpeek/internal/service"
	"github.com/mediapeek/twitchpeek/pkg/twitch"
)

// ResolveHandler handles media resolution HTTP requests.
type ResolveHandler struct {
	resolveSvc *service.ResolveService
	logger     *slog.Logger
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(resolveSvc *service.ResolveService, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{
		resolveSvc: resolveSvc,
		logger:     logger,
	}
}

// PosterResponse is the JSON response for poster lookups.
type PosterResponse struct {
	Key       string `json:"key"`
	PosterURL string `json:"poster_url"`
}

// MediaListResponse contains recent resolution records.
type MediaListResponse struct {
	Media []*domain.MediaRecord `json:"media"`
	Total int                   `json:"total"`
}

// Resolve handles GET /api/v1/resolve?url=...
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	resolved, err := h.resolveSvc.Resolve(r.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) || errors.Is(err, domain.ErrNotTwitchMedia) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("resolve failed", "url", raw, "error", err)
		h.writeError(w, http.StatusInternalServerError, "resolve failed")
		return
	}

	h.writeJSON(w, http.StatusOK, resolved)
}

// Poster handles GET /api/v1/poster?url=...
// With redirect=1 the response is a 302 to the CDN image so the endpoint
// can be used directly as an <img> or poster attribute source.
func (h *ResolveHandler) Poster(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	posterURL, err := h.resolveSvc.Poster(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyInput), errors.Is(err, domain.ErrNotTwitchMedia):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNoPoster):
			h.writeError(w, http.StatusNotFound, "no poster available")
		default:
			h.logger.Error("poster lookup failed", "url", raw, "error", err)
			h.writeError(w, http.StatusInternalServerError, "poster lookup failed")
		}
		return
	}

	if redirect, _ := strconv.ParseBool(r.URL.Query().Get("redirect")); redirect {
		http.Redirect(w, r, posterURL, http.StatusFound)
		return
	}

	media, _ := twitch.ParseMedia(raw)
	h.writeJSON(w, http.StatusOK, PosterResponse{
		Key:       media.Key().String(),
		PosterURL: posterURL,
	})
}

// List handles GET /api/v1/media
func (h *ResolveHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	records, err := h.resolveSvc.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list media failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "list media failed")
		return
	}

	h.writeJSON(w, http.StatusOK, MediaListResponse{
		Media: records,
		Total: len(records),
	})
}

func (h *ResolveHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *ResolveHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
