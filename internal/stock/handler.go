package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sobitas/backoffice/internal/platform/httpx"
)

type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock/movements", h.ListMovements)
}

// ListMovements returns the stock journal, newest first.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	filter := MovementFilter{Limit: 100}
	q := r.URL.Query()
	if v := q.Get("product_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ProductID = id
		}
	}
	if v := q.Get("doc_type"); v != "" {
		filter.DocType = v
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	movements, err := h.repo.ListMovements(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"items": movements,
	})
}
