package billing

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sobitas/backoffice/internal/platform/httpx"
)

// PDFRenderer turns a document into a printable PDF.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, doc *Document) ([]byte, error)
}

type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer PDFRenderer
}

func NewHandler(logger *slog.Logger, service *Service, renderer PDFRenderer) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer}
}

func docID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func listRequestFromQuery(docType DocType, r *http.Request) ListDocumentsRequest {
	req := ListDocumentsRequest{DocType: docType, Limit: 50}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		s := OrderStatus(v)
		req.Status = &s
	}
	if v := q.Get("search"); v != "" {
		req.Search = &v
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.DateTo = &t
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Offset = n
		}
	}
	return req
}

func (h *Handler) list(docType DocType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, total, err := h.service.List(r.Context(), listRequestFromQuery(docType, r))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]interface{}{
			"items": items,
			"total": total,
		})
	}
}

func (h *Handler) show(docType DocType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := docID(r)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "document id must be numeric")
			return
		}
		doc, err := h.service.Get(r.Context(), docType, id)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) create(docType DocType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDocumentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
			return
		}
		doc, err := h.service.Create(r.Context(), docType, req)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, doc)
	}
}

func (h *Handler) update(docType DocType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := docID(r)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "document id must be numeric")
			return
		}
		var req UpdateDocumentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
			return
		}
		doc, err := h.service.Update(r.Context(), docType, id, req)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) pdf(docType DocType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.renderer == nil {
			httpx.Problem(w, http.StatusNotImplemented, "PDF rendering unavailable", "no renderer configured")
			return
		}
		id, ok := docID(r)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "document id must be numeric")
			return
		}
		doc, err := h.service.Get(r.Context(), docType, id)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		pdf, err := h.renderer.RenderPDF(r.Context(), doc)
		if err != nil {
			h.logger.Error("pdf render failed", slog.String("number", doc.Number), slog.Any("error", err))
			httpx.Problem(w, http.StatusBadGateway, "PDF rendering failed", "")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="`+doc.Number+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	doc, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "document id must be numeric")
		return
	}
	var req UpdateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	doc, err := h.service.UpdateOrder(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) CreateStorefrontOrder(w http.ResponseWriter, r *http.Request) {
	var req StorefrontOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	doc, err := h.service.CreateStorefrontOrder(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}
