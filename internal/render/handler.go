package render

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quillbooks/quillbooks/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	builder *Builder
	cache   *Cache
}

func NewHandler(logger *slog.Logger, builder *Builder, cache *Cache) *Handler {
	return &Handler{logger: logger, builder: builder, cache: cache}
}

func (h *Handler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}

	doc, err := h.builder.Invoice(r.Context(), id)
	if err != nil {
		h.logger.Error("build invoice document failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.respond(w, r, doc, fmt.Sprintf("pdf:invoice:%d:%d", id, doc.UpdatedAt.Unix()))
}

func (h *Handler) QuotationPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quotation id")
		return
	}

	doc, err := h.builder.Quotation(r.Context(), id)
	if err != nil {
		h.logger.Error("build quotation document failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.respond(w, r, doc, fmt.Sprintf("pdf:quotation:%d:%d", id, doc.UpdatedAt.Unix()))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, doc *Document, key string) {
	data, err := h.cache.GetOrRender(r.Context(), key, func() ([]byte, error) {
		return EncodePDF(Layout(doc))
	})
	if err != nil {
		h.logger.Error("render pdf failed", slog.String("key", key), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.PDF(w, doc.Number+".pdf", data)
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices/{id}/pdf", h.InvoicePDF)
	r.Get("/quotations/{id}/pdf", h.QuotationPDF)
}
