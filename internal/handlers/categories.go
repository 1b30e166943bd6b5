package handlers

import (
	"log/slog"
	"net/http"

	"github.com/inkwell-sh/inkwell/internal/blog"
)

type CategoriesHandler struct {
	svc    *blog.Service
	logger *slog.Logger
}

func NewCategoriesHandler(svc *blog.Service, logger *slog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *CategoriesHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := h.svc.ListCategories(r.Context())
		if err != nil {
			h.logger.Error("list categories failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
			return
		}
		if cats == nil {
			cats = []blog.Category{}
		}
		writeJSON(w, http.StatusOK, cats)
	}
}
