package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/inkwell-sh/inkwell/internal/storage"
)

// 10 MB request cap for cover images.
const maxUploadBytes = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadsHandler struct {
	store     storage.Storage
	bucket    string
	region    string
	publicURL string
	logger    *slog.Logger
}

func NewUploadsHandler(store storage.Storage, bucket, region, publicURL string, logger *slog.Logger) *UploadsHandler {
	return &UploadsHandler{
		store:     store,
		bucket:    bucket,
		region:    region,
		publicURL: publicURL,
		logger:    logger,
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Create accepts a multipart cover image, stores it, and returns the public
// URL the client passes back as a post's image_url.
func (h *UploadsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "image file is required", nil)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		ext, ok := imageExtensions[contentType]
		if !ok {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed",
				map[string]string{"image": "unsupported content type " + contentType})
			return
		}

		key := "images/" + uuid.NewString() + ext
		if err := h.store.Upload(r.Context(), key, file, contentType); err != nil {
			h.logger.Error("image upload failed", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
			return
		}

		writeJSON(w, http.StatusCreated, uploadResponse{URL: h.objectURL(key)})
	}
}

func (h *UploadsHandler) objectURL(key string) string {
	if h.publicURL != "" {
		return h.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.bucket, h.region, key)
}
