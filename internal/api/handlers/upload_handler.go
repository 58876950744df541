package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/circuitgen-be/internal/media"
	"github.com/isdelr/circuitgen-be/internal/validation"
	"github.com/rs/zerolog/log"
)

// MaxUploadSize caps the multipart body of an image upload.
const MaxUploadSize = 10 << 20

// UploadHandler forwards images to the configured image host.
type UploadHandler struct {
	host media.ImageHost
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(host media.ImageHost) *UploadHandler {
	return &UploadHandler{host: host}
}

// UploadResponse carries the public URL of an uploaded image.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload handles POST /api/upload with a multipart "file" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidationError(w, validation.New("file", "required", "file is required"))
		return
	}
	defer file.Close()

	url, err := h.host.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, media.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "Image upload is not configured")
			return
		}
		log.Error().Err(err).Str("filename", header.Filename).Msg("Image upload failed")
		writeError(w, http.StatusBadGateway, "Image upload failed")
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}
