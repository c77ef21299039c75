package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
	"github.com/vasiliy-maslov/course-marketplace/internal/storage"
)

type ImageUploadRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/png image/jpeg image/webp"`
}

type ImageUploadResponse struct {
	Message   string    `json:"message"`
	UploadURL string    `json:"uploadUrl"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UploadHandler hands admins a pre-signed URL to upload a course cover image
// straight to object storage.
type UploadHandler struct {
	errorResponder
	signer storage.ImageSigner
	tokens TokenVerifier
}

func NewUploadHandler(signer storage.ImageSigner, tokens TokenVerifier, showErrorDetail bool) *UploadHandler {
	return &UploadHandler{
		errorResponder: errorResponder{showDetail: showErrorDetail},
		signer:         signer,
		tokens:         tokens,
	}
}

func (h *UploadHandler) RegisterRoutes(router chi.Router) {
	router.With(RequireAuth(h.tokens, auth.ScopeAdmin)).Post("/admin/course/image", h.handleCreateUploadURL)
}

func (h *UploadHandler) handleCreateUploadURL(w http.ResponseWriter, r *http.Request) {
	req, reqErr := decodeRequest[ImageUploadRequest](r)
	if reqErr != nil {
		reqErr.write(w)
		return
	}

	upload, err := h.signer.PresignCourseImage(r.Context(), req.ContentType)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ImageUploadResponse{
		Message:   "Upload URL created",
		UploadURL: upload.UploadURL,
		ImageURL:  upload.ImageURL,
		ExpiresAt: upload.ExpiresAt,
	})
}
