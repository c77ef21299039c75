package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
	"github.com/vasiliy-maslov/course-marketplace/internal/purchase"
)

type PurchaseRequest struct {
	CourseID string `json:"courseId" validate:"required,uuid"`
}

type PurchaseResponse struct {
	Message    string    `json:"message"`
	PurchaseID uuid.UUID `json:"purchaseId"`
	CourseID   uuid.UUID `json:"courseId"`
}

type PurchaseItem struct {
	ID          uuid.UUID     `json:"id"`
	CourseID    uuid.UUID     `json:"courseId"`
	PurchasedAt time.Time     `json:"purchasedAt"`
	Course      course.Course `json:"course"`
}

type PurchasesResponse struct {
	Message   string         `json:"message"`
	Purchases []PurchaseItem `json:"purchases"`
}

type PurchaseHandler struct {
	errorResponder
	service purchase.Service
	tokens  TokenVerifier
}

func NewPurchaseHandler(service purchase.Service, tokens TokenVerifier, showErrorDetail bool) *PurchaseHandler {
	return &PurchaseHandler{
		errorResponder: errorResponder{showDetail: showErrorDetail},
		service:        service,
		tokens:         tokens,
	}
}

func (h *PurchaseHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.tokens, auth.ScopeUser))
		r.Post("/course/purchase", h.handlePurchase)
		r.Get("/user/purchases", h.handleListPurchases)
	})
}

func (h *PurchaseHandler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	user, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgNotSignedIn)
		return
	}

	req, reqErr := decodeRequest[PurchaseRequest](r)
	if reqErr != nil {
		reqErr.write(w)
		return
	}

	courseID, err := uuid.FromString(req.CourseID)
	if err != nil {
		log.Warn().Err(err).Str("course_id", req.CourseID).Msg("Failed to parse course id")
		respondWithError(w, http.StatusBadRequest, "Invalid courseId")
		return
	}

	p, err := h.service.Purchase(r.Context(), user.ID, courseID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, PurchaseResponse{
		Message:    "Course purchased",
		PurchaseID: p.ID,
		CourseID:   p.CourseID,
	})
}

func (h *PurchaseHandler) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	user, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgNotSignedIn)
		return
	}

	details, err := h.service.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	items := make([]PurchaseItem, 0, len(details))
	for _, d := range details {
		items = append(items, PurchaseItem{
			ID:          d.ID,
			CourseID:    d.CourseID,
			PurchasedAt: d.CreatedAt,
			Course:      d.Course,
		})
	}

	respondWithJSON(w, http.StatusOK, PurchasesResponse{Message: "Purchases fetched", Purchases: items})
}
