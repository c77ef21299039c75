package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
)

type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,notblank,min=3,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"gt=0,max=99999999.99,cents"`
	ImageURL    string  `json:"imageUrl" validate:"required,url"`
}

type UpdateCourseRequest struct {
	CourseID    string   `json:"courseId" validate:"required,uuid"`
	Title       *string  `json:"title,omitempty" validate:"omitempty,notblank,min=3,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0,max=99999999.99,cents"`
	ImageURL    *string  `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

type CourseResponse struct {
	Message  string        `json:"message"`
	CourseID uuid.UUID     `json:"courseId"`
	Course   course.Course `json:"course"`
}

type CoursesResponse struct {
	Message string          `json:"message"`
	Courses []course.Course `json:"courses"`
}

type CourseHandler struct {
	errorResponder
	service course.Service
	tokens  TokenVerifier
}

func NewCourseHandler(service course.Service, tokens TokenVerifier, showErrorDetail bool) *CourseHandler {
	return &CourseHandler{
		errorResponder: errorResponder{showDetail: showErrorDetail},
		service:        service,
		tokens:         tokens,
	}
}

func (h *CourseHandler) RegisterRoutes(router chi.Router) {
	router.Get("/course/preview", h.handlePreview)

	router.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.tokens, auth.ScopeAdmin))
		r.Post("/admin/course", h.handleCreateCourse)
		r.Put("/admin/course", h.handleUpdateCourse)
		r.Get("/admin/course/bulk", h.handleListOwnCourses)
	})
}

func (h *CourseHandler) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	admin, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgNotSignedIn)
		return
	}

	req, reqErr := decodeRequest[CreateCourseRequest](r)
	if reqErr != nil {
		reqErr.write(w)
		return
	}

	created, err := h.service.Create(r.Context(), admin.ID, course.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, CourseResponse{
		Message:  "Course created",
		CourseID: created.ID,
		Course:   *created,
	})
}

func (h *CourseHandler) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	admin, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgNotSignedIn)
		return
	}

	req, reqErr := decodeRequest[UpdateCourseRequest](r)
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

	updated, err := h.service.Update(r.Context(), admin.ID, courseID, course.Patch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, CourseResponse{
		Message:  "Course updated",
		CourseID: updated.ID,
		Course:   *updated,
	})
}

func (h *CourseHandler) handleListOwnCourses(w http.ResponseWriter, r *http.Request) {
	admin, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgNotSignedIn)
		return
	}

	courses, err := h.service.ListByCreator(r.Context(), admin.ID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, CoursesResponse{Message: "Courses fetched", Courses: courses})
}

func (h *CourseHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var (
		courses []course.Course
		err     error
	)

	if creatorParam := r.URL.Query().Get("creatorId"); creatorParam != "" {
		creatorID, parseErr := uuid.FromString(creatorParam)
		if parseErr != nil {
			log.Warn().Err(parseErr).Str("creator_id", creatorParam).Msg("Failed to parse creatorId query parameter")
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Message: "Validation failed",
				Errors:  []FieldError{{Field: "creatorId", Message: "Field 'creatorId' must be a valid UUID"}},
			})
			return
		}
		courses, err = h.service.ListByCreator(r.Context(), creatorID)
	} else {
		courses, err = h.service.List(r.Context())
	}
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, CoursesResponse{Message: "Courses fetched", Courses: courses})
}
