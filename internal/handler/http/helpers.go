package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/account"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
	"github.com/vasiliy-maslov/course-marketplace/internal/purchase"
	"github.com/vasiliy-maslov/course-marketplace/internal/storage"
)

const (
	msgNotSignedIn    = "You are not signed in"
	msgInternalError  = "Internal server error"
	msgCourseNotFound = "Course not found"
)

type MessageResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, MessageResponse{Message: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, account.ErrEmailExists),
		errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrPasswordTooLong),
		errors.Is(err, course.ErrInvalidPrice),
		errors.Is(err, course.ErrInvalidTitle),
		errors.Is(err, purchase.ErrAlreadyPurchased),
		errors.Is(err, storage.ErrUnsupportedContentType):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, course.ErrCreatorNotFound),
		errors.Is(err, purchase.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, course.ErrNotFound),
		errors.Is(err, purchase.ErrCourseNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, account.ErrEmailExists):
		return "Email already registered"
	case errors.Is(err, account.ErrInvalidCredentials):
		return "Incorrect email or password"
	case errors.Is(err, account.ErrPasswordTooLong):
		return "Password must be at most 72 bytes long"
	case errors.Is(err, course.ErrInvalidPrice):
		return "Price must be between 0.01 and 99999999.99 with at most 2 decimal places"
	case errors.Is(err, course.ErrInvalidTitle):
		return "Title must be between 3 and 200 characters"
	case errors.Is(err, purchase.ErrAlreadyPurchased):
		return "Course already purchased"
	case errors.Is(err, storage.ErrUnsupportedContentType):
		return "Unsupported image content type"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, course.ErrCreatorNotFound),
		errors.Is(err, purchase.ErrUserNotFound):
		return msgNotSignedIn
	case errors.Is(err, course.ErrNotFound),
		errors.Is(err, purchase.ErrCourseNotFound):
		return msgCourseNotFound
	default:
		return msgInternalError
	}
}

// errorResponder writes service errors. The underlying error text is only
// exposed to clients when showDetail is set (development).
type errorResponder struct {
	showDetail bool
}

func (e errorResponder) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode != http.StatusInternalServerError {
		respondWithError(w, statusCode, clientMessage(err))
		return
	}

	log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")

	response := MessageResponse{Message: msgInternalError}
	if e.showDetail {
		response.Detail = err.Error()
	}
	respondWithJSON(w, statusCode, response)
}
