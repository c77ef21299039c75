package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/account"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
)

type TokenIssuer interface {
	Issue(scope auth.Scope, subjectID uuid.UUID, email string) (string, time.Time, error)
}

type SignUpRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AccountHandler serves signup and signin for one identity space, mounted
// under /user or /admin.
type AccountHandler struct {
	errorResponder
	service account.Service
	tokens  TokenIssuer
	scope   auth.Scope
}

func NewAccountHandler(service account.Service, tokens TokenIssuer, scope auth.Scope, showErrorDetail bool) *AccountHandler {
	return &AccountHandler{
		errorResponder: errorResponder{showDetail: showErrorDetail},
		service:        service,
		tokens:         tokens,
		scope:          scope,
	}
}

func (h *AccountHandler) RegisterRoutes(router chi.Router) {
	prefix := "/" + h.scope.String()
	router.Post(prefix+"/signup", h.handleSignUp)
	router.Post(prefix+"/signin", h.handleSignIn)
}

func (h *AccountHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	req, reqErr := decodeRequest[SignUpRequest](r)
	if reqErr != nil {
		reqErr.write(w)
		return
	}

	created, err := h.service.SignUp(r.Context(), account.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, created, "Signed up successfully")
}

func (h *AccountHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	req, reqErr := decodeRequest[SignInRequest](r)
	if reqErr != nil {
		reqErr.write(w)
		return
	}

	found, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, found, "Signed in successfully")
}

func (h *AccountHandler) respondWithToken(w http.ResponseWriter, r *http.Request, code int, a *account.Account, message string) {
	token, expiresAt, err := h.tokens.Issue(h.scope, a.ID, a.Email)
	if err != nil {
		log.Error().Err(err).Str("scope", h.scope.String()).Stringer("account_id", a.ID).Msg("Failed to issue token")
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, code, TokenResponse{
		Message:   message,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
