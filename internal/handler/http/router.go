package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/account"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
	"github.com/vasiliy-maslov/course-marketplace/internal/purchase"
	"github.com/vasiliy-maslov/course-marketplace/internal/storage"
)

const requestTimeout = 30 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Tokens interface {
	TokenIssuer
	TokenVerifier
}

type RouterDeps struct {
	Users     account.Service
	Admins    account.Service
	Courses   course.Service
	Purchases purchase.Service
	Tokens    Tokens
	// Images is nil when object storage is not configured.
	Images storage.ImageSigner
	DB     Pinger

	CORSAllowedOrigins []string
	ShowErrorDetail    bool
}

func NewRouter(d RouterDeps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(cors.New(cors.Options{
		AllowedOrigins: d.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	router.Get("/health", handleHealth(d.DB))

	NewAccountHandler(d.Users, d.Tokens, auth.ScopeUser, d.ShowErrorDetail).RegisterRoutes(router)
	NewAccountHandler(d.Admins, d.Tokens, auth.ScopeAdmin, d.ShowErrorDetail).RegisterRoutes(router)
	NewCourseHandler(d.Courses, d.Tokens, d.ShowErrorDetail).RegisterRoutes(router)
	NewPurchaseHandler(d.Purchases, d.Tokens, d.ShowErrorDetail).RegisterRoutes(router)
	if d.Images != nil {
		NewUploadHandler(d.Images, d.Tokens, d.ShowErrorDetail).RegisterRoutes(router)
	}

	return router
}

func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unavailable"))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
