package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
)

type TokenVerifier interface {
	Verify(scope auth.Scope, token string) (*auth.Identity, error)
}

type identityKey struct{}

// RequestLogger logs every request once it has been served.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("Request served")
		}()

		next.ServeHTTP(ww, r)
	})
}

// RequireAuth rejects requests without a valid token of the given scope and
// stores the verified identity in the request context.
func RequireAuth(tokens TokenVerifier, scope auth.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				respondWithError(w, http.StatusUnauthorized, msgNotSignedIn)
				return
			}

			identity, err := tokens.Verify(scope, token)
			if err != nil {
				log.Warn().Err(err).Str("scope", scope.String()).Str("path", r.URL.Path).Msg("Rejected token")
				respondWithError(w, http.StatusUnauthorized, msgNotSignedIn)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts both "Bearer <token>" and a bare token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*auth.Identity)
	return identity, ok
}
