package api

import (
	"context"
	"net/http"

	customerror "github.com/ukane-philemon/mentorship/internal/errors"
	"github.com/ukane-philemon/mentorship/internal/jwt"
)

type ctxKey string

const (
	jwtHeader   = "Mentorship-Authentication-Token"
	adminCtxKey = ctxKey("adminID")
)

// AuthMiddleware ensures the correct and valid auth token is provided in
// this request. Requests without a token pass through unauthenticated.
func AuthMiddleware(jwtManager *jwt.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			authToken := req.Header.Get(jwtHeader)
			if authToken == "" {
				next.ServeHTTP(res, req)
				return
			}

			adminID, validToken := jwtManager.IsValidToken(authToken)
			if !validToken {
				writeFailed(res, http.StatusForbidden, &customerror.ErrorUnauthorized{})
				return
			}

			// Set the adminCtxKey for use by subsequent handlers.
			req = req.WithContext(context.WithValue(req.Context(), adminCtxKey, adminID))
			next.ServeHTTP(res, req)
		})
	}
}

// requireAdmin rejects unauthenticated requests when admin authentication is
// enabled.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		if s.authEnabled() && !reqAuthenticated(req.Context()) {
			writeFailed(res, http.StatusForbidden, &customerror.ErrorUnauthorized{})
			return
		}
		next.ServeHTTP(res, req)
	})
}

// reqAuthenticated checks that the request is authenticated.
func reqAuthenticated(ctx context.Context) bool {
	adminID, _ := ctx.Value(adminCtxKey).(string)
	return adminID != ""
}
