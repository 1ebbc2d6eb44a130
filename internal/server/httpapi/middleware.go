package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mkaranov/brospace/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFromContext returns the authenticated user's ID placed there by
// requireAuth.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// requireAuth validates the bearer access token and stores the user ID in
// the request context. Expired tokens get a distinct error code so clients
// know a refresh may succeed.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			s.writeError(w, r, http.StatusUnauthorized, "missing token", codeInvalidToken)
			return
		}

		userID, err := s.users.VerifyAccessToken(strings.TrimPrefix(header, common.BearerPrefix))
		if err != nil {
			code := codeInvalidToken
			if errors.Is(err, common.ErrTokenExpired) {
				code = codeTokenExpired
			}
			s.writeError(w, r, http.StatusUnauthorized, err.Error(), code)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
