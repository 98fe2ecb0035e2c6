package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/server/auth"
)

type contextKey string

const publicKeyContextKey contextKey = "publicKey"

// withAuth requires a valid bearer token and stores the authenticated
// public key in the request context.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, common.ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}

		publicKey, err := auth.GetPublicKeyFromToken(token, []byte(s.config.SecretKey))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), publicKeyContextKey, publicKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func publicKeyFromContext(ctx context.Context) string {
	pub, _ := ctx.Value(publicKeyContextKey).(string)
	return pub
}
