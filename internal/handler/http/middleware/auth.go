package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/auth"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/response"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
)

// AuthRequired rejects requests without a valid access token. It expects
// jwtauth.Verifier to have run first.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != jwt.TokenTypeAccess {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
