package jwt

import (
	"context"
	"errors"

	"github.com/go-chi/jwtauth/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
)

var ErrMissingClaims = errors.New("missing or invalid token claims")

// Claims is the typed view of an access token.
type Claims struct {
	UserID string
	Email  string
	Role   user.Role
	Status user.Status
}

func (c Claims) IsAdmin() bool {
	return c.Role == user.RoleAdmin
}

// ClaimsFromContext extracts access token claims placed by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, errors.Join(ErrMissingClaims, err)
	}
	return ClaimsFromMap(claims)
}

func ClaimsFromMap(claims map[string]interface{}) (Claims, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrMissingClaims
	}
	role, _ := claims["role"].(string)
	status, _ := claims["status"].(string)
	email, _ := claims["email"].(string)

	return Claims{
		UserID: userID,
		Email:  email,
		Role:   user.Role(role),
		Status: user.Status(status),
	}, nil
}

// WithClaims returns a context carrying the given access token, as jwtauth.Verifier would.
func WithClaims(ctx context.Context, ja *jwtauth.JWTAuth, tokenString string) (context.Context, error) {
	token, err := jwtauth.VerifyToken(ja, tokenString)
	return jwtauth.NewContext(ctx, token, err), err
}
