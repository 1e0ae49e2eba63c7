// Package jwttest builds request contexts carrying signed access token claims.
package jwttest

import (
	"context"
	"testing"

	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/require"
)

func Context(t *testing.T, userID string, role user.Role, status user.Status) context.Context {
	t.Helper()
	svc, err := jwt.NewJWTService("test-secret", "15m", "24h", false)
	require.NoError(t, err)

	token, _, err := svc.GenerateAccessToken(userID, userID+"@example.com", role, status)
	require.NoError(t, err)

	ctx, err := jwt.WithClaims(context.Background(), svc.JWTAuth(), token)
	require.NoError(t, err)
	return ctx
}

func Admin(t *testing.T, userID string) context.Context {
	return Context(t, userID, user.RoleAdmin, user.StatusApproved)
}

func Employee(t *testing.T, userID string) context.Context {
	return Context(t, userID, user.RoleEmployee, user.StatusApproved)
}
