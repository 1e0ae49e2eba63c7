package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/officecorner/officecorner-backend-go/internal/domain/auth"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFrontendURL = "http://app.test"

type fakeAuthService struct {
	auth.AuthService

	signupFn   func(req auth.SignupRequest) (auth.SignupResponse, error)
	verifyFn   func(req auth.VerifyOTPRequest) (auth.AuthResponse, error)
	loginFn    func(req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.AuthResponse, error)
	googleFn   func(code string) (auth.AuthResponse, error)
	refreshFn  func(req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error)
	loggedOut  []string
	logoutErr  error
	signupReqs int
}

func (f *fakeAuthService) Signup(ctx context.Context, req auth.SignupRequest) (auth.SignupResponse, error) {
	f.signupReqs++
	return f.signupFn(req)
}

func (f *fakeAuthService) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest, session auth.SessionTrackingRequest) (auth.AuthResponse, error) {
	return f.verifyFn(req)
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.AuthResponse, error) {
	return f.loginFn(req, session)
}

func (f *fakeAuthService) LoginWithGoogle(ctx context.Context, code string, session auth.SessionTrackingRequest) (auth.AuthResponse, error) {
	return f.googleFn(code)
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	return f.refreshFn(req)
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error {
	f.loggedOut = append(f.loggedOut, refreshToken)
	return f.logoutErr
}

type fakeGoogle struct {
	state string
}

func (f *fakeGoogle) GenerateState() (string, error) { return f.state, nil }

func (f *fakeGoogle) RedirectURL(state string) string {
	return "https://accounts.google.test/auth?state=" + state
}

func (f *fakeGoogle) FetchUser(ctx context.Context, code string) (oauth.GoogleUser, error) {
	return oauth.GoogleUser{}, nil
}

func newTestAuthHandler(t *testing.T, svc *fakeAuthService) AuthHandler {
	t.Helper()
	jwtService, err := jwt.NewJWTService("test-secret", "15m", "24h", false)
	require.NoError(t, err)
	return NewAuthHandler(jwtService, svc, &fakeGoogle{state: "state-123"}, testFrontendURL, false)
}

func sampleAuthResponse(status user.Status) auth.AuthResponse {
	return auth.AuthResponse{
		TokenResponse: auth.TokenResponse{
			AccessToken:           "access-token",
			AccessTokenExpiresIn:  1700000000,
			RefreshToken:          "refresh-token",
			RefreshTokenExpiresIn: 1700086400,
		},
		User: user.UserResponse{ID: "u-1", Email: "jane@example.com", Role: string(user.RoleEmployee), Status: string(status)},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAuthHandler_Signup(t *testing.T) {
	svc := &fakeAuthService{
		signupFn: func(req auth.SignupRequest) (auth.SignupResponse, error) {
			assert.Equal(t, "jane@example.com", req.Email)
			return auth.SignupResponse{
				User:              user.UserResponse{ID: "u-1", Email: req.Email, Status: string(user.StatusPending)},
				OTPExpiresIn:      600,
				ResendAvailableIn: 60,
			}, nil
		},
	}
	h := newTestAuthHandler(t, svc)

	rec := postJSON(h.Signup, `{"name":"Jane","email":" Jane@Example.com ","password":"password123","confirm_password":"password123"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 600, data["otp_expires_in"])
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	svc := &fakeAuthService{}
	h := newTestAuthHandler(t, svc)

	rec := postJSON(h.Signup, `{"name":"Jane","email":"jane@example.com","password":"password123","confirm_password":"different"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeEnvelope(t, rec)
	details := body["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "confirm_password")
	assert.Zero(t, svc.signupReqs)
}

func TestAuthHandler_InvalidJSON(t *testing.T) {
	h := newTestAuthHandler(t, &fakeAuthService{})

	for name, fn := range map[string]http.HandlerFunc{
		"signup":     h.Signup,
		"verify-otp": h.VerifyOTP,
		"resend-otp": h.ResendOTP,
		"login":      h.Login,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(fn, `{"email":`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAuthHandler_VerifyOTP_SetsRefreshCookie(t *testing.T) {
	svc := &fakeAuthService{
		verifyFn: func(req auth.VerifyOTPRequest) (auth.AuthResponse, error) {
			assert.Equal(t, "123456", req.Code)
			return sampleAuthResponse(user.StatusPending), nil
		},
	}
	h := newTestAuthHandler(t, svc)

	rec := postJSON(h.VerifyOTP, `{"email":"jane@example.com","code":"123456"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Equal(t, "refresh-token", cookies[0].Value)
}

func TestAuthHandler_VerifyOTP_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"wrong code", auth.ErrOTPInvalid, http.StatusBadRequest},
		{"expired", auth.ErrOTPExpired, http.StatusBadRequest},
		{"locked", auth.ErrOTPAttemptsExceeded, http.StatusTooManyRequests},
		{"already verified", auth.ErrEmailAlreadyVerified, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{
				verifyFn: func(auth.VerifyOTPRequest) (auth.AuthResponse, error) { return auth.AuthResponse{}, tt.err },
			}
			rec := postJSON(newTestAuthHandler(t, svc).VerifyOTP, `{"email":"jane@example.com","code":"000000"}`)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuthService{
			loginFn: func(req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.AuthResponse, error) {
				assert.Equal(t, "test-agent", session.UserAgent)
				return sampleAuthResponse(user.StatusApproved), nil
			},
		}
		h := newTestAuthHandler(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"jane@example.com","password":"password123"}`))
		req.Header.Set("User-Agent", "test-agent")
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, "access-token", data["access_token"])
		assert.Equal(t, "approved", data["user"].(map[string]interface{})["status"])
	})

	t.Run("unverified email", func(t *testing.T) {
		svc := &fakeAuthService{
			loginFn: func(auth.LoginRequest, auth.SessionTrackingRequest) (auth.AuthResponse, error) {
				return auth.AuthResponse{}, auth.ErrEmailNotVerified
			},
		}
		rec := postJSON(newTestAuthHandler(t, svc).Login, `{"email":"jane@example.com","password":"password123"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := &fakeAuthService{
			loginFn: func(auth.LoginRequest, auth.SessionTrackingRequest) (auth.AuthResponse, error) {
				return auth.AuthResponse{}, auth.ErrInvalidCredentials
			},
		}
		rec := postJSON(newTestAuthHandler(t, svc).Login, `{"email":"jane@example.com","password":"wrong-password"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_LoginWithGoogle_Redirect(t *testing.T) {
	h := newTestAuthHandler(t, &fakeAuthService{})

	rec := httptest.NewRecorder()
	h.LoginWithGoogle(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://accounts.google.test/auth?state=state-123", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	assert.Equal(t, "state-123", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_OAuthCallbackGoogle(t *testing.T) {
	callback := func(h AuthHandler, query string, state string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		if state != "" {
			req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: state})
		}
		rec := httptest.NewRecorder()
		h.OAuthCallbackGoogle(rec, req)
		return rec
	}

	t.Run("success puts token in fragment", func(t *testing.T) {
		svc := &fakeAuthService{
			googleFn: func(code string) (auth.AuthResponse, error) {
				assert.Equal(t, "auth-code", code)
				return sampleAuthResponse(user.StatusPending), nil
			},
		}
		rec := callback(newTestAuthHandler(t, svc), "state=abc&code=auth-code", "abc")

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Empty(t, loc.RawQuery)
		fragment, err := url.ParseQuery(loc.Fragment)
		require.NoError(t, err)
		assert.Equal(t, "access-token", fragment.Get("access_token"))
		assert.Equal(t, "pending", fragment.Get("status"))
	})

	t.Run("state mismatch", func(t *testing.T) {
		rec := callback(newTestAuthHandler(t, &fakeAuthService{}), "state=abc&code=auth-code", "other")
		assert.Equal(t, testFrontendURL+"/auth/callback?error=state_mismatch", rec.Header().Get("Location"))
	})

	t.Run("missing code", func(t *testing.T) {
		rec := callback(newTestAuthHandler(t, &fakeAuthService{}), "state=abc", "abc")
		assert.Equal(t, testFrontendURL+"/auth/callback?error=code_empty", rec.Header().Get("Location"))
	})

	t.Run("rejected account", func(t *testing.T) {
		svc := &fakeAuthService{
			googleFn: func(string) (auth.AuthResponse, error) { return auth.AuthResponse{}, auth.ErrAccountRejected },
		}
		rec := callback(newTestAuthHandler(t, svc), "state=abc&code=auth-code", "abc")
		assert.Equal(t, testFrontendURL+"/auth/callback?error=account_rejected", rec.Header().Get("Location"))
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	svc := &fakeAuthService{
		refreshFn: func(req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
			if req.RefreshToken != "cookie-token" && req.RefreshToken != "body-token" {
				return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
			}
			return auth.AccessTokenResponse{AccessToken: "new-access", AccessTokenExpiresIn: 1700000000}, nil
		},
	}
	h := newTestAuthHandler(t, svc)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "cookie-token"})
		rec := httptest.NewRecorder()
		h.RefreshToken(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("body", func(t *testing.T) {
		rec := postJSON(h.RefreshToken, `{"refresh_token":"body-token"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("revoked", func(t *testing.T) {
		rec := postJSON(h.RefreshToken, `{"refresh_token":"stale"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := postJSON(h.RefreshToken, `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &fakeAuthService{}
	h := newTestAuthHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "cookie-token"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cookie-token"}, svc.loggedOut)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Logout(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
