package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/domain/auth"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/response"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/oauth"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStatePath   = "/api/v1/auth/oauth/callback/google"
)

type AuthHandler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	VerifyOTP(w http.ResponseWriter, r *http.Request)
	ResendOTP(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService    jwt.Service
	authService   auth.AuthService
	googleService oauth.GoogleService
	frontendURL   string
	secureCookies bool
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService, googleService oauth.GoogleService, frontendURL string, secureCookies bool) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:    jwtService,
		authService:   authService,
		googleService: googleService,
		frontendURL:   frontendURL,
		secureCookies: secureCookies,
	}
}

func sessionFromRequest(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func (a *AuthHandlerImpl) setRefreshCookie(w http.ResponseWriter, resp auth.AuthResponse) {
	http.SetCookie(w, a.jwtService.RefreshTokenCookie(resp.RefreshToken, resp.RefreshTokenExpiresIn))
}

// Signup implements AuthHandler.
func (a *AuthHandlerImpl) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Signup decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := a.authService.Signup(r.Context(), req)
	if err != nil {
		slog.Error("Signup service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Account created, check your email for the verification code", resp)
}

// VerifyOTP implements AuthHandler.
func (a *AuthHandlerImpl) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("VerifyOTP decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := a.authService.VerifyOTP(r.Context(), req, sessionFromRequest(r))
	if err != nil {
		slog.Warn("VerifyOTP failed", "error", err)
		response.HandleError(w, err)
		return
	}

	a.setRefreshCookie(w, resp)
	response.SuccessWithMessage(w, "Email verified successfully", resp)
}

// ResendOTP implements AuthHandler.
func (a *AuthHandlerImpl) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ResendOTP decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := a.authService.ResendOTP(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "A new verification code has been sent", resp)
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := a.authService.Login(r.Context(), req, sessionFromRequest(r))
	if err != nil {
		slog.Warn("Login failed", "error", err)
		response.HandleError(w, err)
		return
	}

	a.setRefreshCookie(w, resp)
	slog.Info("User logged in successfully", "user_id", resp.User.ID)
	response.SuccessWithMessage(w, "User logged in successfully", resp)
}

// LoginWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	state, err := a.googleService.GenerateState()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     oauthStatePath,
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, a.googleService.RedirectURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle implements AuthHandler.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	redirectWithError := func(code string) {
		redirectURL := fmt.Sprintf("%s/auth/callback?error=%s", a.frontendURL, url.QueryEscape(code))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	// the state cookie is single use
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     oauthStatePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
	})

	query := r.URL.Query()
	if errorValue := query.Get("error"); errorValue != "" {
		slog.Warn("Google sign-in aborted", "error", errorValue)
		redirectWithError(errorValue)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		slog.Warn("OAuth state mismatch", "error", auth.ErrOAuthStateMismatch)
		redirectWithError("state_mismatch")
		return
	}

	code := query.Get("code")
	if code == "" {
		redirectWithError("code_empty")
		return
	}

	resp, err := a.authService.LoginWithGoogle(r.Context(), code, sessionFromRequest(r))
	if err != nil {
		slog.Error("Failed to login with Google", "error", err)
		switch {
		case errors.Is(err, auth.ErrAccountRejected):
			redirectWithError("account_rejected")
		case errors.Is(err, auth.ErrOAuthEmailUnverified):
			redirectWithError("email_unverified")
		default:
			redirectWithError("login_failed")
		}
		return
	}

	a.setRefreshCookie(w, resp)
	slog.Info("User logged in via Google", "user_id", resp.User.ID)

	// the token goes in the fragment, never the query
	fragment := url.Values{}
	fragment.Set("access_token", resp.AccessToken)
	fragment.Set("expires_in", fmt.Sprint(resp.AccessTokenExpiresIn))
	fragment.Set("status", resp.User.Status)
	http.Redirect(w, r, a.frontendURL+"/auth/callback#"+fragment.Encode(), http.StatusTemporaryRedirect)
}

// RefreshToken implements AuthHandler.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshTokenRequest

	// Try to get refresh token from cookie first (preferred method)
	if cookie, err := r.Cookie("refresh_token"); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Refresh Token decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := a.authService.RefreshToken(r.Context(), req)
	if err != nil {
		slog.Warn("Refresh Token failed", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Token refreshed successfully", resp)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshTokenRequest
	if cookie, err := r.Cookie("refresh_token"); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	if err := a.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.ClearRefreshTokenCookie())
	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

// Me implements AuthHandler.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := a.authService.Me(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}
