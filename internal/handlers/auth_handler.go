package handlers

import (
	"net/http"
	"time"

	"antgiftbox/internal/models"
	"antgiftbox/internal/service"
)

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	authService   *service.AuthService
	socialService *service.SocialService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, socialService *service.SocialService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		socialService: socialService,
	}
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func newSessionResponse(session *models.Session, user *models.User) sessionResponse {
	return sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC(),
		User:      user,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	session, _, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(session, user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session, user))
}

// GoogleSignIn handles POST /auth/google
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "invalid-body", "Authorization code is required.")
		return
	}

	session, user, err := h.socialService.SignInWithGoogle(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session, user))
}

// AppleSignIn handles POST /auth/apple
func (h *AuthHandler) AppleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := decodeJSON(r, &req); err != nil || req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "invalid-body", "Identity token is required.")
		return
	}

	session, user, err := h.socialService.SignInWithApple(r.Context(), req.IDToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session, user))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.authService.Logout(token); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

// FlowStatus handles GET /auth/flow-status
func (h *AuthHandler) FlowStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	status, err := h.authService.FlowStatus(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// MarkPhoneVerified handles POST /auth/phone-verified
func (h *AuthHandler) MarkPhoneVerified(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := h.authService.MarkPhoneVerified(user.UID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CompleteOnboarding handles POST /auth/onboarding-completed
func (h *AuthHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := h.authService.CompleteOnboarding(user.UID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
