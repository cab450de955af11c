package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/marmos91/smbmanager/internal/controlplane/api/auth"
	"github.com/marmos91/smbmanager/internal/controlplane/api/middleware"
	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
)

// AuthHandler serves login, token refresh and the current account.
type AuthHandler struct {
	store      store.UserStore
	jwtService *auth.JWTService
}

func NewAuthHandler(s store.UserStore, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{store: s, jwtService: jwtService}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse is returned by login, refresh and password changes.
type LoginResponse struct {
	auth.TokenPair
	User UserResponse `json:"user"`
}

// UserResponse is an account without its password hash.
type UserResponse struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"display_name,omitempty"`
	Role               string     `json:"role"`
	Enabled            bool       `json:"enabled"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		DisplayName:        u.DisplayName,
		Role:               u.Role,
		Enabled:            u.Enabled,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		LastLogin:          u.LastLogin,
	}
}

// Login handles POST /api/v1/auth/login. Unknown users and bad passwords
// get the same answer.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.store.ValidateCredentials(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrUserNotFound):
		Unauthorized(w, "Invalid username or password")
		return
	case errors.Is(err, models.ErrUserDisabled):
		Forbidden(w, "User account is disabled")
		return
	case err != nil:
		writeError(w, r, err, "Authentication failed")
		return
	}

	if err := h.store.UpdateLastLogin(r.Context(), user.Username, time.Now()); err != nil {
		logger.WarnCtx(r.Context(), "Failed to record last login", "username", user.Username, logger.Err(err))
	}
	logger.InfoCtx(r.Context(), "User logged in", logger.Actor(user.Username))
	issueTokens(w, r, h.jwtService, user)
}

// Refresh handles POST /api/v1/auth/refresh. The account is reloaded so a
// disabled or deleted user cannot keep refreshing.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		detail := "Invalid refresh token"
		if errors.Is(err, auth.ErrExpiredToken) {
			detail = "Refresh token has expired"
		}
		Unauthorized(w, detail)
		return
	}

	user, ok := loadCaller(w, r, h.store, claims.Username)
	if !ok {
		return
	}
	if !user.Enabled {
		Forbidden(w, "User account is disabled")
		return
	}
	issueTokens(w, r, h.jwtService, user)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := loadCaller(w, r, h.store, middleware.Actor(r.Context()))
	if !ok {
		return
	}
	WriteJSONOK(w, userToResponse(user))
}

// loadCaller fetches the account a token was issued to. A missing account
// means the token no longer identifies anyone, so it is a 401.
func loadCaller(w http.ResponseWriter, r *http.Request, s store.UserStore, username string) (*models.User, bool) {
	if username == "" {
		Unauthorized(w, "Authentication required")
		return nil, false
	}
	user, err := s.GetUser(r.Context(), username)
	if errors.Is(err, models.ErrUserNotFound) {
		Unauthorized(w, "User not found")
		return nil, false
	}
	if err != nil {
		writeError(w, r, err, "Failed to fetch user")
		return nil, false
	}
	return user, true
}

func issueTokens(w http.ResponseWriter, r *http.Request, svc *auth.JWTService, user *models.User) {
	pair, err := svc.GenerateTokenPair(user)
	if err != nil {
		writeError(w, r, err, "Failed to generate token")
		return
	}
	WriteJSONOK(w, LoginResponse{TokenPair: *pair, User: userToResponse(user)})
}
