package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/marmos91/smbmanager/internal/controlplane/api/auth"
	"github.com/marmos91/smbmanager/internal/controlplane/api/middleware"
	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
)

// UserHandler manages control plane accounts.
type UserHandler struct {
	store      store.UserStore
	jwtService *auth.JWTService
}

// NewUserHandler needs jwtService to hand out fresh tokens after a
// password change.
func NewUserHandler(s store.UserStore, jwtService *auth.JWTService) (*UserHandler, error) {
	if jwtService == nil {
		return nil, errors.New("NewUserHandler: jwtService is required")
	}
	return &UserHandler{store: s, jwtService: jwtService}, nil
}

type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,max=64"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name,omitempty" validate:"max=128"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=viewer admin"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

// ChangePasswordRequest may omit CurrentPassword only while the account
// is flagged to change it.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// Create handles POST /api/v1/users. Admin accounts start flagged to
// change their password on first login.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	role := models.RoleViewer
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}
	hash, err := models.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err, "Failed to hash password")
		return
	}

	user := &models.User{
		ID:                 uuid.NewString(),
		Username:           req.Username,
		PasswordHash:       hash,
		DisplayName:        req.DisplayName,
		Role:               string(role),
		Enabled:            req.Enabled == nil || *req.Enabled,
		MustChangePassword: role == models.RoleAdmin,
	}
	if _, err := h.store.CreateUser(r.Context(), user); err != nil {
		writeError(w, r, err, "Failed to create user")
		return
	}
	logger.InfoCtx(r.Context(), "User created", "username", user.Username, "role", user.Role)
	WriteJSONCreated(w, userToResponse(user))
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list users")
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	WriteJSONOK(w, out)
}

// Delete handles DELETE /api/v1/users/{username}. The bootstrap admin and
// the caller's own account cannot be deleted.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := pathParam(r, "username")
	switch username {
	case "":
		BadRequest(w, "username is required")
		return
	case models.AdminUsername:
		Forbidden(w, "Cannot delete admin user")
		return
	case middleware.Actor(r.Context()):
		Forbidden(w, "Cannot delete your own account")
		return
	}

	if err := h.store.DeleteUser(r.Context(), username); err != nil {
		writeError(w, r, err, "Failed to delete user")
		return
	}
	logger.InfoCtx(r.Context(), "User deleted", "username", username)
	WriteNoContent(w)
}

// ChangeOwnPassword handles POST /api/v1/users/me/password and answers
// with a token pair that no longer carries the change-password flag.
func (h *UserHandler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	user, ok := loadCaller(w, r, h.store, middleware.Actor(r.Context()))
	if !ok {
		return
	}

	if !user.MustChangePassword {
		if req.CurrentPassword == "" {
			BadRequest(w, "current_password is required")
			return
		}
		if !models.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
			Unauthorized(w, "Current password is incorrect")
			return
		}
	}

	hash, err := models.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, r, err, "Failed to hash password")
		return
	}
	if err := h.store.UpdatePassword(r.Context(), user.Username, hash); err != nil {
		writeError(w, r, err, "Failed to update password")
		return
	}
	user.PasswordHash = hash
	user.MustChangePassword = false
	logger.InfoCtx(r.Context(), "Password changed", logger.Actor(user.Username))
	issueTokens(w, r, h.jwtService, user)
}
