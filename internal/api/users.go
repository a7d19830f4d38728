package api

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/auth"
	"github.com/ecoexchange/recycle/internal/metrics"
	"github.com/ecoexchange/recycle/internal/model"
	"github.com/ecoexchange/recycle/internal/store"
)

// UsersHandler handles registration, login and account management.
type UsersHandler struct {
	errorPolicy
	Users     *store.UserRepository
	Settings  *store.SettingsRepository
	JWTSecret string
	Metrics   *metrics.Metrics
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var missing []string
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		h.writeError(w, r, apperr.MissingFields(missing...))
		return
	}

	email, err := model.NormalizeEmail(req.Email)
	if err != nil {
		h.writeError(w, r, apperr.Validation(err.Error()))
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		h.writeError(w, r, apperr.Validation(err.Error()))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.Users.Create(r.Context(), email, strings.TrimSpace(req.Name), hash, model.RoleUser)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("user_registered")
	log.WithFields(log.Fields{"user": user.Email, "id": user.ID}).Info("user registered")
	jsonResponse(w, http.StatusCreated, user)
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, apperr.ErrNotFound) {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.Metrics.Event("login_failed")
		log.WithFields(log.Fields{"user": user.Email, "remote": clientIP(r)}).Warn("login failed")
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user.Status == model.UserStatusBlocked {
		log.WithFields(log.Fields{"user": user.Email, "remote": clientIP(r)}).Warn("blocked user tried to log in")
		jsonError(w, http.StatusForbidden, "account is blocked")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.WithFields(log.Fields{"user": user.Email, "role": user.Role}).Info("user logged in")
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := h.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Logout handles POST /api/users/logout by revoking the presented token.
func (h *UsersHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if err := h.Settings.RevokeToken(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.writeError(w, r, err)
		return
	}

	log.WithField("user", claims.Email).Info("user logged out")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/users/me/password.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		h.writeError(w, r, apperr.Validation(err.Error()))
		return
	}

	user, err := h.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Users.UpdatePassword(r.Context(), claims.UserID, hash); err != nil {
		h.writeError(w, r, err)
		return
	}

	log.WithField("user", claims.Email).Info("user changed own password")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// List handles GET /api/users (admin).
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// SetRole handles PUT /api/users/{id}/role (admin).
func (h *UsersHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "user")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if id == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot change your own role")
		return
	}

	if err := h.Users.UpdateRole(r.Context(), id, req.Role); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.WithFields(log.Fields{
		"user":        claims.Email,
		"target_user": user.Email,
		"new_role":    req.Role,
	}).Info("user role updated")
	jsonResponse(w, http.StatusOK, user)
}

// UpdateMe handles PUT /api/users/me. Only the display name is editable.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Users.UpdateName(r.Context(), claims.UserID, req.Name); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.WithField("user", claims.Email).Info("user updated profile")
	jsonResponse(w, http.StatusOK, user)
}

// SetStatus handles PUT /api/users/{id}/status (admin).
func (h *UsersHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "user")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if id == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot change your own status")
		return
	}

	existing, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Users.SetStatus(r.Context(), id, req.Status); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("user_" + req.Status)
	log.WithFields(log.Fields{
		"user":            claims.Email,
		"target_user":     user.Email,
		"previous_status": existing.Status,
		"status":          req.Status,
	}).Info("user status updated")
	jsonResponse(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id} (admin). Accounts that still own
// listings or applications are refused.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "user")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if id == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	removed, err := h.Users.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !removed {
		h.writeError(w, r, apperr.NotFound("user not found"))
		return
	}

	h.Metrics.Event("user_deleted")
	log.WithFields(log.Fields{"user": claims.Email, "target_user": id}).Info("user deleted")
	jsonResponse(w, http.StatusOK, mutationResponse{Success: true, Message: "User deleted successfully"})
}
