package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ecoexchange/recycle/internal/metrics"
	"github.com/ecoexchange/recycle/internal/model"
	"github.com/ecoexchange/recycle/internal/store"
)

// NotificationsHandler serves the per-user notification inbox.
type NotificationsHandler struct {
	errorPolicy
	Notifications *store.NotificationRepository
	Metrics       *metrics.Metrics
}

type markAllResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}

// List handles GET /api/users/me/notifications, newest first.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	list, err := h.Notifications.List(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Create handles POST /api/notifications (moderator+).
func (h *NotificationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var in model.NotificationInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Notifications.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("notification_created")
	log.WithFields(log.Fields{
		"user":         claims.Email,
		"recipient":    n.UserID,
		"notification": n.ID,
	}).Info("notification sent")
	jsonResponse(w, http.StatusCreated, n)
}

// MarkRead handles PUT /api/users/me/notifications/{id}/read. Other users'
// notifications are reported as missing.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "notification")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	n, err := h.Notifications.MarkRead(r.Context(), claims.UserID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, n)
}

// MarkAllRead handles PUT /api/users/me/notifications/read.
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	updated, err := h.Notifications.MarkAllRead(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, markAllResponse{Success: true, Updated: updated})
}
