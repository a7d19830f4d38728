package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/metrics"
	"github.com/ecoexchange/recycle/internal/model"
	"github.com/ecoexchange/recycle/internal/store"
)

// ApplicationsHandler handles buy and sell request endpoints.
type ApplicationsHandler struct {
	errorPolicy
	Applications *store.ApplicationRepository
	Metrics      *metrics.Metrics
}

// List handles GET /api/applications?user_id=&status=.
func (h *ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	var f model.ApplicationFilter
	f.Status = r.URL.Query().Get("status")
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		n, err := intParam(raw, "user_id")
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		f.UserID = int64(n)
	}

	apps, err := h.Applications.List(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if apps == nil {
		apps = []model.Application{}
	}
	jsonResponse(w, http.StatusOK, apps)
}

// Get handles GET /api/applications/{id}.
func (h *ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "application")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	app, err := h.Applications.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, app)
}

// Create handles POST /api/applications. The caller becomes the owner.
func (h *ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var in model.ApplicationInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.UserID = claims.UserID

	app, err := h.Applications.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("application_created")
	log.WithFields(log.Fields{
		"user":        claims.Email,
		"application": app.ID,
		"deal_type":   app.DealType,
	}).Info("application created")
	jsonResponse(w, http.StatusCreated, app)
}

// Update handles PUT /api/applications/{id}. Only the owner may edit the
// request body; moderators go through SetStatus.
func (h *ApplicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "application")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var patch model.ApplicationPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Empty() {
		h.writeError(w, r, apperr.ErrNoFields)
		return
	}

	existing, err := h.Applications.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if existing.UserID != claims.UserID {
		h.writeError(w, r, apperr.Forbidden("only the owner can edit this application"))
		return
	}

	if err := h.Applications.Update(r.Context(), id, patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	app, err := h.Applications.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("application_updated")
	log.WithFields(log.Fields{"user": claims.Email, "application": id}).Info("application updated")
	jsonResponse(w, http.StatusOK, app)
}

// SetStatus handles PUT /api/applications/{id}/status.
func (h *ApplicationsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "application")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authorize(r, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Applications.SetStatus(r.Context(), id, req.Status); err != nil {
		h.writeError(w, r, err)
		return
	}

	app, err := h.Applications.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("application_" + req.Status)
	log.WithFields(log.Fields{
		"user":        claims.Email,
		"application": id,
		"status":      req.Status,
	}).Info("application status changed")
	jsonResponse(w, http.StatusOK, app)
}

// Delete handles DELETE /api/applications/{id}.
func (h *ApplicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "application")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.authorize(r, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	removed, err := h.Applications.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !removed {
		h.writeError(w, r, apperr.NotFound("application not found"))
		return
	}

	log.WithFields(log.Fields{"user": claims.Email, "application": id}).Info("application deleted")
	jsonResponse(w, http.StatusOK, mutationResponse{Success: true, Message: "Application deleted successfully"})
}

// authorize allows the owner of an application or a moderator.
func (h *ApplicationsHandler) authorize(r *http.Request, id int64) error {
	claims := GetClaims(r.Context())
	app, err := h.Applications.Get(r.Context(), id)
	if err != nil {
		return err
	}
	if app.UserID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleModerator) {
		return apperr.Forbidden("only the owner or a moderator can change this application")
	}
	return nil
}
