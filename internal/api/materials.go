package api

//go:generate mockgen -source=materials.go -destination=mock_material_store_test.go -package=api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/blob"
	"github.com/ecoexchange/recycle/internal/imaging"
	"github.com/ecoexchange/recycle/internal/metrics"
	"github.com/ecoexchange/recycle/internal/model"
)

// MaterialStore is the listing persistence used by MaterialsHandler.
// store.MaterialRepository satisfies it.
type MaterialStore interface {
	Create(ctx context.Context, in model.MaterialInput) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Material, error)
	FindAll(ctx context.Context) ([]model.Material, error)
	FindBySeller(ctx context.Context, sellerID int64) ([]model.Material, error)
	Search(ctx context.Context, q model.MaterialQuery) ([]model.Material, error)
	Update(ctx context.Context, id int64, patch model.MaterialPatch) error
	SetStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// Notifier delivers in-app notifications. store.NotificationRepository
// satisfies it.
type Notifier interface {
	Create(ctx context.Context, in model.NotificationInput) (*model.Notification, error)
}

// MaterialsHandler handles listing endpoints.
type MaterialsHandler struct {
	errorPolicy
	Store   MaterialStore
	Images  blob.Store
	Metrics *metrics.Metrics

	// Notifications tells sellers about moderation decisions. Optional.
	Notifications Notifier
}

type mutationResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Material *model.Material `json:"material,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// imageKey is the blob key of a listing photo.
func imageKey(id int64) string {
	return fmt.Sprintf("materials/%d.jpg", id)
}

// imageURL is the public path serving a listing photo.
func imageURL(id int64) string {
	return fmt.Sprintf("/api/materials/%d/image", id)
}

// List handles GET /api/materials.
func (h *MaterialsHandler) List(w http.ResponseWriter, r *http.Request) {
	materials, err := h.Store.FindAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	jsonResponse(w, http.StatusOK, materials)
}

// Search handles GET /api/materials/search.
func (h *MaterialsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, err := parseMaterialQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	materials, err := h.Store.Search(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	jsonResponse(w, http.StatusOK, materials)
}

func parseMaterialQuery(r *http.Request) (model.MaterialQuery, error) {
	params := r.URL.Query()
	q := model.MaterialQuery{
		Query:    params.Get("query"),
		Category: params.Get("category"),
		Sort:     params.Get("sort"),
		Status:   params.Get("status"),
	}
	var err error
	if q.Limit, err = intParam(params.Get("limit"), "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(params.Get("offset"), "offset"); err != nil {
		return q, err
	}
	return q, q.Validate()
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation(name + " must be a non-negative integer")
	}
	return n, nil
}

// Get handles GET /api/materials/{id}.
func (h *MaterialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "material")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	material, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, material)
}

// BySeller handles GET /api/users/{id}/materials.
func (h *MaterialsHandler) BySeller(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "user")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	materials, err := h.Store.FindBySeller(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	jsonResponse(w, http.StatusOK, materials)
}

// Create handles POST /api/materials. Moderators may list on behalf of any
// seller; everyone else only for themselves.
func (h *MaterialsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var in model.MaterialInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if in.SellerID != 0 && in.SellerID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleModerator) {
		h.writeError(w, r, apperr.Forbidden("cannot create listings for another seller"))
		return
	}

	id, err := h.Store.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	material, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("material_created")
	log.WithFields(log.Fields{
		"user":     claims.Email,
		"material": id,
		"category": material.Category,
	}).Info("material created")
	jsonResponse(w, http.StatusCreated, material)
}

// Update handles PUT /api/materials/{id}. Only the seller may edit.
func (h *MaterialsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "material")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var patch model.MaterialPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Empty() {
		h.writeError(w, r, apperr.ErrNoFields)
		return
	}

	existing, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if existing.SellerID != claims.UserID {
		h.writeError(w, r, apperr.Forbidden("only the seller can edit this listing"))
		return
	}

	if err := h.Store.Update(r.Context(), id, patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	material, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("material_updated")
	log.WithFields(log.Fields{"user": claims.Email, "material": id}).Info("material updated")
	jsonResponse(w, http.StatusOK, mutationResponse{
		Success:  true,
		Message:  "Material updated successfully",
		Material: material,
	})
}

// SetStatus handles PUT /api/materials/{id}/status (moderator+).
func (h *MaterialsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "material")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Store.SetStatus(r.Context(), id, req.Status); err != nil {
		h.writeError(w, r, err)
		return
	}

	material, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("material_" + req.Status)
	log.WithFields(log.Fields{
		"user":            claims.Email,
		"material":        id,
		"seller":          existing.SellerID,
		"previous_status": existing.Status,
		"status":          req.Status,
	}).Info("material status changed")

	if existing.Status != req.Status {
		h.notifySeller(r.Context(), material)
	}
	jsonResponse(w, http.StatusOK, material)
}

// notifySeller tells the seller about a moderation decision. Failures are
// logged, the status change itself has already succeeded.
func (h *MaterialsHandler) notifySeller(ctx context.Context, m *model.Material) {
	if h.Notifications == nil {
		return
	}
	in := model.NotificationInput{
		UserID:  m.SellerID,
		Title:   statusTitles[m.Status],
		Message: fmt.Sprintf("Your listing %q is now %s.", m.Name, m.Status),
	}
	if _, err := h.Notifications.Create(ctx, in); err != nil {
		log.WithError(err).WithField("material", m.ID).Warn("failed to notify seller")
	}
}

var statusTitles = map[string]string{
	model.MaterialStatusActive:   "Listing approved",
	model.MaterialStatusPending:  "Listing under review",
	model.MaterialStatusRejected: "Listing rejected",
}

// Delete handles DELETE /api/materials/{id}. The seller or a moderator may
// delete; the stored photo is removed on a best-effort basis.
func (h *MaterialsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "material")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	existing, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if existing.SellerID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleModerator) {
		h.writeError(w, r, apperr.Forbidden("only the seller or a moderator can delete this listing"))
		return
	}

	removed, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !removed {
		h.writeError(w, r, apperr.NotFound("material not found"))
		return
	}

	if h.Images != nil {
		if _, err := h.Images.Delete(r.Context(), imageKey(id)); err != nil {
			log.WithError(err).WithField("material", id).Warn("failed to delete material image")
		}
	}

	h.Metrics.Event("material_deleted")
	log.WithFields(log.Fields{"user": claims.Email, "material": id}).Info("material deleted")
	jsonResponse(w, http.StatusOK, mutationResponse{Success: true, Message: "Material deleted successfully"})
}

// UploadImage handles PUT /api/materials/{id}/image.
func (h *MaterialsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "material")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	existing, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if existing.SellerID != claims.UserID {
		h.writeError(w, r, apperr.Forbidden("only the seller can change the photo"))
		return
	}

	// Allow some headroom for multipart framing on top of the image itself.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.Images.Put(r.Context(), imageKey(id), bytes.NewReader(photo.Data), imaging.ContentType); err != nil {
		h.writeError(w, r, fmt.Errorf("storing image: %w", err))
		return
	}

	patch := model.MaterialPatch{ImageURL: model.Some(imageURL(id))}
	if err := h.Store.Update(r.Context(), id, patch); err != nil {
		if _, derr := h.Images.Delete(r.Context(), imageKey(id)); derr != nil {
			log.WithError(derr).WithField("material", id).Warn("failed to discard orphaned material image")
		}
		h.writeError(w, r, err)
		return
	}

	material, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("material_image_uploaded")
	log.WithFields(log.Fields{
		"user":     claims.Email,
		"material": id,
		"width":    photo.Width,
		"height":   photo.Height,
		"bytes":    len(photo.Data),
	}).Info("material image uploaded")
	jsonResponse(w, http.StatusOK, material)
}

// GetImage handles GET /api/materials/{id}/image.
func (h *MaterialsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "material")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	info, rc, err := h.Images.Get(r.Context(), imageKey(id))
	if errors.Is(err, blob.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}
	if err != nil {
		h.writeError(w, r, fmt.Errorf("loading image: %w", err))
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = imaging.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if info.ETag != "" {
		w.Header().Set("ETag", info.ETag)
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		log.WithError(err).WithField("material", id).Warn("failed to stream material image")
	}
}
