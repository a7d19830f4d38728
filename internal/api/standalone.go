package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/metrics"
	"github.com/ecoexchange/recycle/internal/mockstore"
)

// ListingsHandler serves the listing endpoints from the standalone mock
// store. There are no accounts: the seller is whatever the client sends.
type ListingsHandler struct {
	errorPolicy
	Store   *mockstore.Store
	Metrics *metrics.Metrics
}

type listingMutationResponse struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	Material *mockstore.Listing `json:"material,omitempty"`
}

// NewStandaloneRouter serves listings, favourites and notifications from
// a mock store.
func NewStandaloneRouter(s *mockstore.Store, debug bool, m *metrics.Metrics) http.Handler {
	h := &ListingsHandler{errorPolicy: errorPolicy{Debug: debug}, Store: s, Metrics: m}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/materials", h.List)
	mux.HandleFunc("GET /api/materials/search", h.Search)
	mux.HandleFunc("GET /api/materials/{id}", h.Get)
	mux.HandleFunc("POST /api/materials", h.Create)
	mux.HandleFunc("PUT /api/materials/{id}", h.Update)
	mux.HandleFunc("PUT /api/materials/{id}/status", h.SetStatus)
	mux.HandleFunc("DELETE /api/materials/{id}", h.Delete)
	mux.HandleFunc("GET /api/users/{id}/materials", h.ByUser)
	mux.HandleFunc("GET /api/users/{id}/favorites", h.Favorites)
	mux.HandleFunc("PUT /api/users/{id}/favorites/{materialId}", h.AddFavorite)
	mux.HandleFunc("DELETE /api/users/{id}/favorites/{materialId}", h.RemoveFavorite)
	mux.HandleFunc("GET /api/users/{id}/notifications", h.Notifications)
	mux.HandleFunc("PUT /api/users/{id}/notifications/read", h.MarkAllRead)
	mux.HandleFunc("POST /api/notifications", h.CreateNotification)
	mux.HandleFunc("PUT /api/notifications/{id}/read", h.MarkRead)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "mode": "standalone"})
	})

	var handler http.Handler = mux
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
		handler = m.Middleware(handler)
	}
	return SecurityHeaders(handler)
}

// List handles GET /api/materials.
func (h *ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Store.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(listings))
}

// Search handles GET /api/materials/search.
func (h *ListingsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, err := parseMaterialQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	listings, err := h.Store.Search(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(listings))
}

// Get handles GET /api/materials/{id}.
func (h *ListingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, l)
}

// ByUser handles GET /api/users/{id}/materials.
func (h *ListingsHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Store.ListByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(listings))
}

// Create handles POST /api/materials.
func (h *ListingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in mockstore.ListingInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Store.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("material_created")
	log.WithFields(log.Fields{"material": l.ID, "user": l.UserID}).Info("listing created")
	jsonResponse(w, http.StatusCreated, l)
}

// Update handles PUT /api/materials/{id}.
func (h *ListingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch mockstore.ListingPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Store.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("material_updated")
	jsonResponse(w, http.StatusOK, listingMutationResponse{
		Success:  true,
		Message:  "Material updated successfully",
		Material: l,
	})
}

// SetStatus handles PUT /api/materials/{id}/status.
func (h *ListingsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Store.SetStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Metrics.Event("material_" + req.Status)
	jsonResponse(w, http.StatusOK, l)
}

// Delete handles DELETE /api/materials/{id}.
func (h *ListingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	removed, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !removed {
		h.writeError(w, r, apperr.NotFound("material not found"))
		return
	}

	h.Metrics.Event("material_deleted")
	log.WithField("material", id).Info("listing deleted")
	jsonResponse(w, http.StatusOK, listingMutationResponse{Success: true, Message: "Material deleted successfully"})
}

type standaloneFavoritesResponse struct {
	Success   bool     `json:"success"`
	Favorites []string `json:"favorites"`
}

// Favorites handles GET /api/users/{id}/favorites.
func (h *ListingsHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Store.Favorites(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, ids)
}

// AddFavorite handles PUT /api/users/{id}/favorites/{materialId}.
func (h *ListingsHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Store.AddFavorite(r.Context(), r.PathValue("id"), r.PathValue("materialId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Metrics.Event("favorite_added")
	jsonResponse(w, http.StatusOK, standaloneFavoritesResponse{Success: true, Favorites: ids})
}

// RemoveFavorite handles DELETE /api/users/{id}/favorites/{materialId}.
func (h *ListingsHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Store.RemoveFavorite(r.Context(), r.PathValue("id"), r.PathValue("materialId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, standaloneFavoritesResponse{Success: true, Favorites: ids})
}

// Notifications handles GET /api/users/{id}/notifications.
func (h *ListingsHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.Notifications(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// CreateNotification handles POST /api/notifications.
func (h *ListingsHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var in mockstore.NotificationInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Store.CreateNotification(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("notification_created")
	log.WithFields(log.Fields{"notification": n.ID, "recipient": n.UserID}).Info("notification sent")
	jsonResponse(w, http.StatusCreated, n)
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *ListingsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Store.MarkNotificationRead(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, n)
}

// MarkAllRead handles PUT /api/users/{id}/notifications/read.
func (h *ListingsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.MarkAllNotificationsRead(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

func nonNil(listings []mockstore.Listing) []mockstore.Listing {
	if listings == nil {
		return []mockstore.Listing{}
	}
	return listings
}
