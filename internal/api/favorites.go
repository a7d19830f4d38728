package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/metrics"
	"github.com/ecoexchange/recycle/internal/store"
)

// FavoritesHandler manages the caller's saved listings.
type FavoritesHandler struct {
	errorPolicy
	Favorites *store.FavoriteRepository
	Metrics   *metrics.Metrics
}

type favoritesResponse struct {
	Success   bool    `json:"success"`
	Favorites []int64 `json:"favorites"`
}

// List handles GET /api/users/me/favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	materials, err := h.Favorites.Materials(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, materials)
}

// Add handles PUT /api/users/me/favorites/{id}. Adding twice is a no-op.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "material")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Favorites.Add(r.Context(), claims.UserID, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Metrics.Event("favorite_added")
	log.WithFields(log.Fields{"user": claims.Email, "material": id}).Debug("favorite added")
	h.respond(w, r, claims.UserID)
}

// Remove handles DELETE /api/users/me/favorites/{id}.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := parseID(r, "material")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	removed, err := h.Favorites.Remove(r.Context(), claims.UserID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !removed {
		h.writeError(w, r, apperr.NotFound("favorite not found"))
		return
	}

	log.WithFields(log.Fields{"user": claims.Email, "material": id}).Debug("favorite removed")
	h.respond(w, r, claims.UserID)
}

func (h *FavoritesHandler) respond(w http.ResponseWriter, r *http.Request, userID int64) {
	ids, err := h.Favorites.IDs(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, favoritesResponse{Success: true, Favorites: ids})
}
