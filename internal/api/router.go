package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/ecoexchange/recycle/internal/blob"
	"github.com/ecoexchange/recycle/internal/db"
	"github.com/ecoexchange/recycle/internal/metrics"
	"github.com/ecoexchange/recycle/internal/model"
	"github.com/ecoexchange/recycle/internal/store"
)

// Options configures NewRouter.
type Options struct {
	DB        *sql.DB
	Dialect   db.Dialect
	JWTSecret string
	// Debug adds the wrapped error text to error responses.
	Debug bool
	// Images stores listing photos. Defaults to an in-memory store.
	Images  blob.Store
	Metrics *metrics.Metrics
	// RateLimit requests per RateWindow per client IP; zero disables.
	RateLimit  int
	RateWindow time.Duration
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	mux := http.NewServeMux()

	if opts.Images == nil {
		opts.Images = blob.NewMemory()
	}
	policy := errorPolicy{Debug: opts.Debug}
	settings := store.NewSettingsRepository(opts.DB, opts.Dialect)

	notifications := store.NewNotificationRepository(opts.DB, opts.Dialect)

	materialsHandler := &MaterialsHandler{
		errorPolicy:   policy,
		Store:         store.NewMaterialRepository(opts.DB, opts.Dialect),
		Images:        opts.Images,
		Metrics:       opts.Metrics,
		Notifications: notifications,
	}
	usersHandler := &UsersHandler{
		errorPolicy: policy,
		Users:       store.NewUserRepository(opts.DB, opts.Dialect),
		Settings:    settings,
		JWTSecret:   opts.JWTSecret,
		Metrics:     opts.Metrics,
	}
	applicationsHandler := &ApplicationsHandler{
		errorPolicy:  policy,
		Applications: store.NewApplicationRepository(opts.DB, opts.Dialect),
		Metrics:      opts.Metrics,
	}

	favoritesHandler := &FavoritesHandler{
		errorPolicy: policy,
		Favorites:   store.NewFavoriteRepository(opts.DB, opts.Dialect),
		Metrics:     opts.Metrics,
	}
	notificationsHandler := &NotificationsHandler{
		errorPolicy:   policy,
		Notifications: notifications,
		Metrics:       opts.Metrics,
	}

	authMW := AuthMiddleware(opts.JWTSecret, settings)
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireRole(model.RoleAdmin)(h))
	}

	registerMaterialRoutes(mux, materialsHandler, authMW)

	// Users.
	mux.HandleFunc("POST /api/users/register", usersHandler.Register)
	mux.HandleFunc("POST /api/users/login", usersHandler.Login)
	mux.Handle("GET /api/users/me", authMW(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("PUT /api/users/me", authMW(http.HandlerFunc(usersHandler.UpdateMe)))
	mux.Handle("PUT /api/users/me/password", authMW(http.HandlerFunc(usersHandler.ChangePassword)))
	mux.Handle("POST /api/users/logout", authMW(http.HandlerFunc(usersHandler.Logout)))
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("PUT /api/users/{id}/role", admin(usersHandler.SetRole))
	mux.Handle("PUT /api/users/{id}/status", admin(usersHandler.SetStatus))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Favourites and notifications belong to the caller.
	mux.Handle("GET /api/users/me/favorites", authMW(http.HandlerFunc(favoritesHandler.List)))
	mux.Handle("PUT /api/users/me/favorites/{id}", authMW(http.HandlerFunc(favoritesHandler.Add)))
	mux.Handle("DELETE /api/users/me/favorites/{id}", authMW(http.HandlerFunc(favoritesHandler.Remove)))
	mux.Handle("GET /api/users/me/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("PUT /api/users/me/notifications/read", authMW(http.HandlerFunc(notificationsHandler.MarkAllRead)))
	mux.Handle("PUT /api/users/me/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))
	mux.Handle("POST /api/notifications", authMW(RequireRole(model.RoleModerator)(http.HandlerFunc(notificationsHandler.Create))))

	// Applications: read (public), write (authenticated, owner or moderator+).
	mux.HandleFunc("GET /api/applications", applicationsHandler.List)
	mux.HandleFunc("GET /api/applications/{id}", applicationsHandler.Get)
	mux.Handle("POST /api/applications", authMW(http.HandlerFunc(applicationsHandler.Create)))
	mux.Handle("PUT /api/applications/{id}", authMW(http.HandlerFunc(applicationsHandler.Update)))
	mux.Handle("PUT /api/applications/{id}/status", authMW(http.HandlerFunc(applicationsHandler.SetStatus)))
	mux.Handle("DELETE /api/applications/{id}", authMW(http.HandlerFunc(applicationsHandler.Delete)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := opts.DB.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var handler http.Handler = mux
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
		handler = opts.Metrics.Middleware(handler)
	}
	handler = RateLimit(opts.RateLimit, opts.RateWindow)(handler)
	return SecurityHeaders(handler)
}

// registerMaterialRoutes wires the listing endpoints. Reads are public,
// writes require a token, status changes require a moderator.
func registerMaterialRoutes(mux *http.ServeMux, h *MaterialsHandler, authMW func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/materials", h.List)
	mux.HandleFunc("GET /api/materials/search", h.Search)
	mux.HandleFunc("GET /api/materials/{id}", h.Get)
	mux.HandleFunc("GET /api/materials/{id}/image", h.GetImage)
	mux.HandleFunc("GET /api/users/{id}/materials", h.BySeller)
	mux.Handle("POST /api/materials", authMW(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /api/materials/{id}", authMW(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/materials/{id}", authMW(http.HandlerFunc(h.Delete)))
	mux.Handle("PUT /api/materials/{id}/image", authMW(http.HandlerFunc(h.UploadImage)))
	mux.Handle("PUT /api/materials/{id}/status", authMW(RequireRole(model.RoleModerator)(http.HandlerFunc(h.SetStatus))))
}
