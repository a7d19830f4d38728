package mockstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecoexchange/recycle/internal/apperr"
)

// Storage keys for the per-user collections.
const (
	FavoritesKey     = "eco_market_favorites"
	NotificationsKey = "eco_market_notifications"
)

// Notification is an in-app message in the standalone store.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationInput is the payload for CreateNotification.
type NotificationInput struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Validate checks required fields.
func (in *NotificationInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.UserID) == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return apperr.MissingFields(missing...)
	}
	return nil
}

// Favorites returns the material IDs saved by userID in the order they
// were added. Material IDs are not checked against the listings.
func (s *Store) Favorites(ctx context.Context, userID string) ([]string, error) {
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadFavorites(ctx)
	if err != nil {
		return nil, err
	}
	return nonNilIDs(all[userID]), nil
}

// AddFavorite saves materialID for userID. Adding an existing favourite
// leaves the list unchanged.
func (s *Store) AddFavorite(ctx context.Context, userID, materialID string) ([]string, error) {
	return s.updateFavorites(ctx, userID, func(ids []string) []string {
		for _, id := range ids {
			if id == materialID {
				return ids
			}
		}
		return append(ids, materialID)
	})
}

// RemoveFavorite drops materialID from the user's favourites.
func (s *Store) RemoveFavorite(ctx context.Context, userID, materialID string) ([]string, error) {
	return s.updateFavorites(ctx, userID, func(ids []string) []string {
		out := ids[:0]
		for _, id := range ids {
			if id != materialID {
				out = append(out, id)
			}
		}
		return out
	})
}

func (s *Store) updateFavorites(ctx context.Context, userID string, fn func([]string) []string) ([]string, error) {
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadFavorites(ctx)
	if err != nil {
		return nil, err
	}
	ids := nonNilIDs(fn(all[userID]))
	all[userID] = ids
	if err := s.write(ctx, FavoritesKey, "favorites", all); err != nil {
		return nil, err
	}
	return ids, nil
}

// Notifications returns the user's notifications, newest first.
func (s *Store) Notifications(ctx context.Context, userID string) ([]Notification, error) {
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadNotifications(ctx)
	if err != nil {
		return nil, err
	}
	return nonNilNotifications(all[userID]), nil
}

// CreateNotification stores an unread notification at the head of the
// recipient's list.
func (s *Store) CreateNotification(ctx context.Context, in NotificationInput) (*Notification, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}

	n := Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Title:     strings.TrimSpace(in.Title),
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadNotifications(ctx)
	if err != nil {
		return nil, err
	}
	all[n.UserID] = append([]Notification{n}, all[n.UserID]...)
	if err := s.write(ctx, NotificationsKey, "notifications", all); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkNotificationRead marks the notification with id as read, whichever
// user it belongs to.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) (*Notification, error) {
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadNotifications(ctx)
	if err != nil {
		return nil, err
	}
	for _, list := range all {
		for i := range list {
			if list[i].ID != id {
				continue
			}
			list[i].Read = true
			if err := s.write(ctx, NotificationsKey, "notifications", all); err != nil {
				return nil, err
			}
			n := list[i]
			return &n, nil
		}
	}
	return nil, apperr.NotFound("notification not found")
}

// MarkAllNotificationsRead marks every notification of userID as read and
// returns the updated list.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) ([]Notification, error) {
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadNotifications(ctx)
	if err != nil {
		return nil, err
	}
	list, ok := all[userID]
	if !ok {
		return []Notification{}, nil
	}
	for i := range list {
		list[i].Read = true
	}
	if err := s.write(ctx, NotificationsKey, "notifications", all); err != nil {
		return nil, err
	}
	return nonNilNotifications(list), nil
}

// loadFavorites reads the user to material IDs map. Callers hold mu.
func (s *Store) loadFavorites(ctx context.Context) (map[string][]string, error) {
	all := make(map[string][]string)
	if _, err := s.read(ctx, FavoritesKey, "favorites", &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = make(map[string][]string)
	}
	return all, nil
}

// loadNotifications reads the per-user notification lists, seeding them on
// first access. Callers hold mu.
func (s *Store) loadNotifications(ctx context.Context) (map[string][]Notification, error) {
	all := make(map[string][]Notification)
	ok, err := s.read(ctx, NotificationsKey, "notifications", &all)
	if err != nil {
		return nil, err
	}
	if !ok {
		all = seedNotifications(s.now().UTC())
		if err := s.write(ctx, NotificationsKey, "notifications", all); err != nil {
			return nil, err
		}
	}
	if all == nil {
		all = make(map[string][]Notification)
	}
	return all, nil
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func nonNilNotifications(list []Notification) []Notification {
	if list == nil {
		return []Notification{}
	}
	return list
}
