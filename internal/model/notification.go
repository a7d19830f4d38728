package model

import (
	"strings"
	"time"

	"github.com/ecoexchange/recycle/internal/apperr"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationInput is the payload for creating a notification. New
// notifications are always unread.
type NotificationInput struct {
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Validate checks required fields.
func (in *NotificationInput) Validate() error {
	var missing []string
	if in.UserID <= 0 {
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
