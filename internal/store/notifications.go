package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/db"
	"github.com/ecoexchange/recycle/internal/model"
)

const notificationColumns = `id, user_id, title, message, is_read, created_at`

// NotificationRepository stores per-user in-app notifications.
type NotificationRepository struct {
	conn
}

// NewNotificationRepository returns a repository bound to the given pool.
func NewNotificationRepository(pool *sql.DB, dialect db.Dialect) *NotificationRepository {
	return &NotificationRepository{conn{pool: pool, dialect: dialect}}
}

// Create stores an unread notification and returns it.
func (r *NotificationRepository) Create(ctx context.Context, in model.NotificationInput) (*model.Notification, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var id int64
	err := r.queryRow(ctx,
		`INSERT INTO notifications (user_id, title, message) VALUES (?, ?, ?) RETURNING id`,
		in.UserID, strings.TrimSpace(in.Title), strings.TrimSpace(in.Message),
	).Scan(&id)
	if err != nil {
		if classifyConstraint(err) == foreignKey {
			return nil, apperr.Constraint("user does not exist", err)
		}
		return nil, apperr.Persistence("failed to create notification", err)
	}
	return r.get(ctx, in.UserID, id)
}

// List returns a user's notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context, userID int64) ([]model.Notification, error) {
	rows, err := r.query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, apperr.Persistence("failed to list notifications", err)
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to read notification", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list notifications", err)
	}
	return out, nil
}

// MarkRead marks one of the user's notifications as read and returns it.
// Another user's notification reports apperr.ErrNotFound.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id int64) (*model.Notification, error) {
	result, err := r.exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return nil, apperr.Persistence("failed to update notification", err)
	}
	if err := requireAffected(result, "notification not found"); err != nil {
		return nil, err
	}
	return r.get(ctx, userID, id)
}

// MarkAllRead marks every notification of the user as read and returns how
// many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result, err := r.exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`,
		userID,
	)
	if err != nil {
		return 0, apperr.Persistence("failed to update notifications", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperr.Persistence("failed to update notifications", err)
	}
	return n, nil
}

func (r *NotificationRepository) get(ctx context.Context, userID, id int64) (*model.Notification, error) {
	n, err := scanNotification(r.queryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND user_id = ?`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("notification not found")
	}
	if err != nil {
		return nil, apperr.Persistence("failed to get notification", err)
	}
	return n, nil
}

func scanNotification(row scanner) (*model.Notification, error) {
	n := &model.Notification{}
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	return n, nil
}
