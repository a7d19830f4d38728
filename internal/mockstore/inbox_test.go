package mockstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoexchange/recycle/internal/apperr"
)

func TestFavorites(t *testing.T) {
	storage := NewMemoryStorage()
	s := newStore(storage)
	ctx := context.Background()

	ids, err := s.Favorites(ctx, "user1")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	ids, err = s.AddFavorite(ctx, "user1", "m1")
	require.NoError(t, err)
	ids, err = s.AddFavorite(ctx, "user1", "m2")
	require.NoError(t, err)
	ids, err = s.AddFavorite(ctx, "user1", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)

	other, err := s.Favorites(ctx, "user2")
	require.NoError(t, err)
	assert.Empty(t, other)

	ids, err = s.RemoveFavorite(ctx, "user1", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, ids)

	// Removing something that is not saved is not an error.
	ids, err = s.RemoveFavorite(ctx, "user1", "m9")
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, ids)

	raw, ok, _ := storage.GetItem(ctx, FavoritesKey)
	require.True(t, ok)
	var stored map[string][]string
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, []string{"m2"}, stored["user1"])
}

func TestNotificationSeed(t *testing.T) {
	s := newStore(NewMemoryStorage())
	ctx := context.Background()

	list, err := s.Notifications(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Read)
	assert.True(t, list[1].Read)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	list, err = s.Notifications(ctx, "user2")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = s.Notifications(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestNotificationLifecycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(NewMemoryStorage(), WithLatency(0, 0), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := s.CreateNotification(ctx, NotificationInput{UserID: "user3"})
	require.True(t, errors.Is(err, apperr.ErrValidation))

	first, err := s.CreateNotification(ctx, NotificationInput{UserID: "user3", Title: "Pickup", Message: "Courier at 10:00"})
	require.NoError(t, err)
	assert.False(t, first.Read)
	assert.Equal(t, now, first.CreatedAt)

	second, err := s.CreateNotification(ctx, NotificationInput{UserID: "user3", Title: "Paid", Message: "Payment received"})
	require.NoError(t, err)

	list, err := s.Notifications(ctx, "user3")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	read, err := s.MarkNotificationRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	_, err = s.MarkNotificationRead(ctx, "missing")
	require.True(t, errors.Is(err, apperr.ErrNotFound))

	all, err := s.MarkAllNotificationsRead(ctx, "user3")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, n := range all {
		assert.True(t, n.Read)
	}

	// The seeded inboxes are untouched.
	seeded, err := s.Notifications(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, seeded, 1)
	assert.False(t, seeded[0].Read)

	none, err := s.MarkAllNotificationsRead(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
