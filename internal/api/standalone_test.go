package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoexchange/recycle/internal/mockstore"
	"github.com/ecoexchange/recycle/internal/model"
)

func serveStandalone(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStandaloneRouter(t *testing.T) {
	s := mockstore.New(mockstore.NewMemoryStorage(), mockstore.WithLatency(0, 0))
	h := NewStandaloneRouter(s, false, nil)

	rec := serveStandalone(t, h, http.MethodGet, "/api/materials", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var seeded []mockstore.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seeded))
	assert.Len(t, seeded, 6)

	rec = serveStandalone(t, h, http.MethodPost, "/api/materials",
		`{"name":"Bottles","category":"plastic","price":10,"quantity":50,"user_id":"u1","user_name":"Ivan"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created mockstore.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.MaterialStatusPending, created.Status)
	assert.Equal(t, model.DefaultUnit, created.Unit)
	assert.Equal(t, model.DealSell, created.DealType)

	rec = serveStandalone(t, h, http.MethodPost, "/api/materials",
		`{"name":"Planks","category":"wood","price":1,"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	item := "/api/materials/" + created.ID
	rec = serveStandalone(t, h, http.MethodPut, item, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serveStandalone(t, h, http.MethodPut, item, `{"price":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated listingMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Success)
	assert.Equal(t, "Bottles", updated.Material.Name)
	assert.Equal(t, "5", updated.Material.Price.String())

	rec = serveStandalone(t, h, http.MethodPut, item+"/status", `{"status":"active"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveStandalone(t, h, http.MethodGet, "/api/materials/search?category=plastic&sort=price", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var plastic []mockstore.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plastic))
	assert.Len(t, plastic, 2)

	rec = serveStandalone(t, h, http.MethodGet, "/api/users/u1/materials", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []mockstore.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	rec = serveStandalone(t, h, http.MethodDelete, item, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serveStandalone(t, h, http.MethodDelete, item, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serveStandalone(t, h, http.MethodGet, item, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStandaloneFavoritesAndNotifications(t *testing.T) {
	s := mockstore.New(mockstore.NewMemoryStorage(), mockstore.WithLatency(0, 0))
	h := NewStandaloneRouter(s, false, nil)

	rec := serveStandalone(t, h, http.MethodGet, "/api/users/user1/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	serveStandalone(t, h, http.MethodPut, "/api/users/user1/favorites/m1", "")
	rec = serveStandalone(t, h, http.MethodPut, "/api/users/user1/favorites/m1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"favorites":["m1"]}`, rec.Body.String())

	rec = serveStandalone(t, h, http.MethodDelete, "/api/users/user1/favorites/m1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"favorites":[]}`, rec.Body.String())

	rec = serveStandalone(t, h, http.MethodGet, "/api/users/user2/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox []mockstore.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inbox))
	require.Len(t, inbox, 1)
	assert.False(t, inbox[0].Read)

	rec = serveStandalone(t, h, http.MethodPost, "/api/notifications", `{"user_id":"user2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serveStandalone(t, h, http.MethodPost, "/api/notifications",
		`{"user_id":"user2","title":"Pickup","message":"Courier at 10:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sent mockstore.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))

	rec = serveStandalone(t, h, http.MethodPut, "/api/notifications/"+sent.ID+"/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var read mockstore.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &read))
	assert.True(t, read.Read)

	rec = serveStandalone(t, h, http.MethodPut, "/api/notifications/missing/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serveStandalone(t, h, http.MethodPut, "/api/users/user2/notifications/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	inbox = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inbox))
	require.Len(t, inbox, 2)
	assert.Equal(t, sent.ID, inbox[0].ID)
	for _, n := range inbox {
		assert.True(t, n.Read)
	}
}
