package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/auth"
	"github.com/ecoexchange/recycle/internal/blob"
	"github.com/ecoexchange/recycle/internal/model"
)

func serveMaterials(h *MaterialsHandler, method, target, token, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	registerMaterialRoutes(mux, h, AuthMiddleware(testJWTSecret, nil))

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, userID, "user@example.com", role)
	require.NoError(t, err)
	return token
}

func listing(id, sellerID int64) *model.Material {
	return &model.Material{
		ID:        id,
		Name:      "Bottles",
		Category:  model.CategoryPlastic,
		Price:     decimal.NewFromInt(10),
		Quantity:  decimal.NewFromInt(50),
		Unit:      model.DefaultUnit,
		Location:  "Moscow",
		SellerID:  sellerID,
		Status:    model.MaterialStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMaterialsHandler(t *testing.T) {
	sellerToken := tokenFor(t, 1, model.RoleUser)
	moderatorToken := tokenFor(t, 2, model.RoleModerator)
	otherToken := tokenFor(t, 3, model.RoleUser)

	tests := []struct {
		name           string
		method         string
		target         string
		token          string
		body           string
		mockSetup      func(m *MockMaterialStore)
		expectedStatus int
		expectedError  string
		validate       func(t *testing.T, body []byte)
	}{
		{
			name:           "update_empty_patch_touches_nothing",
			method:         http.MethodPut,
			target:         "/api/materials/7",
			token:          sellerToken,
			body:           `{}`,
			mockSetup:      func(m *MockMaterialStore) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "no fields to update",
		},
		{
			name:   "update_not_found",
			method: http.MethodPut,
			target: "/api/materials/7",
			token:  sellerToken,
			body:   `{"price": 5}`,
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(nil, apperr.NotFound("material not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "material not found",
		},
		{
			name:   "update_by_other_user",
			method: http.MethodPut,
			target: "/api/materials/7",
			token:  otherToken,
			body:   `{"price": 5}`,
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "update_price_only",
			method: http.MethodPut,
			target: "/api/materials/7",
			token:  sellerToken,
			body:   `{"price": 5}`,
			mockSetup: func(m *MockMaterialStore) {
				updated := listing(7, 1)
				updated.Price = decimal.NewFromInt(5)
				gomock.InOrder(
					m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil),
					m.EXPECT().Update(gomock.Any(), int64(7), gomock.Any()).
						DoAndReturn(func(_ context.Context, _ int64, p model.MaterialPatch) error {
							if !p.Price.Set || !p.Price.Value.Equal(decimal.NewFromInt(5)) {
								return errors.New("price not in patch")
							}
							if p.Name.Set || p.Quantity.Set || p.Category.Set || p.ImageURL.Set {
								return errors.New("unexpected field in patch")
							}
							return nil
						}),
					m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(updated, nil),
				)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				var resp mutationResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				require.True(t, resp.Success)
				require.Equal(t, "Material updated successfully", resp.Message)
				require.NotNil(t, resp.Material)
				require.True(t, resp.Material.Price.Equal(decimal.NewFromInt(5)))
			},
		},
		{
			name:   "create_unknown_seller",
			method: http.MethodPost,
			target: "/api/materials",
			token:  sellerToken,
			body:   `{"name":"Bottles","category":"plastic","price":10,"quantity":50,"location":"Moscow","seller_id":1}`,
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(int64(0), apperr.Constraint("seller does not exist", errors.New("FOREIGN KEY constraint failed")))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "seller does not exist",
		},
		{
			name:           "create_for_another_seller",
			method:         http.MethodPost,
			target:         "/api/materials",
			token:          sellerToken,
			body:           `{"name":"Bottles","category":"plastic","price":10,"quantity":50,"location":"Moscow","seller_id":9}`,
			mockSetup:      func(m *MockMaterialStore) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "create_without_token",
			method:         http.MethodPost,
			target:         "/api/materials",
			body:           `{"name":"Bottles"}`,
			mockSetup:      func(m *MockMaterialStore) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "create_refetches_row",
			method: http.MethodPost,
			target: "/api/materials",
			token:  moderatorToken,
			body:   `{"name":"Bottles","category":"plastic","price":10,"quantity":50,"location":"Moscow","seller_id":1}`,
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, in model.MaterialInput) (int64, error) {
						if in.SellerID != 1 || in.Name != "Bottles" {
							return 0, errors.New("unexpected input")
						}
						return 11, nil
					})
				m.EXPECT().FindByID(gomock.Any(), int64(11)).Return(listing(11, 1), nil)
			},
			expectedStatus: http.StatusCreated,
			validate: func(t *testing.T, body []byte) {
				var m model.Material
				require.NoError(t, json.Unmarshal(body, &m))
				require.Equal(t, int64(11), m.ID)
				require.Equal(t, model.MaterialStatusPending, m.Status)
			},
		},
		{
			name:   "search_passes_filters",
			method: http.MethodGet,
			target: "/api/materials/search?query=bottle&category=plastic&sort=price&limit=10&offset=5",
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().Search(gomock.Any(), model.MaterialQuery{
					Query:    "bottle",
					Category: model.CategoryPlastic,
					Sort:     model.SortPrice,
					Limit:    10,
					Offset:   5,
				}).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				require.JSONEq(t, `[]`, string(body))
			},
		},
		{
			name:           "search_unknown_sort",
			method:         http.MethodGet,
			target:         "/api/materials/search?sort=name",
			mockSetup:      func(m *MockMaterialStore) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "search_bad_limit",
			method:         http.MethodGet,
			target:         "/api/materials/search?limit=ten",
			mockSetup:      func(m *MockMaterialStore) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "limit must be a non-negative integer",
		},
		{
			name:           "get_bad_id",
			method:         http.MethodGet,
			target:         "/api/materials/abc",
			mockSetup:      func(m *MockMaterialStore) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid material id",
		},
		{
			name:   "get_persistence_failure",
			method: http.MethodGet,
			target: "/api/materials/4",
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().FindByID(gomock.Any(), int64(4)).
					Return(nil, apperr.Persistence("failed to get material", errors.New("disk I/O error")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
		{
			name:   "list_empty",
			method: http.MethodGet,
			target: "/api/materials",
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().FindAll(gomock.Any()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				require.JSONEq(t, `[]`, string(body))
			},
		},
		{
			name:   "delete_by_moderator",
			method: http.MethodDelete,
			target: "/api/materials/7",
			token:  moderatorToken,
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil)
				m.EXPECT().Delete(gomock.Any(), int64(7)).Return(true, nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				require.JSONEq(t, `{"success":true,"message":"Material deleted successfully"}`, string(body))
			},
		},
		{
			name:   "delete_by_other_user",
			method: http.MethodDelete,
			target: "/api/materials/7",
			token:  otherToken,
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "delete_lost_race",
			method: http.MethodDelete,
			target: "/api/materials/7",
			token:  sellerToken,
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil)
				m.EXPECT().Delete(gomock.Any(), int64(7)).Return(false, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "status_requires_moderator",
			method:         http.MethodPut,
			target:         "/api/materials/7/status",
			token:          sellerToken,
			body:           `{"status":"active"}`,
			mockSetup:      func(m *MockMaterialStore) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "status_by_moderator",
			method: http.MethodPut,
			target: "/api/materials/7/status",
			token:  moderatorToken,
			body:   `{"status":"active"}`,
			mockSetup: func(m *MockMaterialStore) {
				active := listing(7, 1)
				active.Status = model.MaterialStatusActive
				gomock.InOrder(
					m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil),
					m.EXPECT().SetStatus(gomock.Any(), int64(7), model.MaterialStatusActive).Return(nil),
					m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(active, nil),
				)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "status_of_missing_listing",
			method: http.MethodPut,
			target: "/api/materials/7/status",
			token:  moderatorToken,
			body:   `{"status":"rejected"}`,
			mockSetup: func(m *MockMaterialStore) {
				m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(nil, apperr.NotFound("material not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "material not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStore := NewMockMaterialStore(ctrl)
			tt.mockSetup(mockStore)
			h := &MaterialsHandler{Store: mockStore, Images: blob.NewMemory()}

			rec := serveMaterials(h, tt.method, tt.target, tt.token, tt.body)
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())

			if tt.expectedError != "" {
				var body errorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				require.Equal(t, tt.expectedError, body.Error)
				require.Empty(t, body.Detail)
			}
			if tt.validate != nil {
				tt.validate(t, rec.Body.Bytes())
			}
		})
	}
}

func TestErrorDetailInDebugMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockMaterialStore(ctrl)
	mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(int64(0), apperr.Constraint("seller does not exist", errors.New("FOREIGN KEY constraint failed")))

	h := &MaterialsHandler{errorPolicy: errorPolicy{Debug: true}, Store: mockStore}
	rec := serveMaterials(h, http.MethodPost, "/api/materials", tokenFor(t, 1, model.RoleUser),
		`{"name":"Bottles","category":"plastic","price":10,"quantity":50,"location":"Moscow","seller_id":1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "seller does not exist", body.Error)
	require.Contains(t, body.Detail, "FOREIGN KEY")
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.ErrNoFields, http.StatusBadRequest},
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Constraint("fk", nil), http.StatusBadRequest},
		{apperr.NotFound("gone"), http.StatusNotFound},
		{apperr.Unauthorized("who"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.Persistence("db", errors.New("locked")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		require.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}

func TestSetStatusNotifiesSeller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockMaterialStore(ctrl)
	notifier := NewMockNotifier(ctrl)

	rejected := listing(7, 1)
	rejected.Status = model.MaterialStatusRejected
	gomock.InOrder(
		mockStore.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil),
		mockStore.EXPECT().SetStatus(gomock.Any(), int64(7), model.MaterialStatusRejected).Return(nil),
		mockStore.EXPECT().FindByID(gomock.Any(), int64(7)).Return(rejected, nil),
	)

	var got model.NotificationInput
	notifier.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in model.NotificationInput) (*model.Notification, error) {
			got = in
			return nil, errors.New("inbox unavailable")
		})

	h := &MaterialsHandler{Store: mockStore, Notifications: notifier}
	rec := serveMaterials(h, http.MethodPut, "/api/materials/7/status", tokenFor(t, 2, model.RoleModerator),
		`{"status":"rejected"}`)

	// A failed notification does not undo the moderation decision.
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, int64(1), got.UserID)
	require.Equal(t, "Listing rejected", got.Title)
	require.Contains(t, got.Message, "Bottles")
}

func TestSetStatusUnchangedDoesNotNotify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockMaterialStore(ctrl)
	notifier := NewMockNotifier(ctrl)

	mockStore.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil).Times(2)
	mockStore.EXPECT().SetStatus(gomock.Any(), int64(7), model.MaterialStatusPending).Return(nil)

	h := &MaterialsHandler{Store: mockStore, Notifications: notifier}
	rec := serveMaterials(h, http.MethodPut, "/api/materials/7/status", tokenFor(t, 2, model.RoleModerator),
		`{"status":"pending"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// countingImages records Delete calls on top of the in-memory store.
type countingImages struct {
	*blob.Memory
	mu      sync.Mutex
	deleted []string
}

func (c *countingImages) Delete(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	c.deleted = append(c.deleted, key)
	c.mu.Unlock()
	return c.Memory.Delete(ctx, key)
}

func TestUploadImageDiscardsBlobWhenUpdateFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := NewMockMaterialStore(ctrl)
	gomock.InOrder(
		mockStore.EXPECT().FindByID(gomock.Any(), int64(7)).Return(listing(7, 1), nil),
		mockStore.EXPECT().Update(gomock.Any(), int64(7), gomock.Any()).
			Return(apperr.Persistence("failed to update material", errors.New("database is locked"))),
	)

	images := &countingImages{Memory: blob.NewMemory()}
	h := &MaterialsHandler{Store: mockStore, Images: images}

	mux := http.NewServeMux()
	registerMaterialRoutes(mux, h, AuthMiddleware(testJWTSecret, nil))
	server := httptest.NewServer(mux)
	defer server.Close()

	resp := uploadImage(t, server.URL+"/api/materials/7/image", tokenFor(t, 1, model.RoleUser), pngBytes(t, 64, 48))
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	require.Equal(t, []string{imageKey(7)}, images.deleted)
	_, _, err := images.Get(context.Background(), imageKey(7))
	require.ErrorIs(t, err, blob.ErrNotFound)
}
