package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/vigil/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
)

// MockStore is a mock implementation of gallery.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]domain.Signature, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Signature), args.Error(1)
}

func (m *MockStore) Insert(ctx context.Context, sig *domain.Signature) error {
	args := m.Called(ctx, sig)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, body io.Reader) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	assert.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func TestSignatureHandler_List(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	score := 0.12

	tests := []struct {
		name           string
		setupMock      func(*MockStore)
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name: "returns gallery in enrollment order",
			setupMock: func(m *MockStore) {
				m.On("List", mock.Anything).Return([]domain.Signature{
					{ID: first, Name: "Anna", SpoofScore: &score, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
					{ID: second, Name: "Nora", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
				}, nil)
			},
			expectedStatus: 200,
			checkResponse: func(t *testing.T, body []byte) {
				var resp ListSignaturesResponse
				assert.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, 2, resp.Count)
				assert.Equal(t, "Anna", resp.Signatures[0].Name)
				assert.Equal(t, "Nora", resp.Signatures[1].Name)
				assert.Equal(t, first.String(), resp.Signatures[0].ID)
				assert.NotNil(t, resp.Signatures[0].SpoofScore)
				assert.Nil(t, resp.Signatures[1].SpoofScore)
				assert.Equal(t, "2024-01-01T00:00:00Z", resp.Signatures[0].CreatedAt)
			},
		},
		{
			name: "empty gallery",
			setupMock: func(m *MockStore) {
				m.On("List", mock.Anything).Return([]domain.Signature{}, nil)
			},
			expectedStatus: 200,
			checkResponse: func(t *testing.T, body []byte) {
				var resp ListSignaturesResponse
				assert.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, 0, resp.Count)
				assert.NotNil(t, resp.Signatures)
			},
		},
		{
			name: "storage failure",
			setupMock: func(m *MockStore) {
				m.On("List", mock.Anything).Return(nil, assert.AnError)
			},
			expectedStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			tt.setupMock(store)

			app := newTestApp()
			h := NewSignatureHandler(store, nil, testLogger())
			app.Get("/v1/signatures", h.List)

			req := httptest.NewRequest("GET", "/v1/signatures", nil)
			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				body, _ := io.ReadAll(resp.Body)
				tt.checkResponse(t, body)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestSignatureHandler_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("deletes an enrollment", func(t *testing.T) {
		store := &MockStore{}
		store.On("Delete", mock.Anything, id).Return(nil)

		app := newTestApp()
		h := NewSignatureHandler(store, nil, testLogger())
		app.Delete("/v1/signatures/:id", h.Delete)

		req := httptest.NewRequest("DELETE", "/v1/signatures/"+id.String(), nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
		store.AssertExpectations(t)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		store := &MockStore{}

		app := newTestApp()
		h := NewSignatureHandler(store, nil, testLogger())
		app.Delete("/v1/signatures/:id", h.Delete)

		req := httptest.NewRequest("DELETE", "/v1/signatures/not-a-uuid", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", decodeError(t, resp.Body).Error.Code)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown signature", func(t *testing.T) {
		store := &MockStore{}
		store.On("Delete", mock.Anything, id).Return(domain.ErrSignatureNotFound)

		app := newTestApp()
		h := NewSignatureHandler(store, nil, testLogger())
		app.Delete("/v1/signatures/:id", h.Delete)

		req := httptest.NewRequest("DELETE", "/v1/signatures/"+id.String(), nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, "SIGNATURE_NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})
}
