package reveal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/services/contact"
)

// MockService реализует интерфейс reveal.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Reveal(ctx context.Context, userID, listingID int64, now time.Time) (*models.ContactCard, error) {
	args := m.Called(ctx, userID, listingID)
	if res := args.Get(0); res != nil {
		return res.(*models.ContactCard), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRevealHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		url            string
		userID         int64
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "успешное раскрытие контакта",
			url:    "/listings/5/contact",
			userID: 42,
			setupMock: func(m *MockService) {
				m.On("Reveal", mock.Anything, int64(42), int64(5)).Return(&models.ContactCard{
					AdNumber:     "AD-0005",
					OwnerName:    "owner",
					ContactPhone: "+79990001122",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"phone":"+79990001122"`,
		},
		{
			name:           "некорректный id в URL",
			url:            "/listings/abc/contact",
			userID:         42,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"failed to decode id from url"`,
		},
		{
			name:   "объявление недоступно",
			url:    "/listings/5/contact",
			userID: 42,
			setupMock: func(m *MockService) {
				m.On("Reveal", mock.Anything, int64(42), int64(5)).
					Return(nil, contact.ErrListingNotVisible)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"listing not found"`,
		},
		{
			name:   "нет действующей подписки",
			url:    "/listings/5/contact",
			userID: 42,
			setupMock: func(m *MockService) {
				m.On("Reveal", mock.Anything, int64(42), int64(5)).
					Return(nil, contact.ErrNoActiveSubscription)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `"no active subscription"`,
		},
		{
			name:   "квота исчерпана",
			url:    "/listings/5/contact",
			userID: 42,
			setupMock: func(m *MockService) {
				m.On("Reveal", mock.Anything, int64(42), int64(5)).
					Return(nil, contact.ErrQuotaExceeded)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"contact quota exceeded"`,
		},
		{
			name:   "ошибка сервиса",
			url:    "/listings/5/contact",
			userID: 42,
			setupMock: func(m *MockService) {
				m.On("Reveal", mock.Anything, int64(42), int64(5)).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"could not reveal contact"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)
			r := chi.NewRouter()
			r.Post("/listings/{id}/contact", func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), middlewarectx.UserID, tt.userID)
				handler.ServeHTTP(w, req.WithContext(ctx))
			})

			req := httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader(""))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
