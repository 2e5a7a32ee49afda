package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/classifieds-backend/internal/services/auth"
)

// MockService реализует интерфейс login.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, identifier, password string) (string, string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.String(1), args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный вход",
			body: `{"identifier":"admin","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "admin", "secret123").
					Return("jwt-token", "admin", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"jwt-token"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{not json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid request body"`,
		},
		{
			name:           "слишком короткий пароль",
			body:           `{"identifier":"admin","password":"123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "неверные учётные данные",
			body: `{"identifier":"admin","password":"wrongpass"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "admin", "wrongpass").
					Return("", "", auth.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"invalid credentials"`,
		},
		{
			name: "заблокированная учётная запись",
			body: `{"identifier":"banned","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "banned", "secret123").
					Return("", "", auth.ErrAccountSuspended)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"account is suspended"`,
		},
		{
			name: "ошибка сервиса",
			body: `{"identifier":"admin","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "admin", "secret123").
					Return("", "", errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"internal error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
