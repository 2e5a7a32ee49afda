package subscription

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) GetCurrentSubscription(ctx context.Context, userID int64, now time.Time) (*models.UserSubscription, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}

func (m *RepoMock) GetSubscriptionByToken(ctx context.Context, purchaseToken string) (*models.UserSubscription, error) {
	args := m.Called(ctx, purchaseToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.UserSubscription) (int64, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CountUsageInWindow(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CountSubscriptionFee(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCurrentEntitlement(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	plan := &models.Plan{ID: "instant_79", Name: "Мгновенный", Price: 79, DurationDays: 3, ContactLimit: 50}
	sub := &models.UserSubscription{
		ID:        7,
		UserID:    42,
		PlanID:    "instant_79",
		StartTime: now.AddDate(0, 0, -1),
		EndTime:   now.AddDate(0, 0, 2),
		Active:    true,
	}

	t.Run("Успешное получение текущего права", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetCurrentSubscription", mock.Anything, int64(42), now).Return(sub, nil)
		cache.On("Get", "plan:instant_79", mock.Anything).Return(false, nil)
		repo.On("GetPlan", mock.Anything, "instant_79").Return(plan, nil)
		cache.On("Set", "plan:instant_79", plan, time.Hour).Return(nil)

		ledger := NewLedger(repo, cache, discardLogger())
		ent, err := ledger.CurrentEntitlement(context.Background(), 42, now)
		require.NoError(t, err)
		require.NotNil(t, ent)
		assert.Equal(t, 50, ent.Plan.ContactLimit)
		assert.Equal(t, sub.StartTime, ent.WindowStart)
		assert.Equal(t, sub.EndTime, ent.WindowEnd)
		repo.AssertExpectations(t)
	})

	t.Run("Нет действующей подписки — nil без ошибки", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCurrentSubscription", mock.Anything, int64(42), now).Return(nil, repository.ErrNotFound)

		ledger := NewLedger(repo, nil, discardLogger())
		ent, err := ledger.CurrentEntitlement(context.Background(), 42, now)
		require.NoError(t, err)
		assert.Nil(t, ent)
	})
}

func TestRecordPurchase(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	plan := &models.Plan{ID: "smart_monthly_199", Name: "Умный месяц", Price: 199, DurationDays: 30, ContactLimit: 200}
	req := models.DummyVerifySubscription{PlanID: "smart_monthly_199", PurchaseToken: "token-abc"}

	t.Run("Успешная регистрация новой покупки", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "smart_monthly_199").Return(plan, nil)
		repo.On("GetSubscriptionByToken", mock.Anything, "token-abc").Return(nil, repository.ErrNotFound)
		repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.UserSubscription) bool {
			return s.UserID == 42 && s.PlanID == "smart_monthly_199" &&
				s.EndTime.Equal(now.AddDate(0, 0, 30)) && s.Active
		})).Return(int64(11), nil)

		ledger := NewLedger(repo, nil, discardLogger())
		sub, err := ledger.RecordPurchase(context.Background(), 42, req, now)
		require.NoError(t, err)
		assert.Equal(t, int64(11), sub.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Повтор того же токена тем же пользователем — идемпотентный успех", func(t *testing.T) {
		existing := &models.UserSubscription{ID: 11, UserID: 42, PlanID: "smart_monthly_199", PurchaseToken: "token-abc"}
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "smart_monthly_199").Return(plan, nil)
		repo.On("GetSubscriptionByToken", mock.Anything, "token-abc").Return(existing, nil)

		ledger := NewLedger(repo, nil, discardLogger())
		sub, err := ledger.RecordPurchase(context.Background(), 42, req, now)
		require.NoError(t, err)
		assert.Equal(t, int64(11), sub.ID)
		repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
	})

	t.Run("Чужой токен — конфликт", func(t *testing.T) {
		existing := &models.UserSubscription{ID: 11, UserID: 99, PlanID: "smart_monthly_199", PurchaseToken: "token-abc"}
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "smart_monthly_199").Return(plan, nil)
		repo.On("GetSubscriptionByToken", mock.Anything, "token-abc").Return(existing, nil)

		ledger := NewLedger(repo, nil, discardLogger())
		_, err := ledger.RecordPurchase(context.Background(), 42, req, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrTokenTaken)
	})

	t.Run("Неизвестный план — ошибка", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "no_such_plan").Return(nil, repository.ErrNotFound)

		ledger := NewLedger(repo, nil, discardLogger())
		_, err := ledger.RecordPurchase(context.Background(), 42,
			models.DummyVerifySubscription{PlanID: "no_such_plan", PurchaseToken: "t"}, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownPlan)
	})

	t.Run("Проигрыш гонки вставки — возврат выигравшей записи", func(t *testing.T) {
		raced := &models.UserSubscription{ID: 13, UserID: 42, PlanID: "smart_monthly_199", PurchaseToken: "token-abc"}
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "smart_monthly_199").Return(plan, nil)
		repo.On("GetSubscriptionByToken", mock.Anything, "token-abc").Return(nil, repository.ErrNotFound).Once()
		repo.On("CreateSubscription", mock.Anything, mock.Anything).Return(int64(0), repository.ErrTokenTaken)
		repo.On("GetSubscriptionByToken", mock.Anything, "token-abc").Return(raced, nil).Once()

		ledger := NewLedger(repo, nil, discardLogger())
		sub, err := ledger.RecordPurchase(context.Background(), 42, req, now)
		require.NoError(t, err)
		assert.Equal(t, int64(13), sub.ID)
	})
}

func TestStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Без подписки статус inactive", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCurrentSubscription", mock.Anything, int64(42), now).Return(nil, repository.ErrNotFound)

		ledger := NewLedger(repo, nil, discardLogger())
		st, err := ledger.Status(context.Background(), 42, now)
		require.NoError(t, err)
		assert.Equal(t, "inactive", st.Status)
		assert.Nil(t, st.ExpiresAt)
	})
}

func TestSummary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	from := now.AddDate(0, 0, -30)

	repo := new(RepoMock)
	repo.On("CountUsageInWindow", mock.Anything, int64(42), from, now).Return(17, nil)
	repo.On("CountSubscriptionFee", mock.Anything, int64(42), from, now).Return(199, nil)

	ledger := NewLedger(repo, nil, discardLogger())
	sum, err := ledger.Summary(context.Background(), 42, 30, now)
	require.NoError(t, err)
	assert.Equal(t, 17, sum.Disclosures)
	assert.Equal(t, 199, sum.Fee)
	assert.Equal(t, 30, sum.WindowDays)
}
