// Package subscription содержит бизнес-логику учёта подписок: вычисление
// текущего права на раскрытие контактов и регистрацию покупок.
// Право вычисляется заново на каждый запрос — кэшировать его нельзя,
// иначе пользователь сможет действовать по устаревшей квоте.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// Провайдер платежей: проверку покупки выполняет внешний коллаборатор,
// сюда приходит уже провалидированный токен.
const provider = "google_play"

// ErrUnknownPlan возвращается при покупке несуществующего плана.
var ErrUnknownPlan = errors.New("unknown plan")

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// GetPlan возвращает тарифный план по его идентификатору.
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	// GetCurrentSubscription возвращает действующую подписку пользователя.
	GetCurrentSubscription(ctx context.Context, userID int64, now time.Time) (*models.UserSubscription, error)
	// GetSubscriptionByToken возвращает подписку по платёжному токену.
	GetSubscriptionByToken(ctx context.Context, purchaseToken string) (*models.UserSubscription, error)
	// CreateSubscription вставляет новую запись о покупке.
	CreateSubscription(ctx context.Context, sub models.UserSubscription) (int64, error)
	// CountUsageInWindow считает раскрытия внутри интервала.
	CountUsageInWindow(ctx context.Context, userID int64, from, to time.Time) (int, error)
	// CountSubscriptionFee считает расходы на подписки внутри интервала.
	CountSubscriptionFee(ctx context.Context, userID int64, from, to time.Time) (int, error)
}

// Cache описывает методы для кэширования данных. Кэшируется только
// неизменяемый каталог планов, никогда — права и статусы.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
}

// Ledger реализует учёт подписок.
type Ledger struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewLedger создает новый экземпляр Ledger.
func NewLedger(repo Repository, cache Cache, log *slog.Logger) *Ledger {
	return &Ledger{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// planByID возвращает план, при возможности из кеша каталога.
func (l *Ledger) planByID(ctx context.Context, planID string) (*models.Plan, error) {
	cacheKey := "plan:" + planID

	var cached models.Plan
	if l.cache != nil {
		found, err := l.cache.Get(cacheKey, &cached)
		if err != nil {
			l.log.Warn("plan cache lookup failed", slog.String("plan_id", planID))
		} else if found {
			return &cached, nil
		}
	}

	plan, err := l.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		if err := l.cache.Set(cacheKey, plan, time.Hour); err != nil {
			l.log.Warn("plan cache store failed", slog.String("plan_id", planID))
		}
	}
	return plan, nil
}

// CurrentEntitlement возвращает текущее право пользователя: план и окно
// действующей подписки. Если действующей подписки нет, возвращает nil.
// Правило выбора: активная запись, чьё окно покрывает now, с самым
// поздним end_time.
func (l *Ledger) CurrentEntitlement(ctx context.Context, userID int64, now time.Time) (*models.Entitlement, error) {
	const op = "services.subscription.CurrentEntitlement"

	sub, err := l.repo.GetCurrentSubscription(ctx, userID, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plan, err := l.planByID(ctx, sub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Entitlement{
		Plan:        *plan,
		WindowStart: sub.StartTime,
		WindowEnd:   sub.EndTime,
	}, nil
}

// RecordPurchase регистрирует провалидированную покупку подписки.
// Повтор того же токена тем же пользователем — идемпотомный успех
// (клиентские ретраи не должны видеть ошибку); чужой токен — ошибка
// ErrTokenTaken. Окно подписки считается от now по длительности плана.
func (l *Ledger) RecordPurchase(ctx context.Context, userID int64, req models.DummyVerifySubscription, now time.Time) (*models.UserSubscription, error) {
	const op = "services.subscription.RecordPurchase"

	plan, err := l.planByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownPlan)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := l.repo.GetSubscriptionByToken(ctx, req.PurchaseToken)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		if existing.UserID != userID {
			return nil, fmt.Errorf("%s: %w", op, repository.ErrTokenTaken)
		}
		// Повторная отправка того же платёжного подтверждения.
		return existing, nil
	}

	sub := models.UserSubscription{
		UserID:        userID,
		PlanID:        plan.ID,
		PurchaseToken: req.PurchaseToken,
		StartTime:     now,
		EndTime:       now.AddDate(0, 0, plan.DurationDays),
		Active:        true,
	}
	id, err := l.repo.CreateSubscription(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrTokenTaken) {
			// Проигрыш гонки двух одинаковых ретраев: строка уже есть.
			raced, rerr := l.repo.GetSubscriptionByToken(ctx, req.PurchaseToken)
			if rerr != nil {
				return nil, fmt.Errorf("%s: %w", op, rerr)
			}
			if raced.UserID != userID {
				return nil, fmt.Errorf("%s: %w", op, repository.ErrTokenTaken)
			}
			return raced, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.ID = id

	l.log.Info("subscription purchase recorded",
		slog.Int64("user_id", userID),
		slog.String("plan_id", plan.ID))
	return &sub, nil
}

// Status возвращает представление текущей подписки для личного кабинета.
func (l *Ledger) Status(ctx context.Context, userID int64, now time.Time) (*models.SubscriptionStatus, error) {
	const op = "services.subscription.Status"

	ent, err := l.CurrentEntitlement(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ent == nil {
		return &models.SubscriptionStatus{Status: "inactive", Provider: provider}, nil
	}
	expires := ent.WindowEnd
	return &models.SubscriptionStatus{
		Status:    "active",
		Provider:  provider,
		PlanID:    ent.Plan.ID,
		ExpiresAt: &expires,
	}, nil
}

// Summary возвращает агрегат по скользящему окну в windowDays дней:
// число раскрытий контактов и сумму расходов на подписки.
func (l *Ledger) Summary(ctx context.Context, userID int64, windowDays int, now time.Time) (*models.SubscriptionSummary, error) {
	const op = "services.subscription.Summary"

	from := now.AddDate(0, 0, -windowDays)
	disclosures, err := l.repo.CountUsageInWindow(ctx, userID, from, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	fee, err := l.repo.CountSubscriptionFee(ctx, userID, from, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.SubscriptionSummary{
		WindowDays:  windowDays,
		Disclosures: disclosures,
		Fee:         fee,
	}, nil
}
