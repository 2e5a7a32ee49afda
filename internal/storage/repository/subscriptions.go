package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

// CreateSubscription вставляет новую запись о покупке подписки и возвращает её ID.
// Предыдущие подписки пользователя деактивируются в той же транзакции.
// Повтор платёжного токена другой учётной записью даёт ErrTokenTaken.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.UserSubscription) (int64, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE user_subscriptions SET active = false WHERE user_id = $1 AND active`, sub.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var newID int64
	query := `INSERT INTO user_subscriptions (user_id, plan_id, purchase_token, start_time, end_time, active)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		sub.UserID, sub.PlanID, sub.PurchaseToken, sub.StartTime, sub.EndTime, sub.Active).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrTokenTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscriptionByToken возвращает подписку по платёжному токену.
func (s *Storage) GetSubscriptionByToken(ctx context.Context, purchaseToken string) (*models.UserSubscription, error) {
	const op = "storage.GetSubscriptionByToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, plan_id, purchase_token, start_time, end_time, active, created_at
			  FROM user_subscriptions
			  WHERE purchase_token = $1`
	sub := &models.UserSubscription{}
	row := s.DB.QueryRowContext(ctx, query, purchaseToken)
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.PurchaseToken,
		&sub.StartTime, &sub.EndTime, &sub.Active, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetCurrentSubscription возвращает действующую подписку пользователя:
// активную, чьё окно покрывает момент now, с самым поздним end_time.
func (s *Storage) GetCurrentSubscription(ctx context.Context, userID int64, now time.Time) (*models.UserSubscription, error) {
	const op = "storage.GetCurrentSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, plan_id, purchase_token, start_time, end_time, active, created_at
			  FROM user_subscriptions
			  WHERE user_id = $1 AND active AND start_time <= $2 AND end_time >= $2
			  ORDER BY end_time DESC, id DESC
			  LIMIT 1`
	sub := &models.UserSubscription{}
	row := s.DB.QueryRowContext(ctx, query, userID, now)
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.PurchaseToken,
		&sub.StartTime, &sub.EndTime, &sub.Active, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// CountSubscriptionFee возвращает сумму, потраченную пользователем на
// подписки, начатые внутри интервала [from, to].
func (s *Storage) CountSubscriptionFee(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	const op = "storage.CountSubscriptionFee"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(SUM(p.price), 0)
			  FROM user_subscriptions us
			  JOIN subscription_plans p ON p.id = us.plan_id
			  WHERE us.user_id = $1 AND us.start_time >= $2 AND us.start_time <= $3`
	var fee int
	if err := s.DB.QueryRowContext(ctx, query, userID, from, to).Scan(&fee); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return fee, nil
}
