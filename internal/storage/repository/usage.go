package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

// GetUsage возвращает запись о раскрытии контакта для пары
// (пользователь, объявление) или ErrNotFound.
func (s *Storage) GetUsage(ctx context.Context, userID, listingID int64) (*models.ContactUsage, error) {
	const op = "storage.GetUsage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, listing_id, created_at
			  FROM contact_usage
			  WHERE user_id = $1 AND listing_id = $2`
	u := &models.ContactUsage{}
	row := s.DB.QueryRowContext(ctx, query, userID, listingID)
	if err := row.Scan(&u.ID, &u.UserID, &u.ListingID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// InsertUsage атомарно расходует единицу квоты: вставляет запись для пары
// (пользователь, объявление). При конкурентной гонке ровно один запрос
// вставляет строку, остальные получают ErrUsageExists — это гарантирует
// уникальный индекс, а не блокировки в приложении.
func (s *Storage) InsertUsage(ctx context.Context, userID, listingID int64) (int64, error) {
	const op = "storage.InsertUsage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO contact_usage (user_id, listing_id)
			  VALUES ($1, $2)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, userID, listingID).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrUsageExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CountUsageInWindow возвращает число раскрытий пользователя, созданных
// внутри интервала [from, to]. Именно это число сравнивается с квотой плана.
func (s *Storage) CountUsageInWindow(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	const op = "storage.CountUsageInWindow"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM contact_usage
			  WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountUsageTotal возвращает общее число раскрытий пользователя за всё время.
// Используется для бесплатной квоты пользователей без подписки.
func (s *Storage) CountUsageTotal(ctx context.Context, userID int64) (int, error) {
	const op = "storage.CountUsageTotal"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM contact_usage WHERE user_id = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
