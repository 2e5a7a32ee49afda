package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
)

// CreateListing вставляет новое объявление в статусе pending и возвращает его ID.
func (s *Storage) CreateListing(ctx context.Context, l models.Listing) (int64, error) {
	const op = "storage.CreateListing"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO listings (owner_id, ad_number, title, description, category, price,
			      location, contact_phone, contact_email, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		l.OwnerID, l.AdNumber, l.Title, l.Description, l.Category, l.Price,
		l.Location, l.ContactPhone, l.ContactEmail, string(moderation.StatusPending)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetListing возвращает объявление по его ID.
func (s *Storage) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	const op = "storage.GetListing"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_id, ad_number, title, description, category, price, location,
			      contact_phone, contact_email, status, moderation_reason, created_at, updated_at
			  FROM listings
			  WHERE id = $1`
	l := &models.Listing{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&l.ID, &l.OwnerID, &l.AdNumber, &l.Title, &l.Description, &l.Category,
		&l.Price, &l.Location, &l.ContactPhone, &l.ContactEmail, &l.Status,
		&l.ModerationReason, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// GetListingContact возвращает объявление вместе с данными владельца
// для раскрытия контакта. Статусы объявления и владельца проверяет сервис.
func (s *Storage) GetListingContact(ctx context.Context, id int64) (*models.Listing, *models.User, error) {
	const op = "storage.GetListingContact"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT l.id, l.owner_id, l.ad_number, l.title, l.contact_phone, l.contact_email,
			      l.status, u.username, u.company_name, u.approval_status
			  FROM listings l
			  JOIN users u ON u.id = l.owner_id
			  WHERE l.id = $1`
	l := &models.Listing{}
	owner := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&l.ID, &l.OwnerID, &l.AdNumber, &l.Title, &l.ContactPhone,
		&l.ContactEmail, &l.Status, &owner.Username, &owner.CompanyName,
		&owner.ApprovalStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	owner.ID = l.OwnerID
	return l, owner, nil
}

// ListPublicListings возвращает страницу одобренных объявлений.
// Объявления в любом другом статусе в публичную выдачу не попадают.
func (s *Storage) ListPublicListings(ctx context.Context, limit, offset int) ([]*models.PublicListing, error) {
	const op = "storage.ListPublicListings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, ad_number, title, description, category, price, location, created_at
			  FROM listings
			  WHERE status = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, string(moderation.StatusApproved), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.PublicListing
	for rows.Next() {
		l := &models.PublicListing{}
		if err := rows.Scan(&l.ID, &l.AdNumber, &l.Title, &l.Description, &l.Category,
			&l.Price, &l.Location, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveListing удаляет объявление вместе с изображениями и возвращает
// количество удалённых объявлений. Записи contact_usage остаются как
// история: раскрыть контакт удалённого объявления больше нельзя,
// но расход квоты не отменяется.
func (s *Storage) RemoveListing(ctx context.Context, id int64) (int64, error) {
	const op = "storage.RemoveListing"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}
