package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, username, phone, password_hash, role, owner_category,
			      company_name, approval_status, approval_reason, created_at
			  FROM users
			  WHERE id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Phone, &u.PasswordHash,
		&u.Role, &u.OwnerCategory, &u.CompanyName, &u.ApprovalStatus,
		&u.ApprovalReason, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByIdentifier возвращает пользователя по email, username или телефону.
// Используется при входе администратора.
func (s *Storage) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	const op = "storage.GetUserByIdentifier"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, username, phone, password_hash, role, owner_category,
			      company_name, approval_status, approval_reason, created_at
			  FROM users
			  WHERE email = lower($1) OR username = $1 OR phone = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, identifier)
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Phone, &u.PasswordHash,
		&u.Role, &u.OwnerCategory, &u.CompanyName, &u.ApprovalStatus,
		&u.ApprovalReason, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
