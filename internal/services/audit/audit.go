// Package audit предоставляет чтение журнала модераторских решений.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Repository определяет методы чтения журнала.
type Repository interface {
	QueryAuditLog(ctx context.Context, filter repository.AuditFilter) ([]*models.AuditLogEntry, error)
}

// Service отдаёт записи журнала с фильтрацией по сущности.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Query возвращает записи журнала от новых к старым. Нулевой или
// завышенный лимит приводится к допустимому диапазону.
func (s *Service) Query(ctx context.Context, filter repository.AuditFilter) ([]*models.AuditLogEntry, error) {
	const op = "services.audit.Query"

	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	entries, err := s.repo.QueryAuditLog(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}
