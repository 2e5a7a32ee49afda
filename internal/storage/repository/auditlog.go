package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

// AuditFilter — параметры выборки журнала модерации.
// Пустой EntityType и нулевой EntityID означают отсутствие фильтра.
type AuditFilter struct {
	EntityType string
	EntityID   int64
	Limit      int
}

// QueryAuditLog возвращает записи журнала модерации, новые первыми.
// Порядок стабильный: created_at, затем id.
func (s *Storage) QueryAuditLog(ctx context.Context, filter AuditFilter) ([]*models.AuditLogEntry, error) {
	const op = "storage.QueryAuditLog"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, actor_user_id, entity_type, entity_id, action, reason, created_at
			  FROM audit_log
			  WHERE ($1 = '' OR entity_type = $1)
			    AND ($2 = 0 OR entity_id = $2)
			  ORDER BY created_at DESC, id DESC
			  LIMIT $3`
	rows, err := s.DB.QueryContext(ctx, query, filter.EntityType, filter.EntityID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.AuditLogEntry
	for rows.Next() {
		e := &models.AuditLogEntry{}
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.EntityType, &e.EntityID,
			&e.Action, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
