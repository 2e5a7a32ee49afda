package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
)

// entityTable описывает, в какой таблице и в каких колонках живёт статус
// модерации сущности.
type entityTable struct {
	table        string
	statusColumn string
	reasonColumn string
}

func tableFor(entity moderation.EntityType) (entityTable, error) {
	switch entity {
	case moderation.EntityListing:
		return entityTable{"listings", "status", "moderation_reason"}, nil
	case moderation.EntityImage:
		return entityTable{"listing_images", "status", "moderation_reason"}, nil
	case moderation.EntityOwner, moderation.EntityUser:
		return entityTable{"users", "approval_status", "approval_reason"}, nil
	}
	return entityTable{}, fmt.Errorf("unknown entity type: %s", entity)
}

// GetEntityStatus возвращает текущий статус модерации сущности.
func (s *Storage) GetEntityStatus(ctx context.Context, entity moderation.EntityType, id int64) (moderation.Status, error) {
	const op = "storage.GetEntityStatus"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	et, err := tableFor(entity)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, et.statusColumn, et.table)
	var status string
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return moderation.Status(status), nil
}

// ApplyTransition атомарно переводит сущность из статуса from в статус to
// и добавляет запись в журнал модерации — обе записи в одной транзакции,
// чтобы статус и журнал не могли разойтись. Обновление сравнивает текущий
// статус со значением from: если его успел поменять конкурентный запрос,
// возвращается ErrStatusConflict и ничего не записывается.
func (s *Storage) ApplyTransition(ctx context.Context, entity moderation.EntityType, id int64,
	from, to moderation.Status, action moderation.Action, actorUserID int64, reason string) error {
	const op = "storage.ApplyTransition"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	et, err := tableFor(entity)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	update := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE id = $3 AND %s = $4`,
		et.table, et.statusColumn, et.reasonColumn, et.statusColumn)
	result, err := tx.ExecContext(ctx, update, string(to), reason, id, string(from))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrStatusConflict)
	}

	insert := `INSERT INTO audit_log (actor_user_id, entity_type, entity_id, action, reason)
			   VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insert, actorUserID, string(entity), id, string(action), reason); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
