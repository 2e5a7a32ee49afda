// Package moderation содержит сервис исполнения модераторских решений:
// чтение текущего статуса, проверка перехода конечным автоматом и
// атомарная запись нового статуса вместе с журналом.
package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
)

// Repository определяет методы хранилища для смены статусов модерации.
type Repository interface {
	GetEntityStatus(ctx context.Context, entity moderation.EntityType, id int64) (moderation.Status, error)
	ApplyTransition(ctx context.Context, entity moderation.EntityType, id int64,
		from, to moderation.Status, action moderation.Action, actorUserID int64, reason string) error
}

// Service применяет модераторские действия к сущностям.
type Service struct {
	repo    Repository
	machine *moderation.Machine
	log     *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, machine *moderation.Machine, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		machine: machine,
		log:     log,
	}
}

// Decision описывает результат применённого действия.
type Decision struct {
	Entity moderation.EntityType `json:"entity_type"`
	ID     int64                 `json:"entity_id"`
	From   moderation.Status     `json:"previous_status"`
	To     moderation.Status     `json:"status"`
}

// Apply выполняет действие action над сущностью от имени модератора actor.
// Статус читается непосредственно перед переходом, а запись в хранилище
// сверяет его повторно: конкурентное решение другого модератора даёт
// ErrStatusConflict, а не молчаливую перезапись.
func (s *Service) Apply(ctx context.Context, entity moderation.EntityType, id int64,
	action moderation.Action, actorUserID int64, reason string) (*Decision, error) {
	const op = "services.moderation.Apply"

	current, err := s.repo.GetEntityStatus(ctx, entity, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next, err := s.machine.Next(entity, current, action)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.ApplyTransition(ctx, entity, id, current, next, action, actorUserID, reason); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("moderation decision applied",
		slog.String("entity_type", string(entity)),
		slog.Int64("entity_id", id),
		slog.String("action", string(action)),
		slog.String("status", string(next)),
		slog.Int64("actor_user_id", actorUserID))

	return &Decision{Entity: entity, ID: id, From: current, To: next}, nil
}
