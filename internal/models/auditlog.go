package models

import "time"

// AuditLogEntry — неизменяемая запись о привилегированном действии
// администратора. Записи только добавляются, никогда не правятся
// и не удаляются.
type AuditLogEntry struct {
	ID          int64     `json:"id"`
	ActorUserID int64     `json:"actor_user_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	Action      string    `json:"action"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}
