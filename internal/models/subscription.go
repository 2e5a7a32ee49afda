package models

import "time"

// UserSubscription — одна строка на каждую покупку подписки.
// PurchaseToken уникален: повторная отправка одного и того же платёжного
// подтверждения не может породить вторую подписку.
type UserSubscription struct {
	ID            int64     // Идентификатор записи
	UserID        int64     // Покупатель
	PlanID        string    // Купленный план
	PurchaseToken string    // Платёжный токен (уникальный)
	StartTime     time.Time // Начало окна действия
	EndTime       time.Time // Конец окна действия
	Active        bool      // Признак действующей записи
	CreatedAt     time.Time // Дата создания строки
}

// Covers сообщает, покрывает ли окно подписки момент времени now.
func (s *UserSubscription) Covers(now time.Time) bool {
	return s.Active && !s.StartTime.After(now) && !s.EndTime.Before(now)
}

// Entitlement — текущее право пользователя на раскрытие контактов:
// план и границы действующего окна. Вычисляется заново на каждый запрос,
// кэширование здесь недопустимо.
type Entitlement struct {
	Plan        Plan      // Действующий план
	WindowStart time.Time // Начало окна
	WindowEnd   time.Time // Конец окна
}

// DummyVerifySubscription используется для приёма данных из JSON-запроса
// проверки покупки, прежде чем передать их в бизнес-логику.
type DummyVerifySubscription struct {
	PlanID        string `json:"product_id" validate:"required"`     // Идентификатор плана
	PurchaseToken string `json:"purchase_token" validate:"required"` // Платёжный токен
}

// SubscriptionStatus — представление текущей подписки для личного кабинета.
type SubscriptionStatus struct {
	Status    string     `json:"status"`               // active или inactive
	Provider  string     `json:"provider"`             // Платёжный провайдер
	PlanID    string     `json:"plan_id,omitempty"`    // Действующий план
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // Конец окна подписки
}

// SubscriptionSummary — агрегат по скользящему окну для личного кабинета:
// сколько контактов раскрыто и сколько потрачено на подписки.
type SubscriptionSummary struct {
	WindowDays  int `json:"window_days"` // Размер окна в днях
	Disclosures int `json:"disclosures"` // Количество раскрытий за окно
	Fee         int `json:"fee"`         // Сумма покупок подписок за окно
}
