// Package models содержит доменные структуры маркетплейса объявлений:
// пользователей, тарифные планы, подписки, записи о раскрытии контактов,
// объявления с их изображениями и журнал модерации. Здесь же определены
// закрытые перечисления статусов и действий модерации, чтобы сравнение
// статусов не расползалось строками по обработчикам.
package models

import "time"

// Роли пользователей системы.
const (
	RoleCustomer = "customer" // обычный пользователь, ищет объявления
	RoleOwner    = "owner"    // владелец, размещает объявления
	RoleAdmin    = "admin"    // администратор, модерирует контент
)

// User представляет зарегистрированного пользователя системы.
// ApprovalStatus относится к учётной записи (и к заявке владельца),
// он не связан со статусом модерации объявлений.
type User struct {
	ID             int64     // Уникальный идентификатор пользователя
	Email          string    // Электронная почта (уникальная)
	Username       string    // Имя пользователя (уникальное, опциональное)
	Phone          string    // Телефон (уникальный)
	PasswordHash   string    // Хэш пароля
	Role           string    // Роль: customer, owner или admin
	OwnerCategory  string    // Категория бизнеса (только для владельцев)
	CompanyName    string    // Название компании (опционально, для владельцев)
	ApprovalStatus string    // Статус одобрения учётной записи
	ApprovalReason string    // Причина последнего решения модератора
	CreatedAt      time.Time // Дата регистрации
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
