package models

import "time"

// Listing представляет объявление. Создаётся владельцем всегда в статусе
// pending; статус меняется только решениями модератора.
type Listing struct {
	ID               int64     // Идентификатор объявления
	OwnerID          int64     // Владелец
	AdNumber         string    // Публичный номер объявления
	Title            string    // Заголовок
	Description      string    // Описание
	Category         string    // Категория
	Price            int       // Цена
	Location         string    // Отображаемый адрес
	ContactPhone     string    // Контактный телефон (раскрывается по квоте)
	ContactEmail     string    // Контактная почта (раскрывается по квоте)
	Status           string    // Статус модерации
	ModerationReason string    // Причина последнего решения модератора
	CreatedAt        time.Time // Дата создания
	UpdatedAt        time.Time // Дата последнего изменения
}

// DummyListing используется для приёма данных из JSON-запроса на размещение
// объявления, прежде чем конвертировать их в Listing.
type DummyListing struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category" validate:"required"`
	Price        int    `json:"price" validate:"gte=0"`
	Location     string `json:"location,omitempty"`
	ContactPhone string `json:"contact_phone" validate:"required"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

// PublicListing — представление объявления для публичной выдачи,
// без контактных полей.
type PublicListing struct {
	ID          int64     `json:"id"`
	AdNumber    string    `json:"adv_number"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       int       `json:"price"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}
