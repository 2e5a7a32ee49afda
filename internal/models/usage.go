package models

import "time"

// ContactUsage — одна строка на пару (пользователь, объявление),
// создаётся при первом успешном раскрытии контакта. Уникальность пары
// делает раскрытие идемпотентным: повторный просмотр бесплатен и
// не расходует квоту.
type ContactUsage struct {
	ID        int64     // Идентификатор записи
	UserID    int64     // Кто раскрыл контакт
	ListingID int64     // Какое объявление
	CreatedAt time.Time // Момент первого раскрытия
}

// ContactCard — контактные данные владельца, возвращаемые при раскрытии.
type ContactCard struct {
	AdNumber     string `json:"adv_number"`         // Публичный номер объявления
	OwnerName    string `json:"owner_name"`         // Имя владельца
	CompanyName  string `json:"owner_company_name"` // Название компании (может быть пустым)
	ContactPhone string `json:"phone"`              // Телефон для связи
	ContactEmail string `json:"email"`              // Почта для связи
}

// ContactDisclosedEvent публикуется в очередь уведомлений после успешного
// раскрытия, чтобы отправить карточку контакта покупателю на почту.
type ContactDisclosedEvent struct {
	CustomerEmail string      `json:"customer_email"`
	ListingID     int64       `json:"listing_id"`
	Card          ContactCard `json:"card"`
}
