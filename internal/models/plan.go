package models

// Plan представляет тарифный план из каталога подписок.
// Каталог неизменяемый: записи заливаются миграцией и читаются как справочник.
type Plan struct {
	ID           string // Идентификатор продукта, например smart_monthly_199
	Name         string // Короткое название плана
	Price        int    // Цена за период
	DurationDays int    // Длительность окна подписки в днях
	ContactLimit int    // Квота раскрытий контактов на одно окно
}
