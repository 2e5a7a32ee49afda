package models

import "time"

// ListingImage принадлежит ровно одному объявлению. Хэш содержимого
// используется для отсечения дублей: два изображения с одинаковым хэшем
// под одним объявлением не допускаются ещё до попадания в pending.
type ListingImage struct {
	ID               int64     // Идентификатор изображения
	ListingID        int64     // Объявление-владелец
	FilePath         string    // Относительный путь или URL файла
	ImageHash        string    // sha256 содержимого (hex)
	ContentType      string    // MIME-тип
	SizeBytes        int64     // Размер файла
	Status           string    // Статус модерации
	ModerationReason string    // Причина последнего решения модератора
	CreatedAt        time.Time // Дата загрузки
}

// DummyListingImage используется для приёма метаданных изображения
// из JSON-запроса. Само хранение файлов — забота внешнего сервиса.
type DummyListingImage struct {
	FilePath    string `json:"file_path" validate:"required"`
	ImageHash   string `json:"image_hash" validate:"required,len=64"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty" validate:"omitempty,gte=0"`
}
