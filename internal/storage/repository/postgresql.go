// Package repository реализует хранилище данных на основе PostgreSQL:
// пользователи, тарифные планы, подписки, записи о раскрытии контактов,
// объявления, изображения и журнал модерации. Переходы модерации и
// расход квоты выполняются атомарно, в одной транзакции.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Сервисы сопоставляют их с ошибками,
// видимыми пользователю.
var (
	// ErrNotFound — запрошенная строка отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrUsageExists — пара (пользователь, объявление) уже раскрыта;
	// проигравший гонку конкурентный запрос видит именно эту ошибку.
	ErrUsageExists = errors.New("contact already unlocked")
	// ErrTokenTaken — платёжный токен уже использован другой учётной записью.
	ErrTokenTaken = errors.New("purchase token already used")
	// ErrStatusConflict — статус сущности изменился между чтением и записью.
	ErrStatusConflict = errors.New("entity status changed concurrently")
	// ErrDuplicateImage — изображение с таким хэшем уже есть у объявления.
	ErrDuplicateImage = errors.New("duplicate image for listing")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// isUniqueViolation распознаёт нарушение уникального ограничения
// (SQLSTATE 23505) под любым уровнем обёртки.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
