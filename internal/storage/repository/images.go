package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
)

// CreateImage регистрирует изображение объявления в статусе pending.
// Дубликат по хэшу содержимого внутри одного объявления отсекается
// уникальным индексом ещё до того, как изображение увидит модератор.
func (s *Storage) CreateImage(ctx context.Context, img models.ListingImage) (int64, error) {
	const op = "storage.CreateImage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO listing_images (listing_id, file_path, image_hash, content_type, size_bytes, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		img.ListingID, img.FilePath, img.ImageHash, img.ContentType, img.SizeBytes,
		string(moderation.StatusPending)).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicateImage)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListImages возвращает изображения объявления в порядке загрузки.
func (s *Storage) ListImages(ctx context.Context, listingID int64) ([]*models.ListingImage, error) {
	const op = "storage.ListImages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, listing_id, file_path, image_hash, content_type, size_bytes,
			      status, moderation_reason, created_at
			  FROM listing_images
			  WHERE listing_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.ListingImage
	for rows.Next() {
		img := &models.ListingImage{}
		if err := rows.Scan(&img.ID, &img.ListingID, &img.FilePath, &img.ImageHash,
			&img.ContentType, &img.SizeBytes, &img.Status, &img.ModerationReason,
			&img.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
