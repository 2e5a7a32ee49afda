package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
)

func TestInsertUsage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "buyer@example.com", "buyer", "customer", "approved")
	ownerID := factory.CreateOwner(t, "owner@example.com", "seller", "ООО Ромашка", "approved")
	listingID := factory.CreateListing(t, ownerID, "AD-1A2B3C4D", "Продам гараж", "approved")

	t.Run("Успешная вставка записи о раскрытии", func(t *testing.T) {
		id, err := storage.InsertUsage(ctx, userID, listingID)
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))

		usage, err := storage.GetUsage(ctx, userID, listingID)
		require.NoError(t, err)
		assert.Equal(t, userID, usage.UserID)
		assert.Equal(t, listingID, usage.ListingID)
	})

	t.Run("Повторная вставка возвращает ErrUsageExists", func(t *testing.T) {
		_, err := storage.InsertUsage(ctx, userID, listingID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUsageExists)
	})

	t.Run("Отсутствующая запись дает ErrNotFound", func(t *testing.T) {
		_, err := storage.GetUsage(ctx, userID, listingID+100)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCountUsage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "buyer@example.com", "buyer", "customer", "approved")
	now := time.Now().UTC()

	// Две записи внутри окна подписки, одна до его начала.
	factory.CreateUsage(t, userID, 101, now.AddDate(0, 0, -1))
	factory.CreateUsage(t, userID, 102, now.AddDate(0, 0, -5))
	factory.CreateUsage(t, userID, 103, now.AddDate(0, 0, -40))

	count, err := storage.CountUsageInWindow(ctx, userID, now.AddDate(0, 0, -30), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	total, err := storage.CountUsageTotal(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestApplyTransition(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	adminID := factory.CreateUser(t, "admin@example.com", "admin", "admin", "approved")
	ownerID := factory.CreateOwner(t, "owner@example.com", "seller", "ООО Ромашка", "approved")
	listingID := factory.CreateListing(t, ownerID, "AD-1A2B3C4D", "Продам гараж", "pending")

	t.Run("Переход и запись журнала в одной транзакции", func(t *testing.T) {
		err := storage.ApplyTransition(ctx, moderation.EntityListing, listingID,
			moderation.StatusPending, moderation.StatusApproved, moderation.ActionApprove, adminID, "ок")
		require.NoError(t, err)

		status, err := storage.GetEntityStatus(ctx, moderation.EntityListing, listingID)
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusApproved, status)

		entries, err := storage.QueryAuditLog(ctx, AuditFilter{EntityType: "listing", EntityID: listingID, Limit: 10})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, adminID, entries[0].ActorUserID)
		assert.Equal(t, "approve", entries[0].Action)
	})

	t.Run("Несовпадение текущего статуса дает ErrStatusConflict без записи в журнал", func(t *testing.T) {
		err := storage.ApplyTransition(ctx, moderation.EntityListing, listingID,
			moderation.StatusPending, moderation.StatusRejected, moderation.ActionReject, adminID, "устарело")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStatusConflict)

		entries, err := storage.QueryAuditLog(ctx, AuditFilter{EntityType: "listing", EntityID: listingID, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Отсутствующая сущность дает ErrNotFound при чтении статуса", func(t *testing.T) {
		_, err := storage.GetEntityStatus(ctx, moderation.EntityListing, listingID+100)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Статус владельца читается из таблицы пользователей", func(t *testing.T) {
		status, err := storage.GetEntityStatus(ctx, moderation.EntityOwner, ownerID)
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusApproved, status)
	})
}

func TestCreateSubscription(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "buyer@example.com", "buyer", "customer", "approved")
	otherID := factory.CreateUser(t, "other@example.com", "other", "customer", "approved")
	factory.CreatePlan(t, "smart_monthly_199", "Smart", 199, 30, 200)
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Новая подписка деактивирует предыдущую", func(t *testing.T) {
		first, err := storage.CreateSubscription(ctx, models.UserSubscription{
			UserID: userID, PlanID: "smart_monthly_199", PurchaseToken: "token-1",
			StartTime: now, EndTime: now.AddDate(0, 0, 30), Active: true,
		})
		require.NoError(t, err)

		second, err := storage.CreateSubscription(ctx, models.UserSubscription{
			UserID: userID, PlanID: "smart_monthly_199", PurchaseToken: "token-2",
			StartTime: now, EndTime: now.AddDate(0, 0, 30), Active: true,
		})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		current, err := storage.GetCurrentSubscription(ctx, userID, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, second, current.ID)
		assert.Equal(t, "token-2", current.PurchaseToken)
	})

	t.Run("Чужой платежный токен дает ErrTokenTaken", func(t *testing.T) {
		_, err := storage.CreateSubscription(ctx, models.UserSubscription{
			UserID: otherID, PlanID: "smart_monthly_199", PurchaseToken: "token-2",
			StartTime: now, EndTime: now.AddDate(0, 0, 30), Active: true,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenTaken)
	})

	t.Run("Поиск по токену возвращает владельца токена", func(t *testing.T) {
		sub, err := storage.GetSubscriptionByToken(ctx, "token-2")
		require.NoError(t, err)
		assert.Equal(t, userID, sub.UserID)
	})

	t.Run("Истекшая подписка не считается текущей", func(t *testing.T) {
		_, err := storage.GetCurrentSubscription(ctx, userID, now.AddDate(0, 0, 31))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetListingContact(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	ownerID := factory.CreateOwner(t, "owner@example.com", "seller", "ООО Ромашка", "approved")
	listingID := factory.CreateListing(t, ownerID, "AD-1A2B3C4D", "Продам гараж", "approved")

	t.Run("Возвращает объявление вместе с владельцем", func(t *testing.T) {
		listing, owner, err := storage.GetListingContact(ctx, listingID)
		require.NoError(t, err)
		assert.Equal(t, "AD-1A2B3C4D", listing.AdNumber)
		assert.Equal(t, "+79990001122", listing.ContactPhone)
		assert.Equal(t, "seller", owner.Username)
		assert.Equal(t, "ООО Ромашка", owner.CompanyName)
		assert.Equal(t, ownerID, owner.ID)
	})

	t.Run("Отсутствующее объявление дает ErrNotFound", func(t *testing.T) {
		_, _, err := storage.GetListingContact(ctx, listingID+100)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListPublicListings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	ownerID := factory.CreateOwner(t, "owner@example.com", "seller", "ООО Ромашка", "approved")
	factory.CreateListing(t, ownerID, "AD-00000001", "Одобренное", "approved")
	factory.CreateListing(t, ownerID, "AD-00000002", "Ожидает", "pending")
	factory.CreateListing(t, ownerID, "AD-00000003", "Отклоненное", "rejected")

	listings, err := storage.ListPublicListings(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Одобренное", listings[0].Title)
}

func TestCreateImage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	ownerID := factory.CreateOwner(t, "owner@example.com", "seller", "ООО Ромашка", "approved")
	listingID := factory.CreateListing(t, ownerID, "AD-1A2B3C4D", "Продам гараж", "approved")

	hash := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	img := models.ListingImage{
		ListingID:   listingID,
		FilePath:    "uploads/1.jpg",
		ImageHash:   hash,
		ContentType: "image/jpeg",
		SizeBytes:   1024,
	}

	t.Run("Изображение сохраняется в статусе pending", func(t *testing.T) {
		id, err := storage.CreateImage(ctx, img)
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))

		images, err := storage.ListImages(ctx, listingID)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, hash, images[0].ImageHash)
	})

	t.Run("Повторный хэш дает ErrDuplicateImage", func(t *testing.T) {
		_, err := storage.CreateImage(ctx, img)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateImage)
	})
}

func TestGetPlan(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	factory.CreatePlan(t, "smart_monthly_199", "Smart", 199, 30, 200)

	t.Run("Возвращает план по идентификатору", func(t *testing.T) {
		plan, err := storage.GetPlan(ctx, "smart_monthly_199")
		require.NoError(t, err)
		assert.Equal(t, 200, plan.ContactLimit)
		assert.Equal(t, 30, plan.DurationDays)
	})

	t.Run("Неизвестный план дает ErrNotFound", func(t *testing.T) {
		_, err := storage.GetPlan(ctx, "no_such_plan")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
