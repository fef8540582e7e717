package repository

import (
	"context"

	"woms/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository is the append-only mailbox store.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipient string, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipient string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return GetDB(ctx, r.db).Create(n).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipient string, offset, limit int) ([]model.Notification, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Notification{}).Where("recipient = ?", recipient)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Notification
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipient string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("id = ? AND recipient = ?", id, recipient).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
