package repository

import (
	"context"

	"woms/internal/model"

	"gorm.io/gorm"
)

// DraftPORepository is the data access layer of draft purchase orders.
type DraftPORepository interface {
	Create(ctx context.Context, draft *model.DraftPurchaseOrder) error
	GetByID(ctx context.Context, id string) (*model.DraftPurchaseOrder, error)
	GetByRequestID(ctx context.Context, requestID string) (*model.DraftPurchaseOrder, error)
	Save(ctx context.Context, draft *model.DraftPurchaseOrder) error
	// MarkFinalized flips status draft -> finalized with a guarded update.
	// Returns the number of rows affected: zero means the draft was already
	// finalized by a concurrent call.
	MarkFinalized(ctx context.Context, id string) (int64, error)
}

type draftPORepository struct {
	db *gorm.DB
}

func NewDraftPORepository(db *gorm.DB) DraftPORepository {
	return &draftPORepository{db: db}
}

func (r *draftPORepository) Create(ctx context.Context, draft *model.DraftPurchaseOrder) error {
	return GetDB(ctx, r.db).Create(draft).Error
}

func (r *draftPORepository) GetByID(ctx context.Context, id string) (*model.DraftPurchaseOrder, error) {
	var draft model.DraftPurchaseOrder
	if err := GetDB(ctx, r.db).First(&draft, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftPORepository) GetByRequestID(ctx context.Context, requestID string) (*model.DraftPurchaseOrder, error) {
	var draft model.DraftPurchaseOrder
	if err := GetDB(ctx, r.db).First(&draft, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftPORepository) Save(ctx context.Context, draft *model.DraftPurchaseOrder) error {
	return GetDB(ctx, r.db).Save(draft).Error
}

func (r *draftPORepository) MarkFinalized(ctx context.Context, id string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.DraftPurchaseOrder{}).
		Where("id = ? AND status = ?", id, model.DraftOpen).
		Update("status", model.DraftFinalized)
	return res.RowsAffected, res.Error
}
