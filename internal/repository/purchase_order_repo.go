package repository

import (
	"context"

	"woms/internal/model"

	"gorm.io/gorm"
)

// PurchaseOrderRepository is the data access layer of finalized purchase
// orders. Rows are immutable once created.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	GetByPONumber(ctx context.Context, poNumber string) (*model.PurchaseOrder, error)
	// LatestByRequestID returns the most recently created PO of a request.
	LatestByRequestID(ctx context.Context, requestID string) (*model.PurchaseOrder, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Create(po).Error
}

func (r *purchaseOrderRepository) GetByPONumber(ctx context.Context, poNumber string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := GetDB(ctx, r.db).First(&po, "po_number = ?", poNumber).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) LatestByRequestID(ctx context.Context, requestID string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := GetDB(ctx, r.db).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}
