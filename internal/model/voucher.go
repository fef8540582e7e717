package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VoucherItem is the point-in-time snapshot of a restock item stored on a
// requisition voucher. Later edits to the request's items never rewrite an
// issued voucher.
type VoucherItem struct {
	ItemName          string `json:"item_name"`
	QuantityRequested int    `json:"quantity_requested"`
	Unit              string `json:"unit,omitempty"`
}

// RequisitionVoucher is one issued RV revision for a restock request. A
// request may accumulate several revisions; only the most recently created
// one is authoritative for PDF retrieval.
type RequisitionVoucher struct {
	ID        uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	RVNumber  string                  `gorm:"type:varchar(20);uniqueIndex;not null" json:"rv_number"`
	RequestID uuid.UUID               `gorm:"type:uuid;not null;index" json:"request_id"`
	Request   *MaterialRestockRequest `gorm:"foreignKey:RequestID" json:"-"`
	Items     datatypes.JSON          `gorm:"not null" json:"items"`
	PDFPath   string                  `gorm:"type:varchar(255)" json:"pdf_path"` // blob store key, empty until rendered
	CreatedAt time.Time               `gorm:"autoCreateTime;index" json:"created_at"`
}

func (v *RequisitionVoucher) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// SnapshotItems decodes the stored item snapshot.
func (v *RequisitionVoucher) SnapshotItems() ([]VoucherItem, error) {
	var items []VoucherItem
	if err := json.Unmarshal(v.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SnapshotOf encodes request items into the voucher snapshot format.
func SnapshotOf(items []RestockItem) (datatypes.JSON, error) {
	snapshot := make([]VoucherItem, 0, len(items))
	for _, it := range items {
		snapshot = append(snapshot, VoucherItem{
			ItemName:          it.ItemName,
			QuantityRequested: it.QuantityRequested,
			Unit:              it.Unit,
		})
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
