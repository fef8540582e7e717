package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DraftStatus enum constants
const (
	DraftOpen      = "draft"
	DraftFinalized = "finalized"
)

// Well-known fillable field keys copied into the immutable PurchaseOrder at
// finalization time.
const (
	FieldGrandTotal = "grand_total"
	FieldRemarks    = "remarks"
	FieldSupplier   = "supplier"
)

// DraftPurchaseOrder is the mutable staging record of a purchase order. At
// most one draft exists per restock request. FillableFields accumulates
// free-text form fields via merge, never replace. Finalizing flips the
// status and the draft is kept forever as an audit record.
type DraftPurchaseOrder struct {
	ID        uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex" json:"request_id"`
	Request   *MaterialRestockRequest `gorm:"foreignKey:RequestID" json:"-"`
	CreatedBy uuid.UUID               `gorm:"type:uuid;not null;index" json:"created_by"`
	Creator   *User                   `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	PONumber  string                  `gorm:"type:varchar(100);uniqueIndex;not null" json:"po_number"`
	// RVNumber is the companion voucher number minted together with the PO
	// number at draft creation.
	RVNumber       string            `gorm:"type:varchar(100);not null" json:"rv_number"`
	Status         string            `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	FillableFields datatypes.JSONMap `json:"fillable_fields"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *DraftPurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// PurchaseOrder is the immutable result of finalizing a draft. A request may
// accumulate more than one PO over its lifetime (re-ordering), so the
// relation is many-to-one; the active draft stays one-to-one.
type PurchaseOrder struct {
	ID         uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	PONumber   string                  `gorm:"type:varchar(100);uniqueIndex;not null" json:"po_number"`
	RVNumber   string                  `gorm:"type:varchar(100)" json:"rv_number"`
	RequestID  uuid.UUID               `gorm:"type:uuid;not null;index" json:"request_id"`
	Request    *MaterialRestockRequest `gorm:"foreignKey:RequestID" json:"-"`
	CreatedBy  uuid.UUID               `gorm:"type:uuid;not null" json:"created_by"`
	Supplier   string                  `gorm:"type:varchar(255)" json:"supplier"`
	GrandTotal decimal.Decimal         `gorm:"type:decimal(12,2)" json:"grand_total"`
	Remarks    string                  `gorm:"type:text" json:"remarks"`
	PDFPath    string                  `gorm:"type:varchar(255)" json:"pdf_path"`
	CreatedAt  time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
