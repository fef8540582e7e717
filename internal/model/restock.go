package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RestockStatus enum constants
const (
	RestockPending  = "pending"
	RestockApproved = "approved"
	RestockRejected = "rejected"
)

// MaterialRestockRequest is the root entity of the restocking workflow.
// Status only ever moves pending -> approved or pending -> rejected; both
// transitions are terminal. Approval and rejection fields are mutually
// exclusive: setting one side clears the other.
type MaterialRestockRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RequestedBy uuid.UUID  `gorm:"type:uuid;not null;index" json:"requested_by"`
	Requester   *User      `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	Approver    *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at"`
	RejectedBy  *uuid.UUID `gorm:"type:uuid" json:"rejected_by"`
	Rejecter    *User      `gorm:"foreignKey:RejectedBy" json:"rejecter,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at"`

	// RequestReference is assigned once at creation (MRR-{year}-{0001}) and
	// never changes afterwards.
	RequestReference string `gorm:"type:varchar(100);uniqueIndex;not null" json:"request_reference"`

	// RVNumber and PONumber are read-model projections of the latest
	// associated documents, updated in the same transaction as their source
	// of truth. They are never authoritative on their own.
	RVNumber string `gorm:"type:varchar(50)" json:"rv_number"`
	PONumber string `gorm:"type:varchar(50)" json:"po_number"`

	Items     []RestockItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *MaterialRestockRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RestockItem is a single line of a restock request.
type RestockItem struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID         uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	ItemName          string    `gorm:"type:varchar(255);not null" json:"item_name"`
	QuantityRequested int       `gorm:"not null" json:"quantity_requested"`
	Unit              string    `gorm:"type:varchar(50);not null;default:'pcs'" json:"unit"`
}

func (i *RestockItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
