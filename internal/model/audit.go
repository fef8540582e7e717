package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workflow audit actions
const (
	ActionCreateRestockRequest = "CREATE_RESTOCK_REQUEST"
	ActionApproveRestock       = "APPROVE_RESTOCK_REQUEST"
	ActionRejectRestock        = "REJECT_RESTOCK_REQUEST"
	ActionSignVoucher          = "SIGN_REQUISITION_VOUCHER"
	ActionCreateDraftPO        = "CREATE_DRAFT_PO"
	ActionFinalizePO           = "FINALIZE_PO"
	ActionApproveRole          = "APPROVE_ROLE_REQUEST"
	ActionRejectRole           = "REJECT_ROLE_REQUEST"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable reference (MRR/RV/PO number, username)
	Details    string     `gorm:"type:text" json:"details"`                       // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
