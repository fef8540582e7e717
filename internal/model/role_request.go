package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRequestStatus enum constants
const (
	RoleRequestApproved = "approved"
	RoleRequestRejected = "rejected"
)

// RoleRequestRecord is an append-only audit log of role elevation decisions.
// RequestedRole is a snapshot of the role being evaluated at decision time,
// not a live reference to the user's current role. One record per decision.
type RoleRequestRecord struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RequestedRole string     `gorm:"type:varchar(50);not null" json:"requested_role"`
	Status        string     `gorm:"type:varchar(10);not null;index" json:"status"`
	ProcessedBy   *uuid.UUID `gorm:"type:uuid" json:"processed_by"`
	Processor     *User      `gorm:"foreignKey:ProcessedBy" json:"processor,omitempty"`
	ProcessedAt   time.Time  `gorm:"autoCreateTime;index" json:"processed_at"`
}

func (r *RoleRequestRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
