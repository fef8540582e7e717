package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants
const (
	RoleWarehouseAdmin        = "warehouse_admin"
	RoleWarehouseStaff        = "warehouse_staff"
	RoleManager               = "manager"
	RoleEmployee              = "employee"
	RoleEngineering           = "engineering"
	RoleOperationsMaintenance = "operations_maintenance"
	RoleBudgetAnalyst         = "budget_analyst"
)

// ValidRole reports whether role is one of the recognized role values.
func ValidRole(role string) bool {
	switch role {
	case RoleWarehouseAdmin, RoleWarehouseStaff, RoleManager, RoleEmployee,
		RoleEngineering, RoleOperationsMaintenance, RoleBudgetAnalyst:
		return true
	}
	return false
}

// User represents the central user entity for logic and database structure.
// Any role other than "employee" starts unconfirmed and stays that way until
// a warehouse admin signs it off; changing the role resets the confirmation.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role            string     `gorm:"type:varchar(50);not null;default:'employee'" json:"role"`
	IsRoleConfirmed bool       `gorm:"not null;default:false" json:"is_role_confirmed"`
	RoleRequestedAt time.Time  `json:"role_requested_at"`
	SignaturePath   string     `gorm:"type:varchar(255)" json:"-"` // blob store key of the PNG signature, empty if none uploaded
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       *time.Time `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
