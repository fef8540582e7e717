package database

import (
	"woms/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		logrus.WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}

// Migrate auto-migrates every core model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.MaterialRestockRequest{},
		&model.RestockItem{},
		&model.RequisitionVoucher{},
		&model.DraftPurchaseOrder{},
		&model.PurchaseOrder{},
		&model.RoleRequestRecord{},
		&model.Notification{},
		&model.AuditLog{},
		&model.DocumentSequence{},
	)
}
