package db

import (
	"errors"

	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoCredential = errors.New("service credential missing")

// Connect はservice-roleのDSNでDBに接続して *gorm.DB を返す。
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, ErrNoCredential
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// Migrate はこのサービスが持つテーブルを作成・更新する。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Order{},
		&model.User{},
		&model.AuditLog{},
	)
}
