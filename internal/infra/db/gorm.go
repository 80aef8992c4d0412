package db

import (
	"fmt"
	"time"

	"techshop/internal/config"
	"techshop/internal/domain/model"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// SQLログはlogrus経由で出す
func Connect(cfg config.Config, logger *log.Entry) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: newGormLogger(cfg, logger),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return gormDB, nil
}

// Migrate は全テーブルを作成・更新する
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&model.Product{},
		&model.Category{},
		&model.ProductCategory{},
		&model.Supplier{},
		&model.Image{},
		&model.Cart{},
		&model.Discount{},
		&model.Order{},
		&model.OrderDetail{},
		&model.AuditLog{},
	)
}

func newGormLogger(cfg config.Config, logger *log.Entry) gormlogger.Interface {
	if logger == nil {
		logger = log.WithField("component", "gorm")
	}

	level := gormlogger.Warn
	if cfg.IsDev() {
		level = gormlogger.Info
	}

	return gormlogger.New(logger.WithField("layer", "db"), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
