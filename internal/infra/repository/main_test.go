package repository_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"techshop/internal/infra/db"

	log "github.com/sirupsen/logrus"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// コンテナを起動してマイグレーション済みの *gorm.DB を返す
func startPostgres(ctx context.Context) (*tcpostgres.PostgresContainer, *gorm.DB, error) {
	container, err := tcpostgres.Run(ctx, "postgres:17.6-alpine3.22",
		tcpostgres.WithDatabase("techshop"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, fmt.Errorf("pc.ConnectionString: %w", err)
	}

	l := log.New()
	l.SetOutput(io.Discard)

	gormDB, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: gormlogger.New(l, gormlogger.Config{LogLevel: gormlogger.Silent}),
	})
	if err != nil {
		return container, nil, fmt.Errorf("gorm.Open: %w", err)
	}

	if err := db.Migrate(gormDB); err != nil {
		return container, nil, fmt.Errorf("db.Migrate: %w", err)
	}
	return container, gormDB, nil
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test: requires docker")
	}
}
