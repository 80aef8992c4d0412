package repository

import (
	"context"
	"time"

	"techshop/internal/domain/model"
	repo "techshop/internal/repository"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *AuditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 || limit > repo.MaxAuditLogLimit {
		limit = repo.DefaultAuditLogLimit
	}
	offset := max(filter.Offset, 0)

	var logs []model.AuditLog
	err := r.db.WithContext(ctx).Model(&model.AuditLog{}).
		Scopes(
			auditByActor(filter.ActorUserID),
			auditByAction(filter.Action),
			auditByResource(filter.ResourceType, filter.ResourceID),
			auditCreatedBetween(filter.CreatedFrom, filter.CreatedTo),
		).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return []model.AuditLog{}, err
	}
	return logs, nil
}

func auditByActor(actorUserID *string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actorUserID == nil {
			return db
		}
		return db.Where("actor_user_id = ?", *actorUserID)
	}
}

func auditByAction(action *model.AuditAction) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if action == nil {
			return db
		}
		return db.Where("action = ?", *action)
	}
}

// 注文 or 商品（＋そのID）で絞る
func auditByResource(resourceType *model.AuditResourceType, resourceID *string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if resourceType != nil {
			db = db.Where("resource_type = ?", *resourceType)
		}
		if resourceID != nil {
			db = db.Where("resource_id = ?", *resourceID)
		}
		return db
	}
}

func auditCreatedBetween(from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("created_at >= ?", *from)
		}
		if to != nil {
			db = db.Where("created_at <= ?", *to)
		}
		return db
	}
}
