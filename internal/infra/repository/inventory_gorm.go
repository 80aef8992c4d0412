package repository

import (
	"context"
	"errors"

	"techshop/internal/domain/model"
	repo "techshop/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫を相対的に増減（同時更新でも差分が消えないようにSQL側で計算）
func (r *InventoryGormRepository) AdjustStock(ctx context.Context, productID string, delta int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("quantity_pr", gorm.Expr("quantity_pr + ?", delta))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID string, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("quantity_pr", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
