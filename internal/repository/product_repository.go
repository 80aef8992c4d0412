package repository

import (
	"context"

	"techshop/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID string
	Sort       string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, productID string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	AttachCategory(ctx context.Context, productID string, categoryID string) error
	AddImage(ctx context.Context, image model.Image) error
}
