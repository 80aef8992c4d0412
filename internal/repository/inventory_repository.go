package repository

import "context"

type InventoryRepository interface {
	// 在庫(quantity_pr)を相対的に増減。deltaはマイナス可
	AdjustStock(ctx context.Context, productID string, delta int64) error

	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID string, newStock int64) error
}
