package repository

import (
	"context"
	"time"

	"techshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 管理画面の注文テーブル1行
type OrderDataTableRow struct {
	OrderID   string           `json:"order_id"`
	UserID    string           `json:"user_id"`
	Name      string           `json:"name"`
	Phone     string           `json:"phone"`
	Total     decimal.Decimal  `json:"total"`
	State     model.OrderState `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
}

// 割引情報付きの注文（割引なしならnil）
type OrderWithDiscountRow struct {
	OrderID      string           `json:"order_id"`
	UserID       string           `json:"user_id"`
	Name         string           `json:"name"`
	Total        decimal.Decimal  `json:"total"`
	State        model.OrderState `json:"state"`
	CreatedAt    time.Time        `json:"created_at"`
	DiscountCode *string          `json:"discount_code"`
	DiscountRate *int64           `json:"discount_rate"`
}

// 注文明細＋商品名
type OrderLineRow struct {
	ID          int64           `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ユーザーの注文一覧1行
type UserOrderRow struct {
	OrderID   string           `json:"order_id"`
	State     model.OrderState `json:"state"`
	Total     decimal.Decimal  `json:"total"`
	ItemCount int64            `json:"item_count"`
	CreatedAt time.Time        `json:"created_at"`
}

type OrderRepository interface {
	// 注文と明細(Details)をまとめて作成
	Create(ctx context.Context, order model.Order) (model.Order, error)
	UpdateState(ctx context.Context, orderID string, state model.OrderState) (model.Order, error)

	//新しい順
	GetAll(ctx context.Context) ([]OrderDataTableRow, error)
	GetAllWithDiscountOrderByDescending(ctx context.Context) ([]OrderWithDiscountRow, error)

	// 明細付きで1件取得
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	// 注文行を FOR UPDATE でロックして取得（状態変更の直列化用）
	FindByIDForUpdate(ctx context.Context, orderID string) (model.Order, error)
	// 注文の明細を新しい順
	GetAllByIDOrderByDescending(ctx context.Context, orderID string) ([]OrderLineRow, error)
	GetByUserID(ctx context.Context, userID string) ([]UserOrderRow, error)

	FindDiscountByCode(ctx context.Context, code string) (model.Discount, error)
}
