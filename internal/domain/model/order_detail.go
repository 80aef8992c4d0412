package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。Price は注文時点の単価
type OrderDetail struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string          `gorm:"type:varchar(64);not null;index" json:"order_id"`
	ProductID string          `gorm:"type:varchar(64);not null;index" json:"product_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
