package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品。Stock は quantity_pr 列（カートに入ると減る）
type Product struct {
	ProductID       string          `gorm:"primaryKey;type:varchar(64)" json:"product_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	NameSerial      string          `gorm:"type:varchar(255)" json:"name_serial"`
	Detail          string          `gorm:"type:text" json:"detail"`
	Price           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Stock           int64           `gorm:"column:quantity_pr;not null" json:"quantity_pr"`
	GuaranteePeriod int             `gorm:"not null;default:0" json:"guarantee_period"`
	SupplierID      string          `gorm:"type:varchar(64);index" json:"supplier_id"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
