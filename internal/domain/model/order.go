package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderState string

const (
	OrderStatePending   OrderState = "PENDING"
	OrderStateConfirmed OrderState = "CONFIRMED"
	OrderStateShipped   OrderState = "SHIPPED"
	OrderStateFulfilled OrderState = "FULFILLED"
	OrderStateCanceled  OrderState = "CANCELED"
)

// 有効なstateか
func (s OrderState) Valid() bool {
	switch s {
	case OrderStatePending, OrderStateConfirmed, OrderStateShipped, OrderStateFulfilled, OrderStateCanceled:
		return true
	}
	return false
}

// これ以上変更できないstateか
func (s OrderState) Terminal() bool {
	return s == OrderStateFulfilled || s == OrderStateCanceled
}

type Order struct {
	OrderID    string          `gorm:"primaryKey;type:varchar(64)" json:"order_id"`
	UserID     string          `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone      string          `gorm:"type:varchar(30);not null" json:"phone"`
	Email      string          `gorm:"type:varchar(255)" json:"email"`
	Address    string          `gorm:"type:varchar(255);not null" json:"address"`
	Note       string          `gorm:"type:text" json:"note"`
	Payment    string          `gorm:"type:varchar(50);not null" json:"payment"`
	State      OrderState      `gorm:"type:varchar(20);not null;index" json:"state"`
	Total      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	DiscountID *string         `gorm:"type:varchar(64);index" json:"discount_id"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Details []OrderDetail `gorm:"foreignKey:OrderID;references:OrderID" json:"details,omitempty"`
}
