package model

import "time"

// ユーザーが購入予定の1明細（user_id + product_id で1行）
type Cart struct {
	UserID    string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	ProductID string    `gorm:"primaryKey;type:varchar(64);index" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
