package model

import "time"

// 割引コード。Rate は%（0〜100）
type Discount struct {
	DiscountID string    `gorm:"primaryKey;type:varchar(64)" json:"discount_id"`
	Code       string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Rate       int64     `gorm:"not null" json:"rate"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
