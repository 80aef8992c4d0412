package model

import "time"

type Image struct {
	ImageID   string    `gorm:"primaryKey;type:varchar(64)" json:"image_id"`
	ProductID string    `gorm:"type:varchar(64);not null;index" json:"product_id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
