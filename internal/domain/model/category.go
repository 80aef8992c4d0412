package model

type Category struct {
	CategoryID   string `gorm:"primaryKey;type:varchar(64)" json:"category_id"`
	CategoryName string `gorm:"type:varchar(255);not null" json:"category_name"`
}

// 商品とカテゴリの中間テーブル
type ProductCategory struct {
	ProductID  string `gorm:"primaryKey;type:varchar(64)" json:"product_id"`
	CategoryID string `gorm:"primaryKey;type:varchar(64);index" json:"category_id"`
}
