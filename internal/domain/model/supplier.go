package model

// 仕入先（参照のみ）
type Supplier struct {
	SupplierID   string `gorm:"primaryKey;type:varchar(64)" json:"supplier_id"`
	SupplierName string `gorm:"type:varchar(255);not null" json:"supplier_name"`
	Phone        string `gorm:"type:varchar(30)" json:"phone"`
	Email        string `gorm:"type:varchar(255)" json:"email"`
	Address      string `gorm:"type:varchar(255)" json:"address"`
}
