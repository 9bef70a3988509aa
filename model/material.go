package model

type Material struct {
	Base
	SKU            string `gorm:"column:sku;type:varchar(64);uniqueIndex;not null" json:"sku"`
	Name           string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Unit           string `gorm:"column:unit;type:varchar(32);not null" json:"unit"`
	UnitPriceCents int64  `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	Category       string `gorm:"column:category;type:varchar(64);index" json:"category"`
	Active         bool   `gorm:"column:active;not null" json:"active"`
}

func (Material) TableName() string {
	return "materials"
}
