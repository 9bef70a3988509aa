package dto

type CreateMaterialRequest struct {
	SKU            string `json:"sku" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Unit           string `json:"unit" binding:"required"`
	UnitPriceCents int64  `json:"unit_price_cents" binding:"min=0"`
	Category       string `json:"category"`
}

type UpdateMaterialRequest struct {
	Name           *string `json:"name"`
	Unit           *string `json:"unit"`
	UnitPriceCents *int64  `json:"unit_price_cents" binding:"omitempty,min=0"`
	Category       *string `json:"category"`
	Active         *bool   `json:"active"`
}
