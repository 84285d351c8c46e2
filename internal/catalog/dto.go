package catalog

import "github.com/shopspring/decimal"

type CreateItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LicenseType *string         `json:"license_type,omitempty" validate:"omitempty,max=50"`
}

type UpdateItemRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	LicenseType *string          `json:"license_type,omitempty" validate:"omitempty,max=50"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

type ListItemsRequest struct {
	Search   *string `json:"search,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
