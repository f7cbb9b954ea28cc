package request

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	Name             string           `json:"name"             validate:"required,min=1"`
	Slug             string           `json:"slug"             validate:"required,min=1"`
	Image            string           `json:"image"            validate:"omitempty,url"`
	Price            *decimal.Decimal `json:"price"            validate:"omitempty"`
	Stock            int32            `json:"stock"            validate:"gte=0"`
	Active           bool             `json:"active"`
	PreparationHours *float64         `json:"preparationHours" validate:"omitempty"`
	PreparationDays  *float64         `json:"preparationDays"  validate:"omitempty"`
}
