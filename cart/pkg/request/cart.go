package request

import (
	"github.com/shopspring/decimal"
)

// AddItem carries the product descriptor added to a cart. Price and
// preparation time are optional; missing or malformed values are coerced to
// the storefront defaults rather than rejected.
type AddItem struct {
	ProductID        string           `json:"productId"        validate:"required,min=1"`
	Name             string           `json:"name"             validate:"required,min=1"`
	Image            string           `json:"image"`
	Price            *decimal.Decimal `json:"price"`
	PreparationHours *float64         `json:"preparationHours"`
}

type DeliverySelection struct {
	City string `json:"city" validate:"required,min=1"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time string `json:"time" validate:"omitempty,datetime=15:04"`
}
