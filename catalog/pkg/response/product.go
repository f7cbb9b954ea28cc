package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Image            string          `json:"image"`
	Price            decimal.Decimal `json:"price"`
	Stock            int32           `json:"stock"`
	Active           bool            `json:"active"`
	PreparationHours float64         `json:"preparationHours"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
