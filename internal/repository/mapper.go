package repository

import (
	"github.com/shopspring/decimal"

	productResponse "github.com/studiodflori/storefront/catalog/pkg/response"
	"github.com/studiodflori/storefront/internal/coerce"
)

func (p Product) Response() productResponse.Product {
	var hours, days *float64
	if p.PreparationHours.Valid {
		hours = &p.PreparationHours.Float64
	}
	if p.PreparationDays.Valid {
		days = &p.PreparationDays.Float64
	}
	return productResponse.Product{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Image:            p.ImageUrl,
		Price:            decimal.NewFromBigInt(p.Price.Int, p.Price.Exp),
		Stock:            p.Stock,
		Active:           p.Active,
		PreparationHours: coerce.ResolvePreparationHours(hours, days),
		CreatedAt:        p.CreatedAt.Time,
		UpdatedAt:        p.UpdatedAt.Time,
	}
}
