// Package store holds the in-memory cart: an ordered list of line items with
// derived totals. Mutations never fail; malformed numeric input is coerced at
// the boundary. Persistence lives in the cart service, not here.
package store

import (
	"github.com/shopspring/decimal"

	"github.com/studiodflori/storefront/internal/coerce"
)

type Item struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Image            string          `json:"image"`
	Price            decimal.Decimal `json:"price"`
	PreparationHours float64         `json:"preparationHours"`
	Quantity         int             `json:"quantity"`
}

// Product is the descriptor handed to Add by the catalog or the request
// boundary. Price and PreparationHours are optional; missing or malformed
// values take the documented defaults.
type Product struct {
	ID               string
	Name             string
	Image            string
	Price            *decimal.Decimal
	PreparationHours *float64
}

// Cart is an ordered sequence of items, at most one per product id.
// Insertion order is preserved on add.
type Cart struct {
	Items []Item `json:"items"`
}

// Add increments the quantity when the product is already in the cart.
// The stored name, image, price and preparation time are kept as first
// added; only quantity changes on a repeat add.
func (c *Cart) Add(p Product) {
	for i := range c.Items {
		if c.Items[i].ID == p.ID {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, Item{
		ID:               p.ID,
		Name:             p.Name,
		Image:            p.Image,
		Price:            coerce.PriceOrZero(p.Price),
		PreparationHours: coerce.PreparationHoursOrDefault(p.PreparationHours),
		Quantity:         1,
	})
}

// Remove deletes the item with the given id; no-op when absent.
func (c *Cart) Remove(id string) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Decrease lowers the quantity by one and removes the item when the
// quantity reaches zero.
func (c *Cart) Decrease(id string) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity--
			if c.Items[i].Quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			}
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.Items = []Item{}
}

func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// EstimatedPreparationHours is the maximum preparation time over all items,
// zero for an empty cart. The 3 hour scheduling floor is applied by the
// schedule package, not here.
func (c Cart) EstimatedPreparationHours() float64 {
	max := 0.0
	for _, item := range c.Items {
		hours := item.PreparationHours
		if hours <= 0 {
			hours = coerce.DefaultPreparationHours
		}
		if hours > max {
			max = hours
		}
	}
	return max
}
