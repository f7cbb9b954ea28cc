package response

import (
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Image            string          `json:"image"`
	Price            decimal.Decimal `json:"price"`
	PreparationHours float64         `json:"preparationHours"`
	Quantity         int             `json:"quantity"`
}

type Slot struct {
	Time     string `json:"time"`
	Disabled bool   `json:"disabled"`
}

type Delivery struct {
	City         string   `json:"city"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	EarliestDate string   `json:"earliestDate"`
	Slots        []Slot   `json:"slots"`
	Cities       []string `json:"cities"`
}

type Cart struct {
	SessionID                 string          `json:"sessionId"`
	Items                     []CartItem      `json:"items"`
	TotalItems                int             `json:"totalItems"`
	TotalPrice                decimal.Decimal `json:"totalPrice"`
	EstimatedPreparationHours float64         `json:"estimatedPreparationHours"`
	Delivery                  Delivery        `json:"delivery"`
}

// CheckoutPayload is the shape handed to the payment relay.
type CheckoutPayload struct {
	Items      []CheckoutItem   `json:"items"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
	Delivery   CheckoutDelivery `json:"delivery"`
}

type CheckoutItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type CheckoutDelivery struct {
	City string `json:"city"`
	Date string `json:"date"`
	Time string `json:"time"`
}
