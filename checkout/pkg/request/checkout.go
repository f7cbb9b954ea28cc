package request

import (
	"github.com/shopspring/decimal"
)

type Item struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Quantity int              `json:"quantity"`
}

type Customer struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email"    validate:"omitempty,email"`
}

type Delivery struct {
	City                string `json:"city"`
	Date                string `json:"date"                validate:"omitempty,datetime=2006-01-02"`
	Time                string `json:"time"                validate:"omitempty,datetime=15:04"`
	StreetAddress       string `json:"streetAddress"`
	Neighborhood        string `json:"neighborhood"`
	PostalCode          string `json:"postalCode"`
	SpecialInstructions string `json:"specialInstructions"`
}

type CreatePreference struct {
	Items    []Item   `json:"items"    validate:"required,min=1"`
	Customer Customer `json:"customer"`
	Delivery Delivery `json:"delivery"`
}

type ProcessPayment struct {
	Token             string           `json:"token"              validate:"required"`
	IssuerID          string           `json:"issuer_id"`
	PaymentMethodID   string           `json:"payment_method_id"  validate:"required"`
	TransactionAmount *decimal.Decimal `json:"transaction_amount" validate:"required"`
	Installments      int              `json:"installments"`
	Payer             Customer         `json:"payer"`
	Items             []Item           `json:"items"`
	Customer          Customer         `json:"customer"`
	Delivery          Delivery         `json:"delivery"`
}

type CreatePaymentIntent struct {
	Amount   *decimal.Decimal `json:"amount"   validate:"required"`
	Currency string           `json:"currency"`
	Items    []Item           `json:"items"`
	Customer Customer         `json:"customer"`
	Delivery Delivery         `json:"delivery"`
}
