package errors

import (
	"errors"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInactive  = errors.New("product is inactive")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrUnsupportedCity  = errors.New("delivery city is not supported")
	ErrProviderRejected = errors.New("payment provider rejected the request")
)
