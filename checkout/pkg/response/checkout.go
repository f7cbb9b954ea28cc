package response

type Preference struct {
	PreferenceID       string `json:"preferenceId"`
	CheckoutURL        string `json:"checkoutUrl"`
	UseSandboxCheckout bool   `json:"useSandboxCheckout"`
	InitPoint          string `json:"initPoint"`
	SandboxInitPoint   string `json:"sandboxInitPoint"`
}

type Payment struct {
	ID           int64  `json:"id"`
	Status       string `json:"status"`
	StatusDetail string `json:"statusDetail"`
}

type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}
