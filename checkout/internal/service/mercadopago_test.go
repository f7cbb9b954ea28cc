package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/studiodflori/storefront/checkout/pkg/request"
	"github.com/studiodflori/storefront/internal/config"
	inErrors "github.com/studiodflori/storefront/internal/errors"
)

func price(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func preferenceRequest() request.CreatePreference {
	return request.CreatePreference{
		Items: []request.Item{
			{ID: "rose-bouquet", Name: "Ramo de Rosas", Price: price(850), Quantity: 2},
		},
		Customer: request.Customer{
			FullName: "Ana Torres",
			Phone:    "3312345678",
			Email:    "ana@example.com",
		},
		Delivery: request.Delivery{
			City:          "Zapopan",
			Date:          "2025-03-15",
			Time:          "14:30",
			StreetAddress: "Av. Patria 1200",
			PostalCode:    "45030",
		},
	}
}

func TestMercadoPagoCreatePreference(t *testing.T) {
	captured := map[string]interface{}{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/checkout/preferences", r.URL.Path)
			assert.Equal(t, "Bearer APP_USR-token", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]string{
				"id":                 "pref-123",
				"init_point":         "https://mp/init",
				"sandbox_init_point": "https://mp/sandbox",
			})
		}),
	)
	defer server.Close()

	svc := NewMercadoPagoService(config.MercadoPago{
		ApiBaseURL:  server.URL,
		AccessToken: "APP_USR-token",
		SuccessURL:  "https://flori/success",
		FailureURL:  "https://flori/failure",
		PendingURL:  "https://flori/pending",
		WebhookURL:  "https://flori/webhooks/mercadopago",
	}, server.Client())

	preference, err := svc.CreatePreference(context.Background(), preferenceRequest())
	assert.NoError(t, err)
	assert.Equal(t, "pref-123", preference.PreferenceID)
	assert.Equal(t, "https://mp/init", preference.CheckoutURL)
	assert.False(t, preference.UseSandboxCheckout)

	items := captured["items"].([]interface{})
	assert.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Ramo de Rosas", item["title"])
	assert.Equal(t, float64(2), item["quantity"])
	assert.Equal(t, float64(850), item["unit_price"])
	assert.Equal(t, "MXN", item["currency_id"])

	payer := captured["payer"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", payer["email"])
	assert.Equal(t, "https://flori/webhooks/mercadopago", captured["notification_url"])

	backUrls := captured["back_urls"].(map[string]interface{})
	assert.Equal(t, "https://flori/success", backUrls["success"])

	metadata := captured["metadata"].(map[string]interface{})
	assert.Equal(t, "Ana Torres", metadata["customer_name"])
	assert.Equal(t, "Zapopan", metadata["delivery_city"])
	assert.Equal(t, "2025-03-15", metadata["delivery_date"])
	assert.Equal(t, "14:30", metadata["delivery_time"])
}

func TestMercadoPagoCreatePreferenceCoercesItems(t *testing.T) {
	captured := map[string]interface{}{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]string{"id": "pref-456"})
		}),
	)
	defer server.Close()

	svc := NewMercadoPagoService(
		config.MercadoPago{ApiBaseURL: server.URL, AccessToken: "APP_USR-token"},
		server.Client(),
	)

	param := preferenceRequest()
	param.Items = []request.Item{
		{ID: "a", Name: "", Price: price(100), Quantity: 0},
		{ID: "b", Name: "Gratis", Price: price(0), Quantity: 1},
		{ID: "c", Name: "Sin precio", Price: nil, Quantity: 1},
	}

	_, err := svc.CreatePreference(context.Background(), param)
	assert.NoError(t, err)

	items := captured["items"].([]interface{})
	assert.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Producto floral", item["title"])
	assert.Equal(t, float64(1), item["quantity"])
}

func TestMercadoPagoCreatePreferenceAllItemsUnpriced(t *testing.T) {
	svc := NewMercadoPagoService(
		config.MercadoPago{ApiBaseURL: "http://unused", AccessToken: "APP_USR-token"},
		http.DefaultClient,
	)

	param := preferenceRequest()
	param.Items = []request.Item{{ID: "a", Name: "Sin precio", Price: nil, Quantity: 1}}

	_, err := svc.CreatePreference(context.Background(), param)
	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
}

func TestMercadoPagoCreatePreferenceSandbox(t *testing.T) {
	captured := map[string]interface{}{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]string{
				"id":                 "pref-789",
				"init_point":         "https://mp/init",
				"sandbox_init_point": "https://mp/sandbox",
			})
		}),
	)
	defer server.Close()

	svc := NewMercadoPagoService(
		config.MercadoPago{ApiBaseURL: server.URL, AccessToken: "TEST-token"},
		server.Client(),
	)

	preference, err := svc.CreatePreference(context.Background(), preferenceRequest())
	assert.NoError(t, err)
	assert.True(t, preference.UseSandboxCheckout)
	assert.Equal(t, "https://mp/sandbox", preference.CheckoutURL)

	_, hasPayer := captured["payer"]
	assert.False(t, hasPayer)
}

func TestMercadoPagoProcessPayment(t *testing.T) {
	captured := map[string]interface{}{}
	idempotencyKey := ""
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/payments", r.URL.Path)
			idempotencyKey = r.Header.Get("X-Idempotency-Key")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":            int64(987654),
				"status":        "approved",
				"status_detail": "accredited",
			})
		}),
	)
	defer server.Close()

	svc := NewMercadoPagoService(
		config.MercadoPago{ApiBaseURL: server.URL, AccessToken: "APP_USR-token"},
		server.Client(),
	)

	payment, err := svc.ProcessPayment(context.Background(), request.ProcessPayment{
		Token:             "card-token",
		PaymentMethodID:   "visa",
		TransactionAmount: price(1700),
		Payer:             request.Customer{Email: "ana@example.com"},
		Customer:          preferenceRequest().Customer,
		Delivery:          preferenceRequest().Delivery,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(987654), payment.ID)
	assert.Equal(t, "approved", payment.Status)
	assert.Equal(t, "accredited", payment.StatusDetail)

	assert.NotEmpty(t, idempotencyKey)
	assert.Equal(t, "card-token", captured["token"])
	assert.Equal(t, "visa", captured["payment_method_id"])
	assert.Equal(t, float64(1700), captured["transaction_amount"])
	assert.Equal(t, float64(1), captured["installments"])
	assert.Equal(t, "Pedido Studio D Flori", captured["description"])
	_, hasIssuer := captured["issuer_id"]
	assert.False(t, hasIssuer)
}

func TestMercadoPagoProcessPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc := NewMercadoPagoService(
		config.MercadoPago{ApiBaseURL: "http://unused", AccessToken: "APP_USR-token"},
		http.DefaultClient,
	)

	_, err := svc.ProcessPayment(context.Background(), request.ProcessPayment{
		Token:             "card-token",
		PaymentMethodID:   "visa",
		TransactionAmount: price(0),
	})
	assert.ErrorIs(t, err, inErrors.ErrProviderRejected)
}

func TestMercadoPagoProcessPaymentProviderError(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid card token"})
		}),
	)
	defer server.Close()

	svc := NewMercadoPagoService(
		config.MercadoPago{ApiBaseURL: server.URL, AccessToken: "APP_USR-token"},
		server.Client(),
	)

	_, err := svc.ProcessPayment(context.Background(), request.ProcessPayment{
		Token:             "bad-token",
		PaymentMethodID:   "visa",
		TransactionAmount: price(500),
	})
	assert.ErrorIs(t, err, inErrors.ErrProviderRejected)
	assert.ErrorContains(t, err, "invalid card token")
}
