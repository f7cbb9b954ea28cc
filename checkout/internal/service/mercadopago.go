package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/studiodflori/storefront/checkout/internal/otel"
	"github.com/studiodflori/storefront/checkout/pkg/request"
	"github.com/studiodflori/storefront/checkout/pkg/response"
	"github.com/studiodflori/storefront/internal/coerce"
	"github.com/studiodflori/storefront/internal/config"
	inErrors "github.com/studiodflori/storefront/internal/errors"
	"github.com/studiodflori/storefront/internal/log"
	inOtel "github.com/studiodflori/storefront/internal/otel"
)

const orderDescription = "Pedido Studio D Flori"

type MercadoPagoService struct {
	cfg    config.MercadoPago
	client *http.Client
}

func NewMercadoPagoService(cfg config.MercadoPago, client *http.Client) MercadoPagoService {
	if client == nil {
		client = otelhttp.DefaultClient
	}
	return MercadoPagoService{cfg: cfg, client: client}
}

// orderMetadata mirrors the fields the storefront attaches to every
// provider call so a payment can be traced back to a delivery.
func orderMetadata(customer request.Customer, delivery request.Delivery) map[string]string {
	return map[string]string{
		"customer_name":         customer.FullName,
		"customer_phone":        customer.Phone,
		"delivery_city":         delivery.City,
		"delivery_address":      delivery.StreetAddress,
		"delivery_postal_code":  delivery.PostalCode,
		"delivery_neighborhood": delivery.Neighborhood,
		"delivery_notes":        delivery.SpecialInstructions,
		"delivery_date":         delivery.Date,
		"delivery_time":         delivery.Time,
	}
}

func (svc MercadoPagoService) isTestToken() bool {
	return strings.HasPrefix(svc.cfg.AccessToken, "TEST-")
}

// CreatePreference forwards a hosted-checkout preference to Mercado Pago.
// Item quantity floors at 1, price at 0, and zero-priced items are dropped
// before the call.
func (svc MercadoPagoService) CreatePreference(
	c context.Context,
	param request.CreatePreference,
) (response.Preference, error) {
	c, span := otel.Tracer.Start(c, "MercadoPagoService CreatePreference")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MercadoPagoService CreatePreference").
		Str(log.KeyProvider, "mercadopago").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "mapping preference items").Logger()
	logger.Info().Msg("mapping preference items")
	mappedItems := []map[string]interface{}{}
	for _, item := range param.Items {
		title := item.Name
		if title == "" {
			title = "Producto floral"
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		price := coerce.PriceOrZero(item.Price)
		if !price.IsPositive() {
			continue
		}
		mappedItems = append(mappedItems, map[string]interface{}{
			"title":       title,
			"quantity":    quantity,
			"unit_price":  price.InexactFloat64(),
			"currency_id": "MXN",
		})
	}
	if len(mappedItems) == 0 {
		err := fmt.Errorf("no items with a valid price with error=%w", inErrors.ErrEmptyCart)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Preference{}, err
	}
	logger.Info().Int("items", len(mappedItems)).Msg("mapped preference items")

	useSandboxCheckout := svc.cfg.CheckoutMode == "sandbox" || svc.isTestToken()

	body := map[string]interface{}{
		"items":    mappedItems,
		"metadata": orderMetadata(param.Customer, param.Delivery),
		"back_urls": map[string]string{
			"success": svc.cfg.SuccessURL,
			"failure": svc.cfg.FailureURL,
			"pending": svc.cfg.PendingURL,
		},
	}
	// Live tokens reject a missing payer; test tokens reject a real one.
	if email := strings.TrimSpace(param.Customer.Email); email != "" && !svc.isTestToken() {
		body["payer"] = map[string]string{"email": email}
	}
	if svc.cfg.WebhookURL != "" {
		body["notification_url"] = svc.cfg.WebhookURL
	}

	logger = logger.With().Str(log.KeyProcess, "creating preference").Logger()
	logger.Info().Msg("creating preference")
	respBody, err := svc.post(c, "/checkout/preferences", body)
	if err != nil {
		err = fmt.Errorf("failed creating preference with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Preference{}, err
	}

	parsed := struct {
		ID               string `json:"id"`
		InitPoint        string `json:"init_point"`
		SandboxInitPoint string `json:"sandbox_init_point"`
	}{}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		err = fmt.Errorf("failed decoding preference response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Preference{}, err
	}

	checkoutURL := parsed.InitPoint
	if useSandboxCheckout && parsed.SandboxInitPoint != "" {
		checkoutURL = parsed.SandboxInitPoint
	}
	if checkoutURL == "" {
		checkoutURL = parsed.SandboxInitPoint
	}
	logger.Info().Str("preferenceId", parsed.ID).Msg("created preference")

	return response.Preference{
		PreferenceID:       parsed.ID,
		CheckoutURL:        checkoutURL,
		UseSandboxCheckout: useSandboxCheckout,
		InitPoint:          parsed.InitPoint,
		SandboxInitPoint:   parsed.SandboxInitPoint,
	}, nil
}

// ProcessPayment forwards a tokenized card payment to Mercado Pago and
// passes the provider's status through untouched.
func (svc MercadoPagoService) ProcessPayment(
	c context.Context,
	param request.ProcessPayment,
) (response.Payment, error) {
	c, span := otel.Tracer.Start(c, "MercadoPagoService ProcessPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MercadoPagoService ProcessPayment").
		Str(log.KeyProvider, "mercadopago").
		Logger()

	amount := coerce.PriceOrZero(param.TransactionAmount)
	if !amount.IsPositive() {
		err := fmt.Errorf("transaction amount must be positive with error=%w", inErrors.ErrProviderRejected)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Payment{}, err
	}

	installments := param.Installments
	if installments < 1 {
		installments = 1
	}

	body := map[string]interface{}{
		"token":              param.Token,
		"payment_method_id":  param.PaymentMethodID,
		"transaction_amount": amount.Round(2).InexactFloat64(),
		"installments":       installments,
		"description":        orderDescription,
		"metadata":           orderMetadata(param.Customer, param.Delivery),
	}
	if param.IssuerID != "" {
		body["issuer_id"] = param.IssuerID
	}
	if email := strings.TrimSpace(param.Payer.Email); email != "" {
		body["payer"] = map[string]string{"email": email}
	}

	logger = logger.With().
		Str(log.KeyProcess, "processing payment").
		Str(log.KeyAmount, amount.String()).
		Logger()
	logger.Info().Msg("processing payment")
	respBody, err := svc.post(c, "/v1/payments", body)
	if err != nil {
		err = fmt.Errorf("failed processing payment with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Payment{}, err
	}

	parsed := struct {
		ID           int64  `json:"id"`
		Status       string `json:"status"`
		StatusDetail string `json:"status_detail"`
	}{}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		err = fmt.Errorf("failed decoding payment response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Payment{}, err
	}
	logger.Info().
		Int64("paymentId", parsed.ID).
		Str("status", parsed.Status).
		Msg("processed payment")

	return response.Payment{
		ID:           parsed.ID,
		Status:       parsed.Status,
		StatusDetail: parsed.StatusDetail,
	}, nil
}

func (svc MercadoPagoService) post(
	c context.Context,
	path string,
	body map[string]interface{},
) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed encoding request body with error=%w", err)
	}

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		svc.cfg.ApiBaseURL+path,
		bytes.NewReader(encoded),
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating request with error=%w", err)
	}
	req.Header.Set("Authorization", "Bearer "+svc.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := svc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed calling mercadopago with error=%w", err)
	}
	defer resp.Body.Close()

	buf := bytes.Buffer{}
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed reading mercadopago response with error=%w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		parsed := struct {
			Message string `json:"message"`
		}{}
		json.Unmarshal(buf.Bytes(), &parsed)
		if parsed.Message == "" {
			parsed.Message = resp.Status
		}
		return nil, fmt.Errorf("%s with error=%w", parsed.Message, inErrors.ErrProviderRejected)
	}
	return buf.Bytes(), nil
}
