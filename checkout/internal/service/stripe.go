package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
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

var hundred = decimal.NewFromInt(100)

type StripeService struct {
	cfg    config.Stripe
	client *http.Client
}

func NewStripeService(cfg config.Stripe, client *http.Client) StripeService {
	if client == nil {
		client = otelhttp.DefaultClient
	}
	return StripeService{cfg: cfg, client: client}
}

// CreatePaymentIntent forwards a payment intent to Stripe's form-encoded
// API. Amounts arrive in pesos and are converted to centavos.
func (svc StripeService) CreatePaymentIntent(
	c context.Context,
	param request.CreatePaymentIntent,
) (response.PaymentIntent, error) {
	c, span := otel.Tracer.Start(c, "StripeService CreatePaymentIntent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StripeService CreatePaymentIntent").
		Str(log.KeyProvider, "stripe").
		Logger()

	amount := coerce.PriceOrZero(param.Amount)
	if !amount.IsPositive() {
		err := fmt.Errorf("amount must be positive with error=%w", inErrors.ErrProviderRejected)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.PaymentIntent{}, err
	}
	centavos := amount.Mul(hundred).Round(0).IntPart()

	currency := strings.ToLower(strings.TrimSpace(param.Currency))
	if currency == "" {
		currency = "mxn"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(centavos, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("description", orderDescription)
	for key, value := range orderMetadata(param.Customer, param.Delivery) {
		form.Set("metadata["+key+"]", value)
	}
	form.Set("metadata[cart_items_count]", strconv.Itoa(len(param.Items)))

	logger = logger.With().
		Str(log.KeyProcess, "creating payment intent").
		Str(log.KeyAmount, amount.String()).
		Logger()
	logger.Info().Msg("creating payment intent")

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		svc.cfg.ApiBaseURL+"/v1/payment_intents",
		bytes.NewReader([]byte(form.Encode())),
	)
	if err != nil {
		err = fmt.Errorf("failed creating request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentIntent{}, err
	}
	req.Header.Set("Authorization", "Bearer "+svc.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := svc.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling stripe with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentIntent{}, err
	}
	defer resp.Body.Close()

	buf := bytes.Buffer{}
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		err = fmt.Errorf("failed reading stripe response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentIntent{}, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		parsed := struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}{}
		json.Unmarshal(buf.Bytes(), &parsed)
		if parsed.Error.Message == "" {
			parsed.Error.Message = resp.Status
		}
		err = fmt.Errorf("%s with error=%w", parsed.Error.Message, inErrors.ErrProviderRejected)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentIntent{}, err
	}

	parsed := struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		err = fmt.Errorf("failed decoding payment intent response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentIntent{}, err
	}
	logger.Info().Str("paymentIntentId", parsed.ID).Msg("created payment intent")

	return response.PaymentIntent{
		ClientSecret:    parsed.ClientSecret,
		PaymentIntentID: parsed.ID,
	}, nil
}
