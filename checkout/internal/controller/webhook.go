package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/studiodflori/storefront/checkout/internal/otel"
	inHttp "github.com/studiodflori/storefront/internal/http"
	"github.com/studiodflori/storefront/internal/log"
)

// WebhookController acknowledges provider notifications. Payments are
// confirmed synchronously, so webhooks are only logged for now.
type WebhookController struct{}

func AttachWebhookController(mux *mux.Router) {
	controller := WebhookController{}

	router := mux.PathPrefix("/webhooks").Subrouter()
	router.HandleFunc("/mercadopago", controller.MercadoPago).Methods(http.MethodPost)
	router.HandleFunc("/stripe", controller.Stripe).Methods(http.MethodPost)
}

func (t WebhookController) MercadoPago(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WebhookController MercadoPago")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WebhookController MercadoPago").
		Str(log.KeyProvider, "mercadopago").
		Logger()

	// IPN notifications carry topic/id as query params, webhook
	// notifications carry type/data.id in the body.
	topic := r.URL.Query().Get("topic")
	id := r.URL.Query().Get("id")
	if topic == "" {
		body := struct {
			Type string `json:"type"`
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			topic = body.Type
			id = body.Data.ID
		}
	}
	logger.Info().
		Str("topic", topic).
		Str("notificationId", id).
		Msg("received mercadopago notification")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"received": true,
	})
}

func (t WebhookController) Stripe(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WebhookController Stripe")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WebhookController Stripe").
		Str(log.KeyProvider, "stripe").
		Logger()

	body := struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Error().Err(err).Msg("failed decoding stripe event")
	}
	logger.Info().
		Str("eventType", body.Type).
		Str("eventId", body.ID).
		Msg("received stripe event")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"received": true,
	})
}
