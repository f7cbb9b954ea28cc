package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/studiodflori/storefront/cart/internal/otel"
	"github.com/studiodflori/storefront/cart/internal/schedule"
	"github.com/studiodflori/storefront/cart/internal/store"
	"github.com/studiodflori/storefront/cart/pkg/request"
	"github.com/studiodflori/storefront/cart/pkg/response"
	inErrors "github.com/studiodflori/storefront/internal/errors"
	"github.com/studiodflori/storefront/internal/log"
	inOtel "github.com/studiodflori/storefront/internal/otel"
)

const (
	cartKeyPrefix     = "studiodflori:cart:v1:"
	deliveryKeyPrefix = "studiodflori:delivery:v1:"
)

type CartService struct {
	cache    *redis.Client
	timezone *time.Location
	now      func() time.Time
}

func NewCartService(cache *redis.Client, timezone *time.Location) CartService {
	return CartService{
		cache:    cache,
		timezone: timezone,
		now:      time.Now,
	}
}

// NewCartServiceWithClock injects the wall clock, used by tests.
func NewCartServiceWithClock(
	cache *redis.Client,
	timezone *time.Location,
	now func() time.Time,
) CartService {
	return CartService{cache: cache, timezone: timezone, now: now}
}

func (svc CartService) localNow() time.Time {
	return svc.now().In(svc.timezone)
}

// loadCart rehydrates the persisted item list. Missing or corrupt data
// degrades to an empty cart and is never surfaced to the caller.
func (svc CartService) loadCart(c context.Context, sessionID string) store.Cart {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService loadCart").
		Str(log.KeyCacheKey, cartKeyPrefix+sessionID).
		Logger()

	raw, err := svc.cache.Get(c, cartKeyPrefix+sessionID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msg("failed reading persisted cart, starting empty")
		}
		return store.Cart{Items: []store.Item{}}
	}

	items := []store.Item{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Info().Err(err).Msg("persisted cart is not decodable, starting empty")
		return store.Cart{Items: []store.Item{}}
	}
	return store.Cart{Items: items}
}

// saveCart serializes the full item list after every mutation.
func (svc CartService) saveCart(c context.Context, sessionID string, cart store.Cart) error {
	encoded, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed encoding cart with error=%w", err)
	}
	err = svc.cache.Set(c, cartKeyPrefix+sessionID, encoded, 0).Err()
	if err != nil {
		return fmt.Errorf("failed persisting cart with error=%w", err)
	}
	return nil
}

func (svc CartService) loadSelection(c context.Context, sessionID string) schedule.Selection {
	raw, err := svc.cache.Get(c, deliveryKeyPrefix+sessionID).Result()
	if err != nil {
		return schedule.Selection{}
	}
	sel := schedule.Selection{}
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		return schedule.Selection{}
	}
	return sel
}

func (svc CartService) saveSelection(
	c context.Context,
	sessionID string,
	sel schedule.Selection,
) error {
	encoded, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed encoding delivery selection with error=%w", err)
	}
	err = svc.cache.Set(c, deliveryKeyPrefix+sessionID, encoded, 0).Err()
	if err != nil {
		return fmt.Errorf("failed persisting delivery selection with error=%w", err)
	}
	return nil
}

func (svc CartService) AddItem(
	c context.Context,
	sessionID string,
	param request.AddItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProductID, param.ProductID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	c = logger.WithContext(c)
	cart := svc.loadCart(c, sessionID)
	cart.Add(store.Product{
		ID:               param.ProductID,
		Name:             param.Name,
		Image:            param.Image,
		Price:            param.Price,
		PreparationHours: param.PreparationHours,
	})
	if err := svc.saveCart(c, sessionID, cart); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int("totalItems", cart.TotalItems()).Msg("added item to cart")

	return svc.snapshot(c, sessionID, cart), nil
}

func (svc CartService) RemoveItem(
	c context.Context,
	sessionID string,
	productID string,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProductID, productID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing item from cart").Logger()
	logger.Info().Msg("removing item from cart")
	c = logger.WithContext(c)
	cart := svc.loadCart(c, sessionID)
	cart.Remove(productID)
	if err := svc.saveCart(c, sessionID, cart); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("removed item from cart")

	return svc.snapshot(c, sessionID, cart), nil
}

func (svc CartService) DecreaseItem(
	c context.Context,
	sessionID string,
	productID string,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService DecreaseItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService DecreaseItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProductID, productID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decreasing item quantity").Logger()
	logger.Info().Msg("decreasing item quantity")
	c = logger.WithContext(c)
	cart := svc.loadCart(c, sessionID)
	cart.Decrease(productID)
	if err := svc.saveCart(c, sessionID, cart); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("decreased item quantity")

	return svc.snapshot(c, sessionID, cart), nil
}

func (svc CartService) ClearCart(
	c context.Context,
	sessionID string,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	cart := svc.loadCart(c, sessionID)
	cart.Clear()
	if err := svc.saveCart(c, sessionID, cart); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("cleared cart")

	return svc.snapshot(c, sessionID, cart), nil
}

func (svc CartService) GetCart(
	c context.Context,
	sessionID string,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetCart").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "finding cart").
		Logger()

	logger.Info().Msg("finding cart")
	c = logger.WithContext(c)
	cart := svc.loadCart(c, sessionID)
	logger.Info().Int("totalItems", cart.TotalItems()).Msg("found cart")

	return svc.snapshot(c, sessionID, cart), nil
}

// SelectDelivery stores a delivery selection after clamping it to the
// nearest valid slot under the cart's current lead time.
func (svc CartService) SelectDelivery(
	c context.Context,
	sessionID string,
	param request.DeliverySelection,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService SelectDelivery")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SelectDelivery").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyCity, param.City).
		Str(log.KeyDate, param.Date).
		Str(log.KeyTime, param.Time).
		Logger()

	if !schedule.IsSupportedCity(param.City) {
		err := fmt.Errorf("city=%s with error=%w", param.City, inErrors.ErrUnsupportedCity)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "clamping delivery selection").Logger()
	logger.Info().Msg("clamping delivery selection")
	c = logger.WithContext(c)
	cart := svc.loadCart(c, sessionID)
	clamped := schedule.ClampSelection(
		schedule.Selection{City: param.City, Date: param.Date, Time: param.Time},
		svc.localNow(),
		cart.EstimatedPreparationHours(),
	)
	logger = logger.With().Any(log.KeyDelivery, clamped).Logger()
	logger.Info().Msg("clamped delivery selection")

	if err := svc.saveSelection(c, sessionID, clamped); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("persisted delivery selection")

	return svc.snapshot(c, sessionID, cart), nil
}

// Checkout assembles the payload handed to the payment relay. The stored
// delivery selection is re-clamped so a lead time change after selection can
// never produce an unreachable delivery window.
func (svc CartService) Checkout(
	c context.Context,
	sessionID string,
) (response.CheckoutPayload, error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Checkout").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "assembling checkout payload").
		Logger()

	logger.Info().Msg("assembling checkout payload")
	c = logger.WithContext(c)
	cart := svc.loadCart(c, sessionID)
	if len(cart.Items) == 0 {
		err := fmt.Errorf("sessionId=%s with error=%w", sessionID, inErrors.ErrEmptyCart)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.CheckoutPayload{}, err
	}

	clamped := schedule.ClampSelection(
		svc.loadSelection(c, sessionID),
		svc.localNow(),
		cart.EstimatedPreparationHours(),
	)

	items := make([]response.CheckoutItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = response.CheckoutItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}
	payload := response.CheckoutPayload{
		Items:      items,
		TotalPrice: cart.TotalPrice(),
		Delivery: response.CheckoutDelivery{
			City: clamped.City,
			Date: clamped.Date,
			Time: clamped.Time,
		},
	}
	logger.Info().
		Int("items", len(items)).
		Str(log.KeyAmount, payload.TotalPrice.String()).
		Msg("assembled checkout payload")

	return payload, nil
}

// snapshot derives the full cart view: items, totals and the delivery
// options recomputed under the current lead time.
func (svc CartService) snapshot(
	c context.Context,
	sessionID string,
	cart store.Cart,
) response.Cart {
	now := svc.localNow()
	prepHours := cart.EstimatedPreparationHours()
	earliest := schedule.EarliestInstant(now, prepHours)

	clamped := schedule.ClampSelection(svc.loadSelection(c, sessionID), now, prepHours)
	effectiveDate, err := time.ParseInLocation(schedule.DateLayout, clamped.Date, svc.timezone)
	if err != nil {
		effectiveDate = schedule.EarliestDate(now, prepHours)
	}

	slots := []response.Slot{}
	for _, slot := range schedule.SlotsFor(effectiveDate, earliest) {
		slots = append(slots, response.Slot{Time: slot.Time, Disabled: slot.Disabled})
	}

	items := make([]response.CartItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = response.CartItem{
			ID:               item.ID,
			Name:             item.Name,
			Image:            item.Image,
			Price:            item.Price,
			PreparationHours: item.PreparationHours,
			Quantity:         item.Quantity,
		}
	}

	return response.Cart{
		SessionID:                 sessionID,
		Items:                     items,
		TotalItems:                cart.TotalItems(),
		TotalPrice:                cart.TotalPrice(),
		EstimatedPreparationHours: prepHours,
		Delivery: response.Delivery{
			City:         clamped.City,
			Date:         clamped.Date,
			Time:         clamped.Time,
			EarliestDate: schedule.EarliestDate(now, prepHours).Format(schedule.DateLayout),
			Slots:        slots,
			Cities:       schedule.Cities(),
		},
	}
}
