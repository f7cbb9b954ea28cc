package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/studiodflori/storefront/cart/pkg/request"
	inErrors "github.com/studiodflori/storefront/internal/errors"
)

var testLoc = time.FixedZone("CST", -6*60*60)

// Wednesday 2025-03-12 14:20 local; 72h of preparation lands on Saturday
// 2025-03-15 14:20.
func testNow() time.Time {
	return time.Date(2025, time.March, 12, 14, 20, 0, 0, testLoc)
}

func setup(t *testing.T) (context.Context, *redis.Client, *testRedis.RedisContainer, CartService) {
	c := context.Background()

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}

	svc := NewCartServiceWithClock(redisClient, testLoc, testNow)
	return c, redisClient, redisContainer, svc
}

func teardown(t *testing.T, redisClient *redis.Client, redisContainer *testRedis.RedisContainer) {
	redisClient.Close()
	if err := testcontainers.TerminateContainer(redisContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}

func addItemRequest(id string, price int64, prepHours float64) request.AddItem {
	p := decimal.NewFromInt(price)
	return request.AddItem{
		ProductID:        id,
		Name:             id,
		Image:            "/assets/" + id + "/flor1.webp",
		Price:            &p,
		PreparationHours: &prepHours,
	}
}

func TestCartPersistsAcrossServiceInstances(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	_, err := svc.AddItem(c, "session-1", addItemRequest("rosas-rojas", 500, 72))
	assert.NoError(t, err)
	_, err = svc.AddItem(c, "session-1", addItemRequest("rosas-rojas", 500, 72))
	assert.NoError(t, err)

	// A fresh service over the same storage must rehydrate the same cart.
	rehydrated := NewCartServiceWithClock(redisClient, testLoc, testNow)
	cart, err := rehydrated.GetCart(c, "session-1")
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(1000).Equal(cart.TotalPrice))
	assert.Equal(t, 72.0, cart.EstimatedPreparationHours)
}

func TestCorruptPersistedCartStartsEmpty(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	err := redisClient.Set(c, "studiodflori:cart:v1:session-2", "{not json", 0).Err()
	assert.NoError(t, err)

	cart, err := svc.GetCart(c, "session-2")
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems)
}

func TestClearCartKeepsPersistenceKey(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	_, err := svc.AddItem(c, "session-3", addItemRequest("tulipanes", 350, 24))
	assert.NoError(t, err)

	cart, err := svc.ClearCart(c, "session-3")
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)

	exists, err := redisClient.Exists(c, "studiodflori:cart:v1:session-3").Result()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestRemoveAndDecreasePersist(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	_, err := svc.AddItem(c, "session-4", addItemRequest("rosas-rojas", 500, 72))
	assert.NoError(t, err)
	_, err = svc.AddItem(c, "session-4", addItemRequest("rosas-rojas", 500, 72))
	assert.NoError(t, err)
	_, err = svc.AddItem(c, "session-4", addItemRequest("tulipanes", 350, 24))
	assert.NoError(t, err)

	cart, err := svc.DecreaseItem(c, "session-4", "rosas-rojas")
	assert.NoError(t, err)
	assert.Equal(t, 2, cart.TotalItems)

	cart, err = svc.RemoveItem(c, "session-4", "tulipanes")
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "rosas-rojas", cart.Items[0].ID)

	cart, err = svc.DecreaseItem(c, "session-4", "rosas-rojas")
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestSnapshotDerivesDeliveryOptions(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	cart, err := svc.AddItem(c, "session-5", addItemRequest("rosas-rojas", 500, 72))
	assert.NoError(t, err)

	// now + 72h = Saturday 14:20, so the earliest date is the 15th and the
	// first enabled slot on it is 14:30.
	assert.Equal(t, "2025-03-15", cart.Delivery.EarliestDate)
	assert.Equal(t, "2025-03-15", cart.Delivery.Date)
	assert.Equal(t, "14:30", cart.Delivery.Time)
	assert.Len(t, cart.Delivery.Slots, 19)
	assert.Len(t, cart.Delivery.Cities, 5)
}

func TestSelectDeliveryClampsStaleSelection(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	// Selection made while the cart only needs 24h of preparation.
	_, err := svc.AddItem(c, "session-6", addItemRequest("tulipanes", 350, 24))
	assert.NoError(t, err)
	cart, err := svc.SelectDelivery(c, "session-6", request.DeliverySelection{
		City: "Guadalajara",
		Date: "2025-03-14",
		Time: "11:00",
	})
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-14", cart.Delivery.Date)

	// Adding a 72h item invalidates Friday; the snapshot clamps to the
	// re-derived earliest date and its first enabled slot.
	cart, err = svc.AddItem(c, "session-6", addItemRequest("rosas-rojas", 500, 72))
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-15", cart.Delivery.Date)
	assert.Equal(t, "14:30", cart.Delivery.Time)
	assert.Equal(t, "Guadalajara", cart.Delivery.City)
}

func TestSelectDeliveryRejectsUnsupportedCity(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	_, err := svc.SelectDelivery(c, "session-7", request.DeliverySelection{
		City: "Monterrey",
		Date: "2025-03-14",
		Time: "11:00",
	})
	assert.ErrorIs(t, err, inErrors.ErrUnsupportedCity)
}

func TestCheckoutAssemblesPayload(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	_, err := svc.AddItem(c, "session-8", addItemRequest("ramo-premium", 500, 72))
	assert.NoError(t, err)
	_, err = svc.AddItem(c, "session-8", addItemRequest("ramo-premium", 500, 72))
	assert.NoError(t, err)
	_, err = svc.SelectDelivery(c, "session-8", request.DeliverySelection{
		City: "Zapopan",
		Date: "2025-03-15",
		Time: "15:00",
	})
	assert.NoError(t, err)

	payload, err := svc.Checkout(c, "session-8")
	assert.NoError(t, err)
	assert.Len(t, payload.Items, 1)
	assert.Equal(t, 2, payload.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(1000).Equal(payload.TotalPrice))
	assert.Equal(t, "Zapopan", payload.Delivery.City)
	assert.Equal(t, "2025-03-15", payload.Delivery.Date)
	assert.Equal(t, "15:00", payload.Delivery.Time)
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	c, redisClient, redisContainer, svc := setup(t)
	defer teardown(t, redisClient, redisContainer)

	_, err := svc.Checkout(c, "session-9")
	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
}
