package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	testPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"

	"github.com/studiodflori/storefront/catalog/pkg/request"
	inErrors "github.com/studiodflori/storefront/internal/errors"
	"github.com/studiodflori/storefront/internal/repository"
)

type fixture struct {
	pool              *pgxpool.Pool
	redisClient       *redis.Client
	postgresContainer *testPostgres.PostgresContainer
	redisContainer    *testRedis.RedisContainer
	service           ProductService
}

func setup(t *testing.T) (context.Context, fixture) {
	c := context.Background()

	postgresContainer, err := testPostgres.Run(c,
		"postgres:17.2-alpine3.21",
		testPostgres.WithInitScripts(
			filepath.Join("..", "..", "..", "migrations", "000001_create_table_products.up.sql"),
		),
		testPostgres.WithDatabase("storefront"),
		testPostgres.WithUsername("storefront"),
		testPostgres.WithPassword("storefront"),
		testPostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	postgresConnStr, err := postgresContainer.ConnectionString(c, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pgxConfig, err := pgxpool.ParseConfig(postgresConnStr)
	if err != nil {
		t.Fatalf("failed parsing postgres connection string with error: %s", err)
	}
	pgxConfig.AfterConnect = func(c context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(c, pgxConfig)
	if err != nil {
		t.Fatalf("failed creating pgx pool with error: %s", err)
	}

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

	svc := NewProductService(pool, repository.New(pool), redisClient)
	return c, fixture{
		pool:              pool,
		redisClient:       redisClient,
		postgresContainer: postgresContainer,
		redisContainer:    redisContainer,
		service:           svc,
	}
}

func teardown(t *testing.T, f fixture) {
	f.redisClient.Close()
	f.pool.Close()
	if err := testcontainers.TerminateContainer(f.redisContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
	if err := testcontainers.TerminateContainer(f.postgresContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}

func productRequest(slug string, prepHours *float64, prepDays *float64) request.Product {
	price := decimal.NewFromInt(850)
	return request.Product{
		Name:             "Ramo de Rosas",
		Slug:             slug,
		Image:            "https://cdn.studiodflori.test/" + slug + "/flor1.webp",
		Price:            &price,
		Stock:            10,
		Active:           true,
		PreparationHours: prepHours,
		PreparationDays:  prepDays,
	}
}

func hoursPtr(v float64) *float64 { return &v }

func TestInsertAndFindProduct(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	inserted, err := f.service.InsertProduct(c, productRequest("rosas-rojas", hoursPtr(72), nil))
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, inserted.ID)
	assert.True(t, inserted.Price.Equal(decimal.NewFromInt(850)))
	assert.Equal(t, float64(72), inserted.PreparationHours)

	found, err := f.service.FindProductById(c, inserted.ID)
	assert.NoError(t, err)
	assert.Equal(t, inserted.ID, found.ID)
	assert.Equal(t, "rosas-rojas", found.Slug)
	assert.True(t, found.Price.Equal(decimal.NewFromInt(850)))
}

func TestInsertProductDuplicateSlug(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	_, err := f.service.InsertProduct(c, productRequest("rosas-rojas", hoursPtr(72), nil))
	assert.NoError(t, err)

	_, err = f.service.InsertProduct(c, productRequest("rosas-rojas", hoursPtr(72), nil))
	assert.ErrorContains(t, err, "already exists")
}

func TestPreparationDaysConvertToHours(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	inserted, err := f.service.InsertProduct(c, productRequest("girasoles", nil, hoursPtr(3)))
	assert.NoError(t, err)
	assert.Equal(t, float64(72), inserted.PreparationHours)
}

func TestPreparationDefaultsWhenUnset(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	inserted, err := f.service.InsertProduct(c, productRequest("tulipanes", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, float64(24), inserted.PreparationHours)
}

func TestGetProductsOnlyActive(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	_, err := f.service.InsertProduct(c, productRequest("rosas-rojas", hoursPtr(72), nil))
	assert.NoError(t, err)

	inactive := productRequest("descontinuado", nil, nil)
	inactive.Active = false
	_, err = f.service.InsertProduct(c, inactive)
	assert.NoError(t, err)

	products, err := f.service.GetProducts(c)
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "rosas-rojas", products[0].Slug)
}

func TestGetProductsServedFromCache(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	_, err := f.service.InsertProduct(c, productRequest("rosas-rojas", hoursPtr(72), nil))
	assert.NoError(t, err)

	first, err := f.service.GetProducts(c)
	assert.NoError(t, err)
	assert.Len(t, first, 1)

	// A row written behind the service's back stays invisible until the
	// cached shelf expires or is invalidated.
	_, err = f.pool.Exec(
		c,
		"insert into products (name, slug, price) values ($1, $2, $3)",
		"Ramo de Tulipanes",
		"tulipanes",
		400,
	)
	assert.NoError(t, err)

	second, err := f.service.GetProducts(c)
	assert.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestFindProductByIdInactive(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	inactive := productRequest("descontinuado", nil, nil)
	inactive.Active = false
	inserted, err := f.service.InsertProduct(c, inactive)
	assert.NoError(t, err)

	_, err = f.service.FindProductById(c, inserted.ID)
	assert.ErrorIs(t, err, inErrors.ErrProductInactive)
}

func TestFindProductByIdMissing(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	_, err := f.service.FindProductById(c, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestUpdateProductInvalidatesCache(t *testing.T) {
	c, f := setup(t)
	defer teardown(t, f)

	inserted, err := f.service.InsertProduct(c, productRequest("rosas-rojas", hoursPtr(72), nil))
	assert.NoError(t, err)

	_, err = f.service.FindProductById(c, inserted.ID)
	assert.NoError(t, err)

	updated := productRequest("rosas-rojas", hoursPtr(48), nil)
	newPrice := decimal.NewFromInt(900)
	updated.Price = &newPrice
	_, err = f.service.UpdateProduct(c, inserted.ID, updated)
	assert.NoError(t, err)

	found, err := f.service.FindProductById(c, inserted.ID)
	assert.NoError(t, err)
	assert.True(t, found.Price.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, float64(48), found.PreparationHours)
	assert.True(t, found.UpdatedAt.After(time.Time{}))
}
