package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/studiodflori/storefront/catalog/internal/cache"
	"github.com/studiodflori/storefront/catalog/internal/otel"
	"github.com/studiodflori/storefront/catalog/pkg/request"
	"github.com/studiodflori/storefront/catalog/pkg/response"
	"github.com/studiodflori/storefront/internal/coerce"
	inErrors "github.com/studiodflori/storefront/internal/errors"
	"github.com/studiodflori/storefront/internal/log"
	inOtel "github.com/studiodflori/storefront/internal/otel"
	"github.com/studiodflori/storefront/internal/repository"
)

const productCacheTTL = 5 * time.Minute

type ProductService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
) ProductService {
	return ProductService{pool: pool, queries: queries, cache: cache}
}

// GetProducts returns the active shelf. Inactive products never leave this
// service.
func (svc ProductService) GetProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService GetProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService GetProducts").
		Logger()

	logger = logger.With().
		Str(log.KeyProcess, "finding products in cache").
		Str(log.KeyCacheKey, cache.KEY_PRODUCT_LIST).
		Logger()
	logger.Trace().Msg("finding products in cache")
	cached, err := svc.cache.Get(c, cache.KEY_PRODUCT_LIST).Result()
	if err == nil {
		products := []response.Product{}
		if err = json.Unmarshal([]byte(cached), &products); err == nil {
			logger.Info().Int("count", len(products)).Msg("found products in cache")
			return products, nil
		}
		logger.Info().Err(err).Msg("cached products are not decodable, falling back to database")
	}

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	span.AddEvent("finding products in database")
	rows, err := svc.queries.FindActiveProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	products := make([]response.Product, len(rows))
	for i, row := range rows {
		products[i] = row.Response()
	}
	span.AddEvent("found products in database")
	logger.Info().Int("count", len(products)).Msg("found products in database")

	logger = logger.With().Str(log.KeyProcess, "inserting products to cache").Logger()
	logger.Trace().Msg("inserting products to cache")
	encoded, err := json.Marshal(products)
	if err == nil {
		err = svc.cache.Set(c, cache.KEY_PRODUCT_LIST, encoded, productCacheTTL).Err()
	}
	if err != nil {
		err = fmt.Errorf("failed inserting products to cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return products, nil
	}
	logger.Info().Msg("inserted products to cache")

	return products, nil
}

func (svc ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Logger()

	cacheKey := cache.KEY_PRODUCTS + id.String()
	logger = logger.With().
		Str(log.KeyProcess, "finding product in cache").
		Str(log.KeyCacheKey, cacheKey).
		Logger()
	logger.Trace().Msg("finding product in cache")
	cached, err := svc.cache.Get(c, cacheKey).Result()
	if err == nil {
		product := response.Product{}
		if err = json.Unmarshal([]byte(cached), &product); err == nil {
			logger.Info().Msg("found product in cache")
			return product, nil
		}
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	row, err := svc.queries.FindProductById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("productId=%s with error=%w", id.String(), inErrors.ErrProductNotFound)
		} else {
			err = fmt.Errorf("failed finding productId=%s with error=%w", id.String(), err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	if !row.Active {
		err = fmt.Errorf("productId=%s with error=%w", id.String(), inErrors.ErrProductInactive)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	product := row.Response()
	logger.Info().Str(log.KeyProductName, product.Name).Msg("found product in database")

	logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
	logger.Trace().Msg("inserting product to cache")
	encoded, err := json.Marshal(product)
	if err == nil {
		err = svc.cache.Set(c, cacheKey, encoded, productCacheTTL).Err()
	}
	if err != nil {
		err = fmt.Errorf("failed inserting product to cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return product, nil
	}
	logger.Info().Msg("inserted product to cache")

	return product, nil
}

func (svc ProductService) InsertProduct(
	c context.Context,
	param request.Product,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Str(log.KeyProductName, param.Name).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product by slug in database")
	_, err := svc.queries.FindProductBySlug(c, param.Slug)
	if err == nil {
		err = fmt.Errorf("product with slug=%s already exists", param.Slug)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("product does not exist in database")

	logger = logger.With().Str(log.KeyProcess, "inserting product to database").Logger()
	logger.Trace().Msg("inserting product to database")
	span.AddEvent("inserting product to database")
	price := coerce.PriceOrZero(param.Price)
	row, err := svc.queries.InsertProduct(c, repository.InsertProductParams{
		ID:       uuid.New(),
		Name:     param.Name,
		Slug:     param.Slug,
		ImageUrl: param.Image,
		Price: pgtype.Numeric{
			Exp:              price.Exponent(),
			InfinityModifier: pgtype.Finite,
			Int:              price.Coefficient(),
			NaN:              false,
			Valid:            true,
		},
		Stock:            param.Stock,
		Active:           param.Active,
		PreparationHours: toFloat8(param.PreparationHours),
		PreparationDays:  toFloat8(param.PreparationDays),
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("inserted product to database")
	logger.Info().Str(log.KeyProductID, row.ID.String()).Msg("inserted product to database")

	svc.invalidateCache(c, row.ID)

	return row.Response(), nil
}

func (svc ProductService) UpdateProduct(
	c context.Context,
	id uuid.UUID,
	param request.Product,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating product in database").Logger()
	logger.Trace().Msg("updating product in database")
	price := coerce.PriceOrZero(param.Price)
	row, err := svc.queries.UpdateProduct(c, repository.UpdateProductParams{
		ID:       id,
		Name:     param.Name,
		ImageUrl: param.Image,
		Price: pgtype.Numeric{
			Exp:              price.Exponent(),
			InfinityModifier: pgtype.Finite,
			Int:              price.Coefficient(),
			NaN:              false,
			Valid:            true,
		},
		Stock:            param.Stock,
		Active:           param.Active,
		PreparationHours: toFloat8(param.PreparationHours),
		PreparationDays:  toFloat8(param.PreparationDays),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("productId=%s with error=%w", id.String(), inErrors.ErrProductNotFound)
		} else {
			err = fmt.Errorf("failed updating productId=%s with error=%w", id.String(), err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("updated product in database")

	svc.invalidateCache(c, id)

	return row.Response(), nil
}

func (svc ProductService) invalidateCache(c context.Context, id uuid.UUID) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService invalidateCache").
		Str(log.KeyProcess, "invalidating product cache").
		Logger()

	err := svc.cache.Del(c, cache.KEY_PRODUCT_LIST, cache.KEY_PRODUCTS+id.String()).Err()
	if err != nil {
		logger.Error().Err(err).Msg("failed invalidating product cache")
		return
	}
	logger.Info().Msg("invalidated product cache")
}

func toFloat8(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}
