package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findActiveProducts = `-- name: FindActiveProducts :many
SELECT id, name, slug, image_url, price, stock, active, preparation_hours, preparation_days, created_at, updated_at
FROM products
WHERE active = TRUE
ORDER BY name
`

func (q *Queries) FindActiveProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, findActiveProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Slug,
			&i.ImageUrl,
			&i.Price,
			&i.Stock,
			&i.Active,
			&i.PreparationHours,
			&i.PreparationDays,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findProductById = `-- name: FindProductById :one
SELECT id, name, slug, image_url, price, stock, active, preparation_hours, preparation_days, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) FindProductById(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, findProductById, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.ImageUrl,
		&i.Price,
		&i.Stock,
		&i.Active,
		&i.PreparationHours,
		&i.PreparationDays,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findProductBySlug = `-- name: FindProductBySlug :one
SELECT id, name, slug, image_url, price, stock, active, preparation_hours, preparation_days, created_at, updated_at
FROM products
WHERE slug = $1
`

func (q *Queries) FindProductBySlug(ctx context.Context, slug string) (Product, error) {
	row := q.db.QueryRow(ctx, findProductBySlug, slug)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.ImageUrl,
		&i.Price,
		&i.Stock,
		&i.Active,
		&i.PreparationHours,
		&i.PreparationDays,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertProduct = `-- name: InsertProduct :one
INSERT INTO products (id, name, slug, image_url, price, stock, active, preparation_hours, preparation_days)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, name, slug, image_url, price, stock, active, preparation_hours, preparation_days, created_at, updated_at
`

type InsertProductParams struct {
	ID               uuid.UUID
	Name             string
	Slug             string
	ImageUrl         string
	Price            pgtype.Numeric
	Stock            int32
	Active           bool
	PreparationHours pgtype.Float8
	PreparationDays  pgtype.Float8
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, insertProduct,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.ImageUrl,
		arg.Price,
		arg.Stock,
		arg.Active,
		arg.PreparationHours,
		arg.PreparationDays,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.ImageUrl,
		&i.Price,
		&i.Stock,
		&i.Active,
		&i.PreparationHours,
		&i.PreparationDays,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products
SET name = $2,
    image_url = $3,
    price = $4,
    stock = $5,
    active = $6,
    preparation_hours = $7,
    preparation_days = $8,
    updated_at = NOW()
WHERE id = $1
RETURNING id, name, slug, image_url, price, stock, active, preparation_hours, preparation_days, created_at, updated_at
`

type UpdateProductParams struct {
	ID               uuid.UUID
	Name             string
	ImageUrl         string
	Price            pgtype.Numeric
	Stock            int32
	Active           bool
	PreparationHours pgtype.Float8
	PreparationDays  pgtype.Float8
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.Name,
		arg.ImageUrl,
		arg.Price,
		arg.Stock,
		arg.Active,
		arg.PreparationHours,
		arg.PreparationDays,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.ImageUrl,
		&i.Price,
		&i.Stock,
		&i.Active,
		&i.PreparationHours,
		&i.PreparationDays,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
