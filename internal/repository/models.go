package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Product struct {
	ID               uuid.UUID
	Name             string
	Slug             string
	ImageUrl         string
	Price            pgtype.Numeric
	Stock            int32
	Active           bool
	PreparationHours pgtype.Float8
	PreparationDays  pgtype.Float8
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}
