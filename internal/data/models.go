package data

import "github.com/jackc/pgx/v5/pgxpool"

type Models struct {
	Classes ClassModel
}

func NewModels(pool *pgxpool.Pool) *Models {
	return &Models{
		Classes: ClassModel{
			Pool: pool,
		},
	}
}
