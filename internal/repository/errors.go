package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("repository: duplicate record")
	// ErrInsufficientStock is returned when an order asks for more units than are in stock.
	ErrInsufficientStock = errors.New("repository: insufficient stock")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
