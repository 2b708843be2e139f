package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"

	repo "github.com/baharkarakas/adledger/internal/repository"
)

// notFound maps pgx.ErrNoRows onto repository.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	return err
}
