package postgres

import (
	repo "github.com/baharkarakas/adledger/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Users:         &usersRepo{pool},
		Charges:       &chargesRepo{pool},
		Ledger:        &ledgerRepo{pool},
		Notifications: &notificationsRepo{pool},
		Banners:       &bannersRepo{pool},
		Products:      &productsRepo{pool},
		Distributions: &distributionsRepo{pool},
		Listings:      &listingsRepo{pool},
		UoW:           &unitOfWork{pool},
	}
}
