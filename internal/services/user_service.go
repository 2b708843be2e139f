package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

type UserService struct{ r repo.Users }

func NewUserService(r repo.Users) *UserService { return &UserService{r: r} }

// Register creates a user with a zero balance.
func (s *UserService) Register(ctx context.Context, u models.User) (models.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	u.Balance = decimal.Zero
	return s.r.Create(ctx, u)
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	return s.r.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) { return s.r.List(ctx) }
