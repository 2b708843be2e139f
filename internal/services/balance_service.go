package services

import (
	"context"

	"github.com/shopspring/decimal"

	repo "github.com/baharkarakas/adledger/internal/repository"
)

type Balance struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

type BalanceService struct{ users repo.Users }

func NewBalanceService(u repo.Users) *BalanceService { return &BalanceService{users: u} }

func (s *BalanceService) Current(ctx context.Context, userID string) (Balance, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{UserID: u.ID, Amount: u.Balance}, nil
}
