package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	ChargePending    ChargeStatus = "pending"
	ChargeSuccessful ChargeStatus = "successful"
	ChargeFailed     ChargeStatus = "failed"
)

type Provider string

const (
	ProviderStripe    Provider = "stripe"
	ProviderPayPal    Provider = "paypal"
	ProviderRobokassa Provider = "robokassa"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderStripe, ProviderPayPal, ProviderRobokassa:
		return true
	}
	return false
}

type Charge struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	Provider        Provider        `json:"provider"`
	Status          ChargeStatus    `json:"status"`
	Paid            bool            `json:"paid"`
	BalanceRefilled bool            `json:"balance_refilled"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Settleable is the refill guard: successful, paid and not refilled yet.
func (c Charge) Settleable() bool {
	return c.Status == ChargeSuccessful && c.Paid && !c.BalanceRefilled
}

// SettlementEventID is the ledger idempotency key of the charge's refill.
func (c Charge) SettlementEventID() string { return "charge:" + c.ID }

// DailyTotal is the sum of successful charges created on one UTC day.
type DailyTotal struct {
	Day    time.Time       `json:"day"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}
