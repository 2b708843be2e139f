package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryProduct         EntryKind = "product"
	EntryRepayment       EntryKind = "repayment"
	EntryAdminAdjustment EntryKind = "admin_adjustment"
	EntryRefill          EntryKind = "refill"
)

func (k EntryKind) Valid() bool {
	switch k {
	case EntryProduct, EntryRepayment, EntryAdminAdjustment, EntryRefill:
		return true
	}
	return false
}

// NotifiesBalanceChange reports whether entries of this kind tell the user
// about the change when they opted in.
func (k EntryKind) NotifiesBalanceChange() bool {
	return k == EntryRepayment || k == EntryAdminAdjustment
}

// LedgerEntry is immutable once written. (UserID, EventID) is unique and is
// what makes a balance change apply at most once.
type LedgerEntry struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      EntryKind       `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
}
