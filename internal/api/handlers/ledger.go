package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/adledger/internal/api/httpx"
	"github.com/baharkarakas/adledger/internal/api/validate"
	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/services"
)

type LedgerHandler struct {
	Ledger   *services.LedgerService
	Balances *services.BalanceService
	Orders   *services.OrderService
}

func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	b, err := h.Balances.Current(r.Context(), u.UserID)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	limit, offset := paging(r)
	entries, err := h.Ledger.ListByUser(r.Context(), u.UserID, limit, offset)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

type orderReq struct {
	EventID      string `json:"event_id"`
	ProductCode  string `json:"product_code"`
	PeriodMonths int    `json:"period_months"`
	ItemCount    int    `json:"item_count"`
}

func (h *LedgerHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var req orderReq
	if !decode(w, r, &req) {
		return
	}
	o := models.Order{
		EventID:      eventID(r, req.EventID),
		UserID:       u.UserID,
		ProductCode:  req.ProductCode,
		PeriodMonths: req.PeriodMonths,
		ItemCount:    req.ItemCount,
	}
	if err := validate.Check(
		validate.Required("event_id", o.EventID),
		validate.Required("product_code", o.ProductCode),
		validate.MinInt("period_months", int64(o.PeriodMonths), 0),
		validate.MinInt("item_count", int64(o.ItemCount), 0),
	); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	e, err := h.Orders.PlaceOrder(r.Context(), o)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, e)
}

type adjustReq struct {
	EventID string          `json:"event_id"`
	UserIDs []string        `json:"user_ids"`
	Change  decimal.Decimal `json:"change"`
}

// Adjust applies one manual balance change to a list of users.
func (h *LedgerHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustReq
	if !decode(w, r, &req) {
		return
	}
	id := eventID(r, req.EventID)
	if err := validate.Check(
		validate.Required("event_id", id),
		validate.NotEmpty("user_ids", len(req.UserIDs)),
		validate.NonZero("change", req.Change),
	); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	entries, err := h.Ledger.AdjustBalances(r.Context(), id, req.UserIDs, req.Change)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

type repayReq struct {
	EventID string          `json:"event_id"`
	UserID  string          `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
}

func (h *LedgerHandler) Repay(w http.ResponseWriter, r *http.Request) {
	var req repayReq
	if !decode(w, r, &req) {
		return
	}
	id := eventID(r, req.EventID)
	if err := validate.Check(
		validate.Required("event_id", id),
		validate.Required("user_id", req.UserID),
		validate.Positive("amount", req.Amount),
	); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	e, err := h.Ledger.Repay(r.Context(), id, req.UserID, req.Amount)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}
