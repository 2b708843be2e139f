package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/adledger/internal/api/httpx"
	"github.com/baharkarakas/adledger/internal/api/validate"
	"github.com/baharkarakas/adledger/internal/auth"
	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/services"
)

type ChargeHandler struct {
	Svc *services.PaymentService
}

type createChargeReq struct {
	Amount   decimal.Decimal `json:"amount"`
	Provider models.Provider `json:"provider"`
}

func (h *ChargeHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var req createChargeReq
	if !decode(w, r, &req) {
		return
	}
	if err := validate.Check(
		validate.Positive("amount", req.Amount),
		validate.Required("provider", string(req.Provider)),
	); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	c, err := h.Svc.CreateCharge(r.Context(), u.UserID, req.Amount, req.Provider)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

// Get shows a charge to its owner or an admin.
func (h *ChargeHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.GetCharge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	if c.UserID != u.UserID && u.Role != auth.RoleAdmin {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

type completeReq struct {
	Paid bool `json:"paid"`
}

type completeResp struct {
	Charge   models.Charge `json:"charge"`
	Credited bool          `json:"credited"`
}

// Complete is the payment gateway callback.
func (h *ChargeHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeReq
	if !decode(w, r, &req) {
		return
	}
	c, credited, err := h.Svc.CompleteCharge(r.Context(), chi.URLParam(r, "id"), req.Paid)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, completeResp{Charge: c, Credited: credited})
}
