package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/adledger/internal/api/httpx"
	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/services"
)

type DistributionHandler struct {
	Svc *services.ModerationService
}

type submitReq struct {
	Message         string   `json:"message"`
	Specializations []string `json:"specializations"`
	Country         string   `json:"country"`
	City            string   `json:"city"`
	ProOnly         bool     `json:"pro_only"`
}

func (h *DistributionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var req submitReq
	if !decode(w, r, &req) {
		return
	}
	d, err := h.Svc.Submit(r.Context(), models.Distribution{
		UserID:          u.UserID,
		Message:         req.Message,
		Specializations: req.Specializations,
		Country:         req.Country,
		City:            req.City,
		ProOnly:         req.ProOnly,
	})
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

type moderateReq struct {
	Approved bool `json:"approved"`
}

func (h *DistributionHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req moderateReq
	if !decode(w, r, &req) {
		return
	}
	d, err := h.Svc.Moderate(r.Context(), chi.URLParam(r, "id"), req.Approved)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}
