package handlers

import (
	"net/http"

	"github.com/baharkarakas/adledger/internal/api/httpx"
	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/services"
)

type StatsHandler struct {
	Svc *services.StatsService
}

type paymentStatsResp struct {
	Name string              `json:"name"`
	Days []models.DailyTotal `json:"days"`
	// Points are [unix millis, amount] pairs for charting.
	Points [][2]float64 `json:"points"`
}

func (h *StatsHandler) Payments(w http.ResponseWriter, r *http.Request) {
	days, err := h.Svc.DailyPayments(r.Context())
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	resp := paymentStatsResp{Name: "all", Days: days, Points: make([][2]float64, 0, len(days))}
	for _, d := range days {
		resp.Points = append(resp.Points, [2]float64{float64(d.Day.UnixMilli()), d.Amount.InexactFloat64()})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
