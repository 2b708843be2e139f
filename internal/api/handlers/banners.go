package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/adledger/internal/api/httpx"
	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/services"
)

type BannerHandler struct {
	Svc *services.BannerService
}

// Pick answers 204 when there is nothing to show.
func (h *BannerHandler) Pick(w http.ResponseWriter, r *http.Request) {
	b, ok, err := h.Svc.Pick(r.Context(), models.Place(chi.URLParam(r, "place")))
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BannerHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var b models.Banner
	if !decode(w, r, &b) {
		return
	}
	if err := h.Svc.Validate(r.Context(), b); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
