package handlers

import (
	"net/http"

	"github.com/baharkarakas/adledger/internal/api/httpx"
	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/services"
)

type UserHandler struct {
	Svc *services.UserService
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	user, err := h.Svc.Get(r.Context(), u.UserID)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

type registerReq struct {
	ID                      string `json:"id"`
	Email                   string `json:"email"`
	DisplayName             string `json:"display_name"`
	Role                    string `json:"role"`
	CanReceiveNotifications bool   `json:"can_receive_notifications"`
	NotifyBalanceChange     bool   `json:"notify_balance_change"`
	// Absent means on.
	NotifyModeration *bool    `json:"notify_moderation"`
	IsActive         *bool    `json:"is_active"`
	IsPro            bool     `json:"is_pro"`
	Country          string   `json:"country"`
	City             string   `json:"city"`
	Specializations  []string `json:"specializations"`
}

func orTrue(b *bool) bool { return b == nil || *b }

// Register mirrors a user from the identity provider.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Svc.Register(r.Context(), models.User{
		ID:                      req.ID,
		Email:                   req.Email,
		DisplayName:             req.DisplayName,
		Role:                    req.Role,
		CanReceiveNotifications: req.CanReceiveNotifications,
		NotifyBalanceChange:     req.NotifyBalanceChange,
		NotifyModeration:        orTrue(req.NotifyModeration),
		IsActive:                orTrue(req.IsActive),
		IsPro:                   req.IsPro,
		Country:                 req.Country,
		City:                    req.City,
		Specializations:         req.Specializations,
	})
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.List(r.Context())
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}
