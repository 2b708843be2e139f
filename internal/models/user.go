package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID                      string          `json:"id"`
	Email                   string          `json:"email"`
	DisplayName             string          `json:"display_name"`
	Role                    string          `json:"role"`
	Balance                 decimal.Decimal `json:"balance"`
	CanReceiveNotifications bool            `json:"can_receive_notifications"`
	NotifyBalanceChange     bool            `json:"notify_balance_change"`
	NotifyModeration        bool            `json:"notify_moderation"`
	IsActive                bool            `json:"is_active"`
	IsPro                   bool            `json:"is_pro"`
	Country                 string          `json:"country,omitempty"`
	City                    string          `json:"city,omitempty"`
	Specializations         []string        `json:"specializations,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrInvalidEmail = errors.New("invalid email")

// Validate checks the email and defaults the role.
func (u *User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u User) IsStaff() bool { return u.Role == RoleAdmin }
