package models

import "time"

type NotificationType string

const (
	NotifyFundsReceived      NotificationType = "funds_received"
	NotifyBalanceChanged     NotificationType = "balance_changed"
	NotifyModerationApproved NotificationType = "moderation_approved"
	NotifyModerationRejected NotificationType = "moderation_rejected"
	// NotifyDistribution carries an approved distribution to its recipients.
	NotifyDistribution NotificationType = "distribution"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Payload   map[string]any   `json:"payload,omitempty"`
	IsRead    bool             `json:"is_read"`
	Delivered bool             `json:"delivered"`
	CreatedAt time.Time        `json:"created_at"`
}
