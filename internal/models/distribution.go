package models

import (
	"slices"
	"time"
)

type DistributionStatus string

const (
	DistributionPending  DistributionStatus = "pending"
	DistributionApproved DistributionStatus = "approved"
	DistributionRejected DistributionStatus = "rejected"
)

type Distribution struct {
	ID      string             `json:"id"`
	UserID  string             `json:"user_id"`
	Message string             `json:"message"`
	Status  DistributionStatus `json:"status"`

	// Targeting. Empty fields do not filter.
	Specializations []string `json:"specializations,omitempty"`
	Country         string   `json:"country,omitempty"`
	City            string   `json:"city,omitempty"`
	ProOnly         bool     `json:"pro_only"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reaches reports whether an approved distribution is delivered to u: an
// active non-staff member other than the sender, registered before the
// distribution was created and matching every targeting field that is set.
func (d Distribution) Reaches(u User) bool {
	if !u.IsActive || u.IsStaff() || u.ID == d.UserID || u.CreatedAt.After(d.CreatedAt) {
		return false
	}
	if d.Country != "" && u.Country != d.Country {
		return false
	}
	if d.City != "" && u.City != d.City {
		return false
	}
	if d.ProOnly && !u.IsPro {
		return false
	}
	if len(d.Specializations) == 0 {
		return true
	}
	for _, want := range d.Specializations {
		if slices.Contains(u.Specializations, want) {
			return true
		}
	}
	return false
}
