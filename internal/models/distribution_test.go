package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistributionReaches(t *testing.T) {
	created := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	d := Distribution{
		UserID:          "owner",
		Specializations: []string{"seo", "ads"},
		Country:         "TR",
		City:            "Izmir",
		ProOnly:         true,
		CreatedAt:       created,
	}
	member := func(mod func(*User)) User {
		u := User{
			ID: "m", Role: RoleUser, IsActive: true, IsPro: true,
			Country: "TR", City: "Izmir", Specializations: []string{"design", "ads"},
			CreatedAt: created.Add(-time.Hour),
		}
		if mod != nil {
			mod(&u)
		}
		return u
	}

	cases := []struct {
		name string
		user User
		want bool
	}{
		{"match", member(nil), true},
		{"joined same instant", member(func(u *User) { u.CreatedAt = created }), true},
		{"joined later", member(func(u *User) { u.CreatedAt = created.Add(time.Second) }), false},
		{"owner", member(func(u *User) { u.ID = "owner" }), false},
		{"staff", member(func(u *User) { u.Role = RoleAdmin }), false},
		{"inactive", member(func(u *User) { u.IsActive = false }), false},
		{"not pro", member(func(u *User) { u.IsPro = false }), false},
		{"other country", member(func(u *User) { u.Country = "DE" }), false},
		{"other city", member(func(u *User) { u.City = "Ankara" }), false},
		{"no shared specialization", member(func(u *User) { u.Specializations = []string{"design"} }), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.Reaches(tc.user))
		})
	}

	open := Distribution{UserID: "owner", CreatedAt: created}
	assert.True(t, open.Reaches(User{ID: "x", IsActive: true, CreatedAt: created}))
}
