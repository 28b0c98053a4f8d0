package models

import "time"

// Parent is the parent-side profile created during onboarding. GroupID is
// nil until a family group has been created for this parent.
type Parent struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	GroupID     *string   `json:"groupId"`
	IsPremium   bool      `json:"isPremium"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
