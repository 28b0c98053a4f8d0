package models

import "time"

// User is an authenticated account. Parents are the only role today; the
// role field mirrors the client's routing flags.
type User struct {
	UID                 string    `json:"uid"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	DisplayName         string    `json:"displayName"`
	PhotoURL            string    `json:"photoUrl,omitempty"`
	Provider            string    `json:"provider,omitempty"` // "", "google" or "apple"
	Role                string    `json:"role"`
	PhoneVerified       bool      `json:"phoneVerified"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// UserFlowStatus drives the client's post-login routing
type UserFlowStatus struct {
	PhoneVerified       bool `json:"phoneVerified"`
	OnboardingCompleted bool `json:"onboardingCompleted"`
}
