package models

import "time"

// DefaultTheme is the free theme every new group starts with
const DefaultTheme = "ant_and_grasshopper"

// FamilyGroup is keyed by its human-enterable invite code. The child roster
// lives in its own table; Children is populated on read.
type FamilyGroup struct {
	InviteCode        string    `json:"inviteCode"`
	OwnerID           string    `json:"ownerId"`
	SelectedTheme     string    `json:"selectedTheme"`
	AllowAutoApproval bool      `json:"allowAutoApproval"`
	Children          []string  `json:"children"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
