package models

import "time"

// Vault item status values
const (
	VaultItemPending   = "pending"
	VaultItemDelivered = "delivered"
)

// VaultItem is a gifticon a parent has stored for later delivery. It may be
// assigned to a child before delivery; delivery is one-way.
type VaultItem struct {
	VaultID       string     `json:"vaultId"`
	ParentID      string     `json:"parentId"`
	TargetChildID *string    `json:"targetChildId"`
	Name          string     `json:"name"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	BarcodeURL    string     `json:"barcodeUrl,omitempty"`
	Status        string     `json:"status"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsExpired reports whether the gifticon has an expiry date in the past
func (v *VaultItem) IsExpired() bool {
	return v.ExpiryDate != nil && time.Now().After(*v.ExpiryDate)
}
