package models

import "time"

// ApprovalSettings is the reward/usage configuration a parent attaches to a
// child when approving the link request.
type ApprovalSettings struct {
	RewardEnabled      bool   `json:"rewardEnabled"`
	BaseCoinReward     int    `json:"baseCoinReward"`
	ApprovalMode       string `json:"approvalMode"` // "manual" or "auto"
	UsageStartTime     string `json:"usageStartTime"`
	UsageEndTime       string `json:"usageEndTime"`
	DailyMaxCompletion int    `json:"dailyMaxCompletion"`
	PushAgreed         bool   `json:"pushAgreed"`
	RecoveryEmail      string `json:"recoveryEmail,omitempty"`
}

// ChildProfile is created exactly once, as a side effect of approving a link
// request. FamilyCode never changes afterwards.
type ChildProfile struct {
	ChildID          string           `json:"childId"`
	FamilyCode       string           `json:"familyCode"`
	Nickname         string           `json:"nickname"`
	Avatar           string           `json:"avatar"`
	Age              *int             `json:"age,omitempty"`
	ParentUID        string           `json:"parentUid"`
	ApprovalSettings ApprovalSettings `json:"approvalSettings"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}
