package models

import "time"

// Link request status values. A request moves pending → approved or
// pending → rejected exactly once and never transitions again.
const (
	LinkRequestPending  = "pending"
	LinkRequestApproved = "approved"
	LinkRequestRejected = "rejected"
)

// DefaultRejectionReason is stored when a parent rejects without a reason
const DefaultRejectionReason = "보호자가 요청을 거절했어요."

// LinkRequest is a pairing request submitted by a child device, referencing
// a family code, awaiting parent approval or rejection.
type LinkRequest struct {
	ID              string    `json:"id"`
	FamilyCode      string    `json:"familyCode"`
	ChildNickname   string    `json:"childNickname"`
	ChildAvatar     string    `json:"childAvatar"`
	ChildAge        *int      `json:"childAge,omitempty"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	ParentUID       string    `json:"parentUid,omitempty"`
	ChildID         string    `json:"childId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsPending reports whether the request can still be approved or rejected
func (r *LinkRequest) IsPending() bool {
	return r.Status == LinkRequestPending
}

// ParentApprovalPayload is the form a parent submits when approving a link
// request. Validation rules live in internal/validation.
type ParentApprovalPayload struct {
	ConfirmedNickname  string `json:"confirmedNickname" validate:"required"`
	ConfirmedAge       int    `json:"confirmedAge" validate:"required,gte=1,lte=19"`
	ServiceTermsAgreed bool   `json:"serviceTermsAgreed" validate:"eq=true"`
	PrivacyAgreed      bool   `json:"privacyAgreed" validate:"eq=true"`
	PushAgreed         bool   `json:"pushAgreed"`
	RewardEnabled      bool   `json:"rewardEnabled"`
	BaseCoinReward     int    `json:"baseCoinReward" validate:"gte=0,lte=1000"`
	ApprovalMode       string `json:"approvalMode" validate:"oneof=manual auto"`
	RecoveryEmail      string `json:"recoveryEmail" validate:"omitempty,email"`
	UsageStartTime     string `json:"usageStartTime" validate:"required,hhmm"`
	UsageEndTime       string `json:"usageEndTime" validate:"required,hhmm"`
	DailyMaxCompletion int    `json:"dailyMaxCompletion" validate:"gte=1,lte=100"`
}

// Settings converts the payload into the ApprovalSettings stored on the
// child profile.
func (p *ParentApprovalPayload) Settings() ApprovalSettings {
	return ApprovalSettings{
		RewardEnabled:      p.RewardEnabled,
		BaseCoinReward:     p.BaseCoinReward,
		ApprovalMode:       p.ApprovalMode,
		UsageStartTime:     p.UsageStartTime,
		UsageEndTime:       p.UsageEndTime,
		DailyMaxCompletion: p.DailyMaxCompletion,
		PushAgreed:         p.PushAgreed,
		RecoveryEmail:      p.RecoveryEmail,
	}
}
