package service

import (
	"errors"
	"testing"
	"time"

	"antgiftbox/internal/models"
)

func TestCreateLinkRequest(t *testing.T) {
	env := newTestEnv(t)
	_, code := env.parentWithGroup(t, "parent@example.com")

	age := 8
	request, err := env.pairing.CreateLinkRequest(code, "토토", "bear", &age)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}
	if request.ID == "" {
		t.Error("request id is empty")
	}
	if request.Status != models.LinkRequestPending {
		t.Errorf("status = %q, want %q", request.Status, models.LinkRequestPending)
	}
	if request.FamilyCode != code {
		t.Errorf("family code = %q, want %q", request.FamilyCode, code)
	}
	if request.ChildAge == nil || *request.ChildAge != 8 {
		t.Errorf("child age = %v, want 8", request.ChildAge)
	}
}

func TestCreateLinkRequestNormalizesCode(t *testing.T) {
	env := newTestEnv(t)
	_, code := env.parentWithGroup(t, "parent@example.com")

	// lowercased with surrounding whitespace must still resolve
	messy := "  " + toLowerASCII(code) + " "
	request, err := env.pairing.CreateLinkRequest(messy, "토토", "", nil)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}
	if request.FamilyCode != code {
		t.Errorf("family code = %q, want normalized %q", request.FamilyCode, code)
	}
}

func TestCreateLinkRequestInvalidCode(t *testing.T) {
	env := newTestEnv(t)
	env.parentWithGroup(t, "parent@example.com")

	cases := []struct {
		name string
		code string
	}{
		{"unknown code", "ZZZZZZ"},
		{"empty code", ""},
		{"whitespace only", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.pairing.CreateLinkRequest(tc.code, "토토", "", nil)
			if !errors.Is(err, ErrInvalidFamilyCode) {
				t.Errorf("err = %v, want ErrInvalidFamilyCode", err)
			}
		})
	}
}

func TestApproveCreatesChildAndRoster(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	request, err := env.pairing.CreateLinkRequest(code, "토토", "bear", nil)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}

	child, err := env.pairing.Approve(request.ID, uid, validApproval("토토"))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if child.ChildID == "" {
		t.Fatal("child id is empty")
	}
	if child.FamilyCode != code {
		t.Errorf("child family code = %q, want %q", child.FamilyCode, code)
	}
	if child.ParentUID != uid {
		t.Errorf("child parent uid = %q, want %q", child.ParentUID, uid)
	}

	// Request now carries the resolution
	resolved, err := env.pairing.GetRequest(request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if resolved.Status != models.LinkRequestApproved {
		t.Errorf("status = %q, want approved", resolved.Status)
	}
	if resolved.ChildID != child.ChildID {
		t.Errorf("request child id = %q, want %q", resolved.ChildID, child.ChildID)
	}
	if resolved.ParentUID != uid {
		t.Errorf("request parent uid = %q, want %q", resolved.ParentUID, uid)
	}

	// Child profile exists with the confirmed settings
	profile, err := env.children.GetProfile(child.ChildID)
	if err != nil {
		t.Fatalf("get child profile: %v", err)
	}
	if profile.Nickname != "토토" {
		t.Errorf("nickname = %q, want 토토", profile.Nickname)
	}
	if profile.Age == nil || *profile.Age != 8 {
		t.Errorf("age = %v, want 8", profile.Age)
	}
	if !profile.ApprovalSettings.RewardEnabled {
		t.Error("reward enabled = false, want true")
	}

	// Roster contains the child
	group, err := env.directory.GetGroup(code)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if len(group.Children) != 1 || group.Children[0] != child.ChildID {
		t.Errorf("roster = %v, want [%s]", group.Children, child.ChildID)
	}
}

func TestApproveTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	request, err := env.pairing.CreateLinkRequest(code, "토토", "", nil)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}

	if _, err := env.pairing.Approve(request.ID, uid, validApproval("토토")); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err = env.pairing.Approve(request.ID, uid, validApproval("토토"))
	if !errors.Is(err, ErrRequestNotPending) {
		t.Fatalf("second approve err = %v, want ErrRequestNotPending", err)
	}

	// Exactly one child was created
	children, err := env.childRepo.ListByFamilyCode(code)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 1 {
		t.Errorf("children = %d, want 1", len(children))
	}
}

func TestApproveByNonOwnerFails(t *testing.T) {
	env := newTestEnv(t)
	_, code := env.parentWithGroup(t, "owner@example.com")
	otherUID, _ := env.parentWithGroup(t, "other@example.com")

	request, err := env.pairing.CreateLinkRequest(code, "토토", "", nil)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}

	_, err = env.pairing.Approve(request.ID, otherUID, validApproval("토토"))
	if !errors.Is(err, ErrNotRequestOwner) {
		t.Fatalf("approve err = %v, want ErrNotRequestOwner", err)
	}

	// Request stays pending for the real owner
	pending, err := env.pairing.GetRequest(request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if pending.Status != models.LinkRequestPending {
		t.Errorf("status = %q, want pending", pending.Status)
	}
}

func TestApproveInvalidPayloadLeavesRequestPending(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	request, err := env.pairing.CreateLinkRequest(code, "토토", "", nil)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}

	payload := validApproval("토토")
	payload.PrivacyAgreed = false
	if _, err := env.pairing.Approve(request.ID, uid, payload); err == nil {
		t.Fatal("approve with missing consent succeeded")
	}

	pending, err := env.pairing.GetRequest(request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if pending.Status != models.LinkRequestPending {
		t.Errorf("status = %q, want pending", pending.Status)
	}
	children, err := env.childRepo.ListByFamilyCode(code)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 0 {
		t.Errorf("children = %d, want 0", len(children))
	}
}

func TestRejectUsesDefaultReason(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	request, err := env.pairing.CreateLinkRequest(code, "토토", "", nil)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}

	if err := env.pairing.Reject(request.ID, uid, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}

	rejected, err := env.pairing.GetRequest(request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if rejected.Status != models.LinkRequestRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}
	if rejected.RejectionReason != models.DefaultRejectionReason {
		t.Errorf("reason = %q, want default", rejected.RejectionReason)
	}

	// Rejection creates nothing
	children, err := env.childRepo.ListByFamilyCode(code)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 0 {
		t.Errorf("children = %d, want 0", len(children))
	}
}

func TestRejectThenApproveFails(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	request, err := env.pairing.CreateLinkRequest(code, "토토", "", nil)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}

	if err := env.pairing.Reject(request.ID, uid, "already have a profile"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err = env.pairing.Approve(request.ID, uid, validApproval("토토"))
	if !errors.Is(err, ErrRequestNotPending) {
		t.Fatalf("approve after reject err = %v, want ErrRequestNotPending", err)
	}
}

func TestListPendingForParent(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	first, err := env.pairing.CreateLinkRequest(code, "토토", "", nil)
	if err != nil {
		t.Fatalf("create first request: %v", err)
	}
	second, err := env.pairing.CreateLinkRequest(code, "두리", "", nil)
	if err != nil {
		t.Fatalf("create second request: %v", err)
	}

	if err := env.pairing.Reject(first.ID, uid, ""); err != nil {
		t.Fatalf("reject first: %v", err)
	}

	pending, err := env.pairing.ListPendingForParent(uid)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if pending[0].ID != second.ID {
		t.Errorf("pending[0] = %q, want %q", pending[0].ID, second.ID)
	}
}

func TestListPendingNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	older, err := env.pairing.CreateLinkRequest(code, "토토", "", nil)
	if err != nil {
		t.Fatalf("create older request: %v", err)
	}
	// Distinct creation times so the ordering is observable
	time.Sleep(5 * time.Millisecond)
	newer, err := env.pairing.CreateLinkRequest(code, "두리", "", nil)
	if err != nil {
		t.Fatalf("create newer request: %v", err)
	}

	pending, err := env.pairing.ListPendingForParent(uid)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != newer.ID {
		t.Errorf("pending[0] = %q, want newest %q", pending[0].ID, newer.ID)
	}
	if pending[1].ID != older.ID {
		t.Errorf("pending[1] = %q, want oldest %q", pending[1].ID, older.ID)
	}
}

func TestCreateLinkRequestNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	_, code := env.parentWithGroup(t, "parent@example.com")

	mailer := newRecordingMailer()
	pairing := NewPairingService(env.requestRepo, env.groupRepo, env.childRepo, env.parentRepo, mailer)

	if _, err := pairing.CreateLinkRequest(code, "토토", "", nil); err != nil {
		t.Fatalf("create link request: %v", err)
	}

	email := mailer.waitForEmail(t)
	if email.kind != "link-request" {
		t.Errorf("email kind = %q, want link-request", email.kind)
	}
	if email.to != "parent@example.com" {
		t.Errorf("email to = %q, want the group owner", email.to)
	}
	if email.nickname != "토토" || email.code != code {
		t.Errorf("email = %+v, want nickname 토토 and code %s", email, code)
	}
}

func TestGetRequestNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.pairing.GetRequest("req_0_missing")
	if !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("err = %v, want ErrRequestNotFound", err)
	}
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
