package service

import (
	"errors"
	"testing"
)

func TestUpdateChildProfile(t *testing.T) {
	env, uid, childID := vaultEnv(t)

	child, err := env.children.GetProfile(childID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}

	settings := child.ApprovalSettings
	settings.BaseCoinReward = 50
	settings.UsageEndTime = "21:30"

	age := 9
	updated, err := env.children.UpdateProfile(childID, uid, "새 이름", "rabbit", &age, settings)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Nickname != "새 이름" {
		t.Errorf("nickname = %q, want 새 이름", updated.Nickname)
	}
	if updated.Avatar != "rabbit" {
		t.Errorf("avatar = %q, want rabbit", updated.Avatar)
	}
	if updated.Age == nil || *updated.Age != 9 {
		t.Errorf("age = %v, want 9", updated.Age)
	}
	if updated.ApprovalSettings.BaseCoinReward != 50 {
		t.Errorf("base coin reward = %d, want 50", updated.ApprovalSettings.BaseCoinReward)
	}

	// Changes persisted
	reloaded, err := env.children.GetProfile(childID)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if reloaded.ApprovalSettings.UsageEndTime != "21:30" {
		t.Errorf("usage end = %q, want 21:30", reloaded.ApprovalSettings.UsageEndTime)
	}
	// FamilyCode never changes
	if reloaded.FamilyCode != child.FamilyCode {
		t.Errorf("family code changed: %q -> %q", child.FamilyCode, reloaded.FamilyCode)
	}
}

func TestUpdateChildProfileOwnershipEnforced(t *testing.T) {
	env, _, childID := vaultEnv(t)
	otherUID := env.registerParent(t, "other@example.com")

	child, err := env.children.GetProfile(childID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}

	_, err = env.children.UpdateProfile(childID, otherUID, "이름", "", nil, child.ApprovalSettings)
	if !errors.Is(err, ErrNotRequestOwner) {
		t.Errorf("err = %v, want ErrNotRequestOwner", err)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.children.GetProfile("child_0_missing")
	if !errors.Is(err, ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}

func TestSessionValid(t *testing.T) {
	env, _, childID := vaultEnv(t)

	valid, err := env.children.SessionValid(childID)
	if err != nil {
		t.Fatalf("session valid: %v", err)
	}
	if !valid {
		t.Error("session for existing child should be valid")
	}

	for _, id := range []string{"", "child_0_missing"} {
		valid, err := env.children.SessionValid(id)
		if err != nil {
			t.Fatalf("session valid(%q): %v", id, err)
		}
		if valid {
			t.Errorf("session for %q should be invalid", id)
		}
	}
}
