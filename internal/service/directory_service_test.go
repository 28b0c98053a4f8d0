package service

import (
	"errors"
	"strings"
	"testing"

	"antgiftbox/internal/models"
)

func TestCreateFamilyGroup(t *testing.T) {
	env := newTestEnv(t)
	uid := env.registerParent(t, "parent@example.com")

	group, err := env.directory.CreateFamilyGroup(uid)
	if err != nil {
		t.Fatalf("create family group: %v", err)
	}
	if len(group.InviteCode) != 6 {
		t.Errorf("invite code %q has length %d, want 6", group.InviteCode, len(group.InviteCode))
	}
	for _, c := range group.InviteCode {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", c) {
			t.Errorf("invite code %q contains invalid character %q", group.InviteCode, c)
		}
	}
	if group.SelectedTheme != models.DefaultTheme {
		t.Errorf("theme = %q, want %q", group.SelectedTheme, models.DefaultTheme)
	}

	// The parent now points at the group
	parent, err := env.parentRepo.GetParentByUID(uid)
	if err != nil {
		t.Fatalf("get parent: %v", err)
	}
	if parent.GroupID == nil || *parent.GroupID != group.InviteCode {
		t.Errorf("parent group id = %v, want %q", parent.GroupID, group.InviteCode)
	}
}

func TestCreateFamilyGroupUnknownParent(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.directory.CreateFamilyGroup("missing-uid")
	if !errors.Is(err, ErrParentNotFound) {
		t.Errorf("err = %v, want ErrParentNotFound", err)
	}
}

func TestInviteCodesAreUnique(t *testing.T) {
	env := newTestEnv(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		uid := env.registerParent(t, "parent"+string(rune('a'+i))+"@example.com")
		group, err := env.directory.CreateFamilyGroup(uid)
		if err != nil {
			t.Fatalf("create family group %d: %v", i, err)
		}
		if seen[group.InviteCode] {
			t.Fatalf("duplicate invite code %q", group.InviteCode)
		}
		seen[group.InviteCode] = true
	}
}

func TestGetOrCreateFamilyCodeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	uid := env.registerParent(t, "parent@example.com")

	first, err := env.directory.GetOrCreateFamilyCode(uid)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := env.directory.GetOrCreateFamilyCode(uid)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first != second {
		t.Errorf("codes differ: %q vs %q", first, second)
	}
}

func TestGetOrCreateFamilyCodeHealsMissingGroup(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	// Simulate a group row lost to a partial migration
	if _, err := env.db.Exec("DELETE FROM family_groups WHERE invite_code = ?", code); err != nil {
		t.Fatalf("delete group: %v", err)
	}

	healed, err := env.directory.GetOrCreateFamilyCode(uid)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if healed == "" || healed == code {
		t.Errorf("healed code = %q, want a fresh code different from %q", healed, code)
	}
}

func TestUpdateGroupSettings(t *testing.T) {
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	if err := env.directory.UpdateGroupSettings(uid, "space_station", true); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	group, err := env.directory.GetGroup(code)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if group.SelectedTheme != "space_station" {
		t.Errorf("theme = %q, want space_station", group.SelectedTheme)
	}
	if !group.AllowAutoApproval {
		t.Error("allow auto approval = false, want true")
	}
}
