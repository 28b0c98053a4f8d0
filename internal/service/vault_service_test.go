package service

import (
	"errors"
	"testing"
	"time"

	"antgiftbox/internal/models"
)

func vaultEnv(t *testing.T) (*testEnv, string, string) {
	t.Helper()
	env := newTestEnv(t)
	uid, code := env.parentWithGroup(t, "parent@example.com")

	request, err := env.pairing.CreateLinkRequest(code, "토토", "", nil)
	if err != nil {
		t.Fatalf("create link request: %v", err)
	}
	child, err := env.pairing.Approve(request.ID, uid, validApproval("토토"))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return env, uid, child.ChildID
}

func TestVaultAddAndList(t *testing.T) {
	env, uid, _ := vaultEnv(t)

	item, err := env.vault.AddItem(uid, "스타벅스 아메리카노", "https://cdn.example.com/img.png", "", nil)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.Status != models.VaultItemPending {
		t.Errorf("status = %q, want pending", item.Status)
	}

	items, err := env.vault.ListItems(uid)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].VaultID != item.VaultID {
		t.Errorf("items = %+v, want the one added item", items)
	}
}

func TestVaultAddRequiresName(t *testing.T) {
	env, uid, _ := vaultEnv(t)

	_, err := env.vault.AddItem(uid, "   ", "", "", nil)
	if !errors.Is(err, ErrInvalidVaultItem) {
		t.Errorf("err = %v, want ErrInvalidVaultItem", err)
	}
}

func TestVaultAssignAndDeliver(t *testing.T) {
	env, uid, childID := vaultEnv(t)

	item, err := env.vault.AddItem(uid, "아이스크림 기프티콘", "", "", nil)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	assigned, err := env.vault.AssignItem(item.VaultID, uid, &childID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.TargetChildID == nil || *assigned.TargetChildID != childID {
		t.Errorf("target = %v, want %q", assigned.TargetChildID, childID)
	}

	if err := env.vault.DeliverItem(item.VaultID, uid); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// Delivery is one-way
	err = env.vault.DeliverItem(item.VaultID, uid)
	if !errors.Is(err, ErrVaultItemNotPending) {
		t.Errorf("second deliver err = %v, want ErrVaultItemNotPending", err)
	}
}

func TestVaultAssignUnknownChild(t *testing.T) {
	env, uid, _ := vaultEnv(t)

	item, err := env.vault.AddItem(uid, "기프티콘", "", "", nil)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	missing := "child_0_missing"
	_, err = env.vault.AssignItem(item.VaultID, uid, &missing)
	if !errors.Is(err, ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}

func TestVaultOwnershipEnforced(t *testing.T) {
	env, uid, _ := vaultEnv(t)
	otherUID := env.registerParent(t, "other@example.com")

	item, err := env.vault.AddItem(uid, "기프티콘", "", "", nil)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if err := env.vault.DeliverItem(item.VaultID, otherUID); !errors.Is(err, ErrNotVaultOwner) {
		t.Errorf("deliver err = %v, want ErrNotVaultOwner", err)
	}
	if _, err := env.vault.AssignItem(item.VaultID, otherUID, nil); !errors.Is(err, ErrNotVaultOwner) {
		t.Errorf("assign err = %v, want ErrNotVaultOwner", err)
	}
}

func TestVaultExpiredItemCannotBeDelivered(t *testing.T) {
	env, uid, _ := vaultEnv(t)

	expired := time.Now().Add(-24 * time.Hour)
	item, err := env.vault.AddItem(uid, "만료된 기프티콘", "", "", &expired)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	err = env.vault.DeliverItem(item.VaultID, uid)
	if !errors.Is(err, ErrVaultItemExpired) {
		t.Errorf("err = %v, want ErrVaultItemExpired", err)
	}
}
