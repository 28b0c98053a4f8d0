package service

import (
	"testing"
	"time"
)

func watcherEnv(t *testing.T) (*testEnv, *ChildWatcher, string) {
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

	watcher := NewChildWatcher(env.childRepo, 10*time.Millisecond)
	return env, watcher, child.ChildID
}

func nextUpdate(t *testing.T, sub *ChildSubscription) ChildUpdate {
	t.Helper()
	select {
	case update, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription channel closed")
		}
		return update
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
	return ChildUpdate{}
}

func TestWatchDeliversInitialProfile(t *testing.T) {
	_, watcher, childID := watcherEnv(t)

	sub := watcher.Watch(childID)
	defer sub.Cancel()

	update := nextUpdate(t, sub)
	if update.SyncStatus != SyncSynced {
		t.Fatalf("sync status = %q, want synced", update.SyncStatus)
	}
	if update.Profile == nil || update.Profile.ChildID != childID {
		t.Fatalf("profile = %+v, want child %s", update.Profile, childID)
	}
}

func TestWatchDeliversProfileChanges(t *testing.T) {
	env, watcher, childID := watcherEnv(t)

	sub := watcher.Watch(childID)
	defer sub.Cancel()

	first := nextUpdate(t, sub)
	if first.Profile.Nickname != "토토" {
		t.Fatalf("initial nickname = %q, want 토토", first.Profile.Nickname)
	}

	// UpdatedAt tracks change detection; make sure it moves forward
	time.Sleep(5 * time.Millisecond)
	child := first.Profile
	child.Nickname = "새 이름"
	if err := env.childRepo.UpdateChild(child); err != nil {
		t.Fatalf("update child: %v", err)
	}

	second := nextUpdate(t, sub)
	if second.SyncStatus != SyncSynced {
		t.Fatalf("sync status = %q, want synced", second.SyncStatus)
	}
	if second.Profile.Nickname != "새 이름" {
		t.Errorf("nickname = %q, want 새 이름", second.Profile.Nickname)
	}
}

func TestWatchMissingChildReportsOffline(t *testing.T) {
	_, watcher, _ := watcherEnv(t)

	sub := watcher.Watch("child_0_missing")
	defer sub.Cancel()

	update := nextUpdate(t, sub)
	if update.SyncStatus != SyncOffline {
		t.Errorf("sync status = %q, want offline", update.SyncStatus)
	}
	if update.Profile != nil {
		t.Errorf("profile = %+v, want nil", update.Profile)
	}
}

func TestWatchCancelClosesChannel(t *testing.T) {
	_, watcher, childID := watcherEnv(t)

	sub := watcher.Watch(childID)
	nextUpdate(t, sub)

	sub.Cancel()
	sub.Cancel() // safe to repeat

	select {
	case _, ok := <-sub.C:
		if ok {
			// a buffered update may still drain first
			if _, ok := <-sub.C; ok {
				t.Error("channel still open after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Error("channel not closed after cancel")
	}
}
