package service

import (
	"sync"
	"time"

	"antgiftbox/internal/models"
	"antgiftbox/internal/repository"
)

// Sync status values carried on every child profile update
const (
	SyncSynced  = "synced"
	SyncOffline = "offline"
	SyncError   = "error"
)

// ChildUpdate is one observation of a watched child profile. Profile is
// nil when SyncStatus is offline or error.
type ChildUpdate struct {
	Profile    *models.ChildProfile `json:"profile"`
	SyncStatus string               `json:"syncStatus"`
}

// ChildSubscription streams updates for one child profile until cancelled.
// Updates arrives on C; Cancel stops the watch and closes C. Cancel is
// safe to call more than once.
type ChildSubscription struct {
	C chan ChildUpdate

	cancelOnce sync.Once
	done       chan struct{}
}

// Cancel stops the subscription
func (sub *ChildSubscription) Cancel() {
	sub.cancelOnce.Do(func() {
		close(sub.done)
	})
}

// ChildWatcher polls child profiles and pushes changes to subscribers. The
// child device keeps one subscription open to mirror its profile.
type ChildWatcher struct {
	childRepo *repository.ChildRepository
	interval  time.Duration
}

// NewChildWatcher creates a watcher polling at the given interval
func NewChildWatcher(childRepo *repository.ChildRepository, interval time.Duration) *ChildWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ChildWatcher{childRepo: childRepo, interval: interval}
}

// Watch starts observing a child profile. The first update is delivered
// immediately; afterwards an update is sent whenever the profile changes
// or the sync status flips. Updates are dropped rather than queued when
// the subscriber is not reading.
func (w *ChildWatcher) Watch(childID string) *ChildSubscription {
	sub := &ChildSubscription{
		C:    make(chan ChildUpdate, 1),
		done: make(chan struct{}),
	}

	go w.run(childID, sub)
	return sub
}

func (w *ChildWatcher) run(childID string, sub *ChildSubscription) {
	defer close(sub.C)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var lastStatus string
	var lastUpdated time.Time

	emit := func(update ChildUpdate) {
		select {
		case sub.C <- update:
		case <-sub.done:
		default:
		}
	}

	observe := func() {
		child, err := w.childRepo.GetChildByID(childID)
		switch {
		case err != nil:
			if lastStatus != SyncError {
				lastStatus = SyncError
				emit(ChildUpdate{SyncStatus: SyncError})
			}
		case child == nil:
			if lastStatus != SyncOffline {
				lastStatus = SyncOffline
				emit(ChildUpdate{SyncStatus: SyncOffline})
			}
		default:
			if lastStatus != SyncSynced || child.UpdatedAt.After(lastUpdated) {
				lastStatus = SyncSynced
				lastUpdated = child.UpdatedAt
				emit(ChildUpdate{Profile: child, SyncStatus: SyncSynced})
			}
		}
	}

	observe()
	for {
		select {
		case <-sub.done:
			return
		case <-ticker.C:
			observe()
		}
	}
}
