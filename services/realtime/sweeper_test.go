package realtime

import (
	"context"
	"testing"
	"time"

	"vecindo/models"

	"go.uber.org/zap"
)

func TestSweepDeletesOnlyExpired(t *testing.T) {
	repo := newFakeNotificationRepo()
	dir := newFakeDirectory(testUsers()...)
	d, _ := newTestDispatcher(repo, dir)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := maintenanceNotice()
	expired.ExpiresAt = &past
	current := maintenanceNotice()
	current.ExpiresAt = &future
	evergreen := maintenanceNotice() // no expiry, stays forever

	for _, data := range []models.NotificationData{expired, current, evergreen} {
		if _, err := d.Dispatch(context.Background(), models.Audience{Kind: models.AudienceUser, UserID: "alice"}, data); err != nil {
			t.Fatalf("fixture dispatch failed: %v", err)
		}
	}
	// An already-read record without expiry must also survive.
	readOne := repo.byRecipient("alice")[2]
	if _, err := repo.MarkRead(readOne.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	sweeper := &DefaultExpirySweeper{Repo: repo, Logger: zap.NewNop()}
	count, err := sweeper.Sweep(now)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Sweep() deleted %d, want 1", count)
	}
	if remaining := repo.byRecipient("alice"); len(remaining) != 2 {
		t.Errorf("%d notifications remain, want 2", len(remaining))
	}

	// Idempotent: a second sweep at the same instant deletes nothing.
	count, err = sweeper.Sweep(now)
	if err != nil || count != 0 {
		t.Errorf("second Sweep() = (%d, %v), want (0, nil)", count, err)
	}
}

func TestSweepKeepsConfirmationRecords(t *testing.T) {
	repo := newFakeNotificationRepo()
	dir := newFakeDirectory(testUsers()...)

	past := time.Now().Add(-time.Minute)
	data := confirmableNotice()
	data.ExpiresAt = &past
	n := dispatchFixture(t, repo, dir, models.Audience{Kind: models.AudienceUser, UserID: "alice"}, data, "alice")

	tracker := newTestTracker(repo, dir)
	if _, err := tracker.Confirm(n.ID, "alice"); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	sweeper := &DefaultExpirySweeper{Repo: repo, Logger: zap.NewNop()}
	if _, err := sweeper.Sweep(time.Now()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if count, _ := repo.CountConfirmations(n.ID); count != 1 {
		t.Errorf("confirmation count after sweep = %d, want 1", count)
	}
}
