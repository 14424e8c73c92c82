package triage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

func seedComplaint(id string, category Category, location, text string, status Status, createdAt time.Time) *Complaint {
	return &Complaint{
		ID:        id,
		Category:  category,
		Location:  location,
		Text:      text,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestFindDuplicate_EmptyPool(t *testing.T) {
	t.Parallel()

	d := NewDetector(newMockStore(), log.Nop(), nil)

	id, ok := d.FindDuplicate(context.Background(), CategorySanitation, "Ward 1", "garbage pile")
	if ok || id != "" {
		t.Errorf("FindDuplicate = (%q, %v), want no duplicate", id, ok)
	}
}

func TestFindDuplicate_ThresholdIsExclusive(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	// Ten unique tokens each, sharing exactly seven: similarity 0.7, which
	// must not count as a duplicate.
	existing := "t1 t2 t3 t4 t5 t6 t7 x1 x2 x3"
	atBoundary := "t1 t2 t3 t4 t5 t6 t7 y1 y2 y3"
	// Sharing eight of ten: 0.8, above threshold.
	above := "t1 t2 t3 t4 t5 t6 t7 x1 y2 y3"

	store := newMockStore()
	store.complaints = append(store.complaints,
		seedComplaint("c1", CategorySanitation, "Ward 1", existing, StatusPending, now.Add(-time.Hour)))

	d := NewDetector(store, log.Nop(), nil)

	if id, ok := d.FindDuplicate(context.Background(), CategorySanitation, "Ward 1", atBoundary); ok {
		t.Errorf("similarity exactly 0.7 flagged duplicate of %q", id)
	}
	id, ok := d.FindDuplicate(context.Background(), CategorySanitation, "Ward 1", above)
	if !ok || id != "c1" {
		t.Errorf("FindDuplicate = (%q, %v), want (c1, true)", id, ok)
	}
}

func TestFindDuplicate_FirstMatchWins(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	store := newMockStore()
	store.complaints = append(store.complaints,
		seedComplaint("c1", CategorySanitation, "Ward 1", "garbage pile near school", StatusPending, now.Add(-2*time.Hour)),
		seedComplaint("c2", CategorySanitation, "Ward 1", "garbage pile near school", StatusPending, now.Add(-time.Hour)),
	)

	d := NewDetector(store, log.Nop(), nil)

	id, ok := d.FindDuplicate(context.Background(), CategorySanitation, "Ward 1", "garbage pile near school")
	if !ok || id != "c1" {
		t.Errorf("FindDuplicate = (%q, %v), want first match (c1, true)", id, ok)
	}
}

func TestFindDuplicate_ScopedToCategoryAndLocation(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	store := newMockStore()
	store.complaints = append(store.complaints,
		seedComplaint("c1", CategorySafety, "Ward 1", "garbage pile near school", StatusPending, now.Add(-time.Hour)),
		seedComplaint("c2", CategorySanitation, "Ward 2", "garbage pile near school", StatusPending, now.Add(-time.Hour)),
	)

	d := NewDetector(store, log.Nop(), nil)

	if id, ok := d.FindDuplicate(context.Background(), CategorySanitation, "Ward 1", "garbage pile near school"); ok {
		t.Errorf("matched across category/location: %q", id)
	}
}

func TestFindDuplicate_IgnoresResolvedAndStale(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	store := newMockStore()
	store.complaints = append(store.complaints,
		seedComplaint("resolved", CategorySanitation, "Ward 1", "garbage pile near school", StatusResolved, now.Add(-time.Hour)),
		seedComplaint("stale", CategorySanitation, "Ward 1", "garbage pile near school", StatusPending, now.Add(-8*24*time.Hour)),
	)

	d := NewDetector(store, log.Nop(), nil)

	if id, ok := d.FindDuplicate(context.Background(), CategorySanitation, "Ward 1", "garbage pile near school"); ok {
		t.Errorf("matched resolved or stale complaint: %q", id)
	}
}

func TestFindDuplicate_QueryErrorIsNoDuplicate(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.openErr = errors.New("connection reset")

	d := NewDetector(store, log.Nop(), nil)

	id, ok := d.FindDuplicate(context.Background(), CategorySanitation, "Ward 1", "garbage pile")
	if ok || id != "" {
		t.Errorf("FindDuplicate = (%q, %v), want degraded no-duplicate", id, ok)
	}
}

func TestFindDuplicate_ExactLocationMatch(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	store := newMockStore()
	store.complaints = append(store.complaints,
		seedComplaint("c1", CategorySanitation, "ward 1", "garbage pile near school", StatusPending, now.Add(-time.Hour)))

	d := NewDetector(store, log.Nop(), nil)

	// Location comparison is exact: different casing is a different place.
	if id, ok := d.FindDuplicate(context.Background(), CategorySanitation, "Ward 1", "garbage pile near school"); ok {
		t.Errorf("case-differing location matched: %q", id)
	}
}
