package triage

import (
	"context"
	"time"
)

// ListFilter narrows complaint listings. Empty fields match everything;
// set fields are exact matches.
type ListFilter struct {
	Department string
	Priority   string
	Status     string
}

// Store is the persistence interface for complaints and hotspot aggregates.
// The store exclusively owns persisted records; the pipeline holds only
// transient views during a single run.
type Store interface {
	// Insert persists a new complaint. This is the single durable commit
	// point of a submission.
	Insert(ctx context.Context, c *Complaint) error

	Get(ctx context.Context, id string) (*Complaint, bool, error)

	// List returns complaints matching the filter, newest created first.
	List(ctx context.Context, f ListFilter) ([]*Complaint, error)

	// UpdateStatus sets a complaint's status and refreshes its updated
	// timestamp. Any valid status is accepted from any prior status.
	// Returns ok=false when the id is unknown.
	UpdateStatus(ctx context.Context, id string, status Status) (*Complaint, bool, error)

	// OpenSince returns unresolved complaints with the given category and
	// exact location string created at or after since, in store order.
	OpenSince(ctx context.Context, category Category, location string, since time.Time) ([]*Complaint, error)

	// BumpHotspot atomically increments the counter for (location, category),
	// keyed by the case-folded location, inserting a count-1 row with the
	// given display location when absent.
	BumpHotspot(ctx context.Context, location string, category Category) error

	// Hotspots returns all persistent hotspot counter rows.
	Hotspots(ctx context.Context) ([]*Hotspot, error)

	// HotspotReport derives (location, category) groups from raw complaints
	// created at or after since, keeping groups with at least minCount
	// complaints, ordered by count descending, capped at limit.
	HotspotReport(ctx context.Context, since time.Time, minCount, limit int) ([]*HotspotReportRow, error)

	Stats(ctx context.Context) (*Stats, error)
}
