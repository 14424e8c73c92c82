package triage

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

const (
	// dedupWindow bounds how far back duplicate detection looks.
	dedupWindow = 7 * 24 * time.Hour

	// dedupThreshold is exclusive: a candidate must score strictly above it.
	dedupThreshold = 0.7
)

// Detector finds an earlier complaint that a candidate duplicates. Detection
// is best-effort, not a uniqueness constraint: a failed store query is logged
// and treated as "no duplicate", and two concurrent submissions of the same
// issue may both persist as non-duplicates.
type Detector struct {
	store   Store
	logger  log.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewDetector creates a duplicate detector backed by the given store.
func NewDetector(store Store, logger log.Logger, metrics *Metrics) *Detector {
	if logger == nil {
		logger = log.Nop()
	}
	return &Detector{store: store, logger: logger, metrics: metrics, now: time.Now}
}

// FindDuplicate returns the id of the first recent, same-category,
// same-location, unresolved complaint whose text similarity with text
// exceeds the threshold. Location is compared by exact string equality.
func (d *Detector) FindDuplicate(ctx context.Context, category Category, location, text string) (string, bool) {
	since := d.now().Add(-dedupWindow)

	candidates, err := d.store.OpenSince(ctx, category, location, since)
	if err != nil {
		d.logger.Error(ctx, err, "duplicate candidate query failed, treating as no duplicate",
			"category", string(category), "location", location)
		return "", false
	}

	for _, existing := range candidates {
		if Similarity(text, existing.Text) > dedupThreshold {
			d.metrics.incDuplicateFound()
			return existing.ID, true
		}
	}
	return "", false
}
