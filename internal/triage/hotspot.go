package triage

import (
	"context"
	"strings"

	"github.com/linnemanlabs/go-core/log"
)

// Aggregator maintains the running per-(location, category) complaint
// counters. Recording is a best-effort side effect of submission: failures
// are logged and never block the caller.
type Aggregator struct {
	store   Store
	logger  log.Logger
	metrics *Metrics
}

// NewAggregator creates a hotspot aggregator backed by the given store.
func NewAggregator(store Store, logger log.Logger, metrics *Metrics) *Aggregator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Aggregator{store: store, logger: logger, metrics: metrics}
}

// Record bumps the counter for (location, category). The store keys rows by
// the case-folded location; the trimmed original casing is kept for display.
func (a *Aggregator) Record(ctx context.Context, location string, category Category) {
	if err := a.store.BumpHotspot(ctx, strings.TrimSpace(location), category); err != nil {
		a.logger.Error(ctx, err, "hotspot update failed",
			"location", location, "category", string(category))
		a.metrics.incHotspotError()
	}
}
