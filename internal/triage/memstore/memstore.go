// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linnemanlabs/civicsense/internal/triage"
)

// Store holds complaints and hotspot counters in memory. Suitable for
// dev/testing; selected when no database URL is configured.
type Store struct {
	mu         sync.RWMutex
	complaints []*triage.Complaint          // insertion order
	byID       map[string]*triage.Complaint // complaint ID -> record
	hotspots   map[string]*triage.Hotspot   // folded location + category -> counter
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		byID:     make(map[string]*triage.Complaint),
		hotspots: make(map[string]*triage.Hotspot),
	}
}

// Insert stores a copy of the complaint.
func (s *Store) Insert(_ context.Context, c *triage.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.complaints = append(s.complaints, &cp)
	s.byID[c.ID] = &cp
	return nil
}

// Get retrieves a complaint by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*triage.Complaint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, false, nil
	}
	cp := *c
	return &cp, true, nil
}

// List returns complaints matching the filter, newest created first.
func (s *Store) List(_ context.Context, f triage.ListFilter) ([]*triage.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*triage.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		if f.Department != "" && c.Department != f.Department {
			continue
		}
		if f.Priority != "" && string(c.Priority) != f.Priority {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateStatus sets a complaint's status and refreshes its updated timestamp.
func (s *Store) UpdateStatus(_ context.Context, id string, status triage.Status) (*triage.Complaint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, false, nil
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	return &cp, true, nil
}

// OpenSince returns unresolved complaints with the given category and exact
// location created at or after since, in insertion order.
func (s *Store) OpenSince(_ context.Context, category triage.Category, location string, since time.Time) ([]*triage.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*triage.Complaint
	for _, c := range s.complaints {
		if c.Category != category || c.Location != location {
			continue
		}
		if c.Status == triage.StatusResolved || c.CreatedAt.Before(since) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// BumpHotspot increments the counter for (location, category), inserting a
// count-1 row when absent. The increment is atomic under the store mutex.
func (s *Store) BumpHotspot(_ context.Context, location string, category triage.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := hotspotKey(location, category)
	if h, ok := s.hotspots[key]; ok {
		h.Count++
		h.LastUpdated = time.Now().UTC()
		return nil
	}
	s.hotspots[key] = &triage.Hotspot{
		Location:    location,
		Category:    category,
		Count:       1,
		LastUpdated: time.Now().UTC(),
	}
	return nil
}

// Hotspots returns all persistent counter rows.
func (s *Store) Hotspots(_ context.Context) ([]*triage.Hotspot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*triage.Hotspot, 0, len(s.hotspots))
	for _, h := range s.hotspots {
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Location < out[j].Location
	})
	return out, nil
}

// HotspotReport derives (location, category) groups from raw complaints
// created at or after since.
func (s *Store) HotspotReport(_ context.Context, since time.Time, minCount, limit int) ([]*triage.HotspotReportRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type group struct {
		display string
		count   int
	}
	groups := make(map[string]*group)

	for _, c := range s.complaints {
		if c.CreatedAt.Before(since) {
			continue
		}
		key := hotspotKey(strings.TrimSpace(c.Location), c.Category)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.count++
		// display variant chosen like the SQL MAX(location) aggregate
		if c.Location > g.display {
			g.display = c.Location
		}
	}

	var out []*triage.HotspotReportRow
	for key, g := range groups {
		if g.count < minCount {
			continue
		}
		_, category, _ := strings.Cut(key, "\x00")
		out = append(out, &triage.HotspotReportRow{
			Location: g.display,
			Category: triage.Category(category),
			Count:    g.count,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Location < out[j].Location
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stats returns the dashboard summary.
func (s *Store) Stats(_ context.Context) (*triage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &triage.Stats{ByCategory: make(map[triage.Category]int)}
	for _, c := range s.complaints {
		st.Total++
		if c.Priority == triage.PriorityHigh {
			st.HighPriority++
		}
		switch c.Status {
		case triage.StatusPending:
			st.Pending++
		case triage.StatusResolved:
			st.Resolved++
		}
		st.ByCategory[c.Category]++
	}
	return st, nil
}

func hotspotKey(location string, category triage.Category) string {
	return strings.ToLower(strings.TrimSpace(location)) + "\x00" + string(category)
}
