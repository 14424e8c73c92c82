package triage

import "time"

// Category is the complaint classification bucket.
type Category string

const (
	CategorySanitation     Category = "Sanitation"
	CategoryInfrastructure Category = "Infrastructure"
	CategorySafety         Category = "Safety"
)

// DefaultCategory is returned when classification cannot produce a
// recognizable label.
const DefaultCategory = CategoryInfrastructure

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySanitation, CategoryInfrastructure, CategorySafety:
		return true
	}
	return false
}

// Priority ranks how urgently a complaint needs attention.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Status tracks where a complaint is in its lifecycle.
type Status string

const (
	// StatusPending means submitted, not yet worked
	StatusPending Status = "pending"

	// StatusInProgress means a department is working it
	StatusInProgress Status = "in_progress"

	// StatusResolved means closed out
	StatusResolved Status = "resolved"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// departments maps each category to the department that owns it.
var departments = map[Category]string{
	CategorySanitation:     "Sanitation Department",
	CategoryInfrastructure: "Public Works Department",
	CategorySafety:         "Police Department",
}

// DepartmentFor returns the department assigned to a category. Unrecognized
// categories route to Public Works.
func DepartmentFor(c Category) string {
	if d, ok := departments[c]; ok {
		return d
	}
	return departments[CategoryInfrastructure]
}

// Complaint is a triaged citizen report. Core fields are immutable after
// creation; only Status (and UpdatedAt) transition afterwards.
type Complaint struct {
	ID           string    `json:"id"`
	CitizenName  string    `json:"citizen_name,omitempty"`
	CitizenPhone string    `json:"citizen_phone,omitempty"`
	Text         string    `json:"complaint_text"`
	Language     string    `json:"language"`
	Category     Category  `json:"category"`
	Priority     Priority  `json:"priority"`
	Sentiment    float64   `json:"sentiment_score"`
	UrgencyWords []string  `json:"urgency_keywords,omitempty"`
	Department   string    `json:"department"`
	Location     string    `json:"location"`
	DuplicateOf  string    `json:"duplicate_group_id,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	AudioURL     string    `json:"audio_url,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Hotspot is the persistently accumulated per-(location, category) counter.
// At most one row exists per (normalized location, category); the count is
// monotonic and never decays.
type Hotspot struct {
	Location    string    `json:"location"`
	Category    Category  `json:"category"`
	Count       int       `json:"complaint_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// HotspotReportRow is one entry of the derived trailing-window hotspot
// report. Unlike Hotspot it is recomputed from raw complaints at query time.
type HotspotReportRow struct {
	Location string   `json:"location"`
	Category Category `json:"category"`
	Count    int      `json:"complaint_count"`
}

// Stats is the dashboard summary.
type Stats struct {
	Total        int              `json:"total"`
	HighPriority int              `json:"high_priority"`
	Pending      int              `json:"pending"`
	Resolved     int              `json:"resolved"`
	ByCategory   map[Category]int `json:"category_breakdown"`
}
