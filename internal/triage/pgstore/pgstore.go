// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/civicsense/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/civicsense/internal/triage/pgstore")

// Store persists complaints and hotspot counters in PostgreSQL. Schema is
// managed by the migrations package; callers run migrations before New.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store over an already-connected pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const complaintColumns = `id, citizen_name, citizen_phone, complaint_text, language, category,
	priority, sentiment_score, urgency_keywords, department, location,
	duplicate_group_id, image_url, audio_url, status, created_at, updated_at`

// Insert persists a new complaint row.
func (s *Store) Insert(ctx context.Context, c *triage.Complaint) error {
	ctx, span := startSpan(ctx, "pgstore.Insert", "INSERT")
	defer span.End()

	var dupID *string
	if c.DuplicateOf != "" {
		dupID = &c.DuplicateOf
	}

	query := `INSERT INTO complaints (` + complaintColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err := s.pool.Exec(ctx, query,
		c.ID, c.CitizenName, c.CitizenPhone, c.Text, c.Language, string(c.Category),
		string(c.Priority), c.Sentiment, c.UrgencyWords, c.Department, c.Location,
		dupID, c.ImageURL, c.AudioURL, string(c.Status), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		recordErr(span, err)
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// Get retrieves a complaint by ID.
func (s *Store) Get(ctx context.Context, id string) (*triage.Complaint, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Get", "SELECT")
	defer span.End()

	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	c, err := scanComplaint(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		recordErr(span, err)
		return nil, false, err
	}
	if c == nil {
		return nil, false, nil
	}
	return c, true, nil
}

// List returns complaints matching the filter, newest created first.
func (s *Store) List(ctx context.Context, f triage.ListFilter) ([]*triage.Complaint, error) {
	ctx, span := startSpan(ctx, "pgstore.List", "SELECT")
	defer span.End()

	var sb strings.Builder
	sb.WriteString(`SELECT ` + complaintColumns + ` FROM complaints WHERE 1=1`)
	var args []any

	appendFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		sb.WriteString(" AND " + column + " = $" + strconv.Itoa(len(args)))
	}
	appendFilter("department", f.Department)
	appendFilter("priority", f.Priority)
	appendFilter("status", f.Status)

	sb.WriteString(" ORDER BY created_at DESC")

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	out, err := collectComplaints(rows)
	if err != nil {
		recordErr(span, err)
	}
	return out, err
}

// UpdateStatus sets a complaint's status and refreshes its updated timestamp.
func (s *Store) UpdateStatus(ctx context.Context, id string, status triage.Status) (*triage.Complaint, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.UpdateStatus", "UPDATE")
	defer span.End()

	query := `UPDATE complaints SET status = $1, updated_at = now()
		WHERE id = $2 RETURNING ` + complaintColumns

	c, err := scanComplaint(s.pool.QueryRow(ctx, query, string(status), id))
	if err != nil {
		recordErr(span, err)
		return nil, false, err
	}
	if c == nil {
		return nil, false, nil
	}
	return c, true, nil
}

// OpenSince returns unresolved complaints with the given category and exact
// location created at or after since.
func (s *Store) OpenSince(ctx context.Context, category triage.Category, location string, since time.Time) ([]*triage.Complaint, error) {
	ctx, span := startSpan(ctx, "pgstore.OpenSince", "SELECT")
	defer span.End()

	query := `SELECT ` + complaintColumns + ` FROM complaints
		WHERE category = $1 AND location = $2 AND status != $3 AND created_at >= $4`

	rows, err := s.pool.Query(ctx, query, string(category), location, string(triage.StatusResolved), since)
	if err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("query duplicate candidates: %w", err)
	}
	defer rows.Close()

	out, err := collectComplaints(rows)
	if err != nil {
		recordErr(span, err)
	}
	return out, err
}

// BumpHotspot atomically upsert-increments the counter for a (location,
// category) pair. Keyed by the case-folded location so variants differing
// only in case or padding share one row.
func (s *Store) BumpHotspot(ctx context.Context, location string, category triage.Category) error {
	ctx, span := startSpan(ctx, "pgstore.BumpHotspot", "UPSERT")
	defer span.End()

	query := `INSERT INTO hotspots (location, location_key, category, complaint_count, last_updated)
		VALUES ($1, lower($1), $2, 1, now())
		ON CONFLICT (location_key, category) DO UPDATE SET
			complaint_count = hotspots.complaint_count + 1,
			last_updated    = now()`

	if _, err := s.pool.Exec(ctx, query, location, string(category)); err != nil {
		recordErr(span, err)
		return fmt.Errorf("bump hotspot: %w", err)
	}
	return nil
}

// Hotspots returns all persistent counter rows, busiest first.
func (s *Store) Hotspots(ctx context.Context) ([]*triage.Hotspot, error) {
	ctx, span := startSpan(ctx, "pgstore.Hotspots", "SELECT")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT location, category, complaint_count, last_updated
		 FROM hotspots ORDER BY complaint_count DESC, location`)
	if err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("query hotspots: %w", err)
	}
	defer rows.Close()

	var out []*triage.Hotspot
	for rows.Next() {
		var (
			h        triage.Hotspot
			category string
		)
		if err := rows.Scan(&h.Location, &category, &h.Count, &h.LastUpdated); err != nil {
			recordErr(span, err)
			return nil, fmt.Errorf("scan hotspot: %w", err)
		}
		h.Category = triage.Category(category)
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("iterate hotspots: %w", err)
	}
	return out, nil
}

// HotspotReport derives (location, category) groups from raw complaints
// created at or after since.
func (s *Store) HotspotReport(ctx context.Context, since time.Time, minCount, limit int) ([]*triage.HotspotReportRow, error) {
	ctx, span := startSpan(ctx, "pgstore.HotspotReport", "SELECT")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT MAX(location) AS location, category, COUNT(*)::int AS complaint_count
		 FROM complaints
		 WHERE created_at >= $1
		 GROUP BY LOWER(TRIM(location)), category
		 HAVING COUNT(*) >= $2
		 ORDER BY complaint_count DESC
		 LIMIT $3`,
		since, minCount, limit)
	if err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("query hotspot report: %w", err)
	}
	defer rows.Close()

	var out []*triage.HotspotReportRow
	for rows.Next() {
		var (
			r        triage.HotspotReportRow
			category string
		)
		if err := rows.Scan(&r.Location, &category, &r.Count); err != nil {
			recordErr(span, err)
			return nil, fmt.Errorf("scan hotspot report row: %w", err)
		}
		r.Category = triage.Category(category)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("iterate hotspot report: %w", err)
	}
	return out, nil
}

// Stats returns the dashboard summary.
func (s *Store) Stats(ctx context.Context) (*triage.Stats, error) {
	ctx, span := startSpan(ctx, "pgstore.Stats", "SELECT")
	defer span.End()

	st := &triage.Stats{ByCategory: make(map[triage.Category]int)}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE priority = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		 FROM complaints`,
		string(triage.PriorityHigh), string(triage.StatusPending), string(triage.StatusResolved),
	).Scan(&st.Total, &st.HighPriority, &st.Pending, &st.Resolved)
	if err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("query stats: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT category, COUNT(*)::int FROM complaints GROUP BY category`)
	if err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("query category stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			recordErr(span, err)
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		st.ByCategory[triage.Category(category)] = count
	}
	if err := rows.Err(); err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("iterate category stats: %w", err)
	}
	return st, nil
}

func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
	))
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// scanComplaint scans a single row into a triage.Complaint.
// Returns (nil, nil) when no row is found.
func scanComplaint(row pgx.Row) (*triage.Complaint, error) {
	var (
		c        triage.Complaint
		category string
		priority string
		status   string
		dupID    *string
	)

	err := row.Scan(
		&c.ID, &c.CitizenName, &c.CitizenPhone, &c.Text, &c.Language, &category,
		&priority, &c.Sentiment, &c.UrgencyWords, &c.Department, &c.Location,
		&dupID, &c.ImageURL, &c.AudioURL, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan complaint: %w", err)
	}

	c.Category = triage.Category(category)
	c.Priority = triage.Priority(priority)
	c.Status = triage.Status(status)
	if dupID != nil {
		c.DuplicateOf = *dupID
	}
	return &c, nil
}

func collectComplaints(rows pgx.Rows) ([]*triage.Complaint, error) {
	var out []*triage.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaints: %w", err)
	}
	return out, nil
}
