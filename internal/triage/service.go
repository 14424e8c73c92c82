package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

const (
	// hotspotWindow bounds the derived hotspot report.
	hotspotWindow = 30 * 24 * time.Hour

	// hotspotMinCount is inclusive: a pair needs at least this many
	// complaints inside the window to surface.
	hotspotMinCount = 3

	hotspotReportLimit = 10
)

// ErrInvalidInput marks submission validation failures. The HTTP layer maps
// wrapped instances to 400 responses.
var ErrInvalidInput = errors.New("invalid input")

// Submission is the raw complaint input from the boundary layer.
type Submission struct {
	CitizenName  string `json:"citizen_name"`
	CitizenPhone string `json:"citizen_phone"`
	Text         string `json:"complaint_text"`
	Location     string `json:"location"`
	Language     string `json:"language"`
	ImageURL     string `json:"image_url"`
	AudioURL     string `json:"audio_url"`
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	Complaint   *Complaint `json:"complaint"`
	IsDuplicate bool       `json:"is_duplicate"`
}

// Notifier delivers a heads-up for complaints that need prompt attention.
type Notifier interface {
	Send(ctx context.Context, c *Complaint) error
}

// Service is the business boundary for complaint intake and triage.
type Service struct {
	store      Store
	translator *Translator
	classifier *Classifier
	scorer     *Scorer
	detector   *Detector
	aggregator *Aggregator
	logger     log.Logger
	metrics    *Metrics
	notifier   Notifier
}

// NewService creates the triage orchestrator. notifier may be nil.
func NewService(
	store Store,
	translator *Translator,
	classifier *Classifier,
	scorer *Scorer,
	logger log.Logger,
	metrics *Metrics,
	notifier Notifier,
) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:      store,
		translator: translator,
		classifier: classifier,
		scorer:     scorer,
		detector:   NewDetector(store, logger, metrics),
		aggregator: NewAggregator(store, logger, metrics),
		logger:     logger,
		metrics:    metrics,
		notifier:   notifier,
	}
}

// Submit runs the full intake pipeline for one complaint. The AI adapters and
// duplicate detection degrade locally and cannot fail the submission; only
// validation and the store insert can return an error. The hotspot update
// runs after a successful insert and never rolls it back.
func (s *Service) Submit(ctx context.Context, in *Submission) (*SubmitResult, error) {
	start := time.Now()

	if err := validate(in); err != nil {
		s.metrics.incSubmit("rejected")
		return nil, err
	}

	lang := in.Language
	if lang == "" {
		lang = WorkingLanguage
	}

	text := s.translator.Translate(ctx, in.Text, lang)
	category := s.classifier.Classify(ctx, text)
	assessment := s.scorer.Score(ctx, text)
	department := DepartmentFor(category)

	dupID, isDup := s.detector.FindDuplicate(ctx, category, in.Location, text)

	now := time.Now().UTC()
	c := &Complaint{
		ID:           ulid.Make().String(),
		CitizenName:  in.CitizenName,
		CitizenPhone: in.CitizenPhone,
		Text:         text,
		Language:     lang,
		Category:     category,
		Priority:     assessment.Priority,
		Sentiment:    assessment.Sentiment,
		UrgencyWords: assessment.UrgencyWords,
		Department:   department,
		Location:     in.Location,
		DuplicateOf:  dupID,
		ImageURL:     in.ImageURL,
		AudioURL:     in.AudioURL,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Insert(ctx, c); err != nil {
		s.metrics.incSubmit("error")
		return nil, fmt.Errorf("insert complaint: %w", err)
	}

	s.aggregator.Record(ctx, in.Location, category)

	s.metrics.incSubmit("created")
	s.metrics.incComplaint(category, assessment.Priority)
	s.metrics.observeSubmit(time.Since(start).Seconds())

	s.logger.Info(ctx, "complaint triaged",
		"complaint_id", c.ID,
		"category", string(category),
		"priority", string(assessment.Priority),
		"department", department,
		"is_duplicate", isDup,
	)

	if s.notifier != nil && assessment.Priority == PriorityHigh {
		// fire-and-forget: notification failure never affects the submission
		go func(c *Complaint) {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
			defer cancel()
			if err := s.notifier.Send(nctx, c); err != nil {
				s.logger.Error(nctx, err, "high-priority notification failed", "complaint_id", c.ID)
			}
		}(c)
	}

	return &SubmitResult{Complaint: c, IsDuplicate: isDup}, nil
}

// Get retrieves a complaint by id.
func (s *Service) Get(ctx context.Context, id string) (*Complaint, bool, error) {
	return s.store.Get(ctx, id)
}

// List returns complaints matching the filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Complaint, error) {
	return s.store.List(ctx, f)
}

// UpdateStatus transitions a complaint's status. Transitions are permissive
// by product decision: any valid status is accepted from any prior status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Complaint, bool, error) {
	if !status.Valid() {
		return nil, false, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.store.UpdateStatus(ctx, id, status)
}

// HotspotReport derives the trailing-window hotspot view from raw complaints.
// It is independent of the persistent counters the Aggregator maintains and
// the two are not guaranteed to agree.
func (s *Service) HotspotReport(ctx context.Context) ([]*HotspotReportRow, error) {
	since := time.Now().Add(-hotspotWindow)
	return s.store.HotspotReport(ctx, since, hotspotMinCount, hotspotReportLimit)
}

// Stats returns the dashboard summary.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

func validate(in *Submission) error {
	if in == nil {
		return fmt.Errorf("%w: empty submission", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("%w: complaint_text is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	return nil
}
