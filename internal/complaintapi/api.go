// Package complaintapi exposes the complaint intake pipeline over HTTP. It is
// thin plumbing: all decision logic lives in the triage service.
package complaintapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/civicsense/internal/triage"
)

// ComplaintService defines the business operations complaintapi needs.
type ComplaintService interface {
	Submit(ctx context.Context, in *triage.Submission) (*triage.SubmitResult, error)
	Get(ctx context.Context, id string) (*triage.Complaint, bool, error)
	List(ctx context.Context, f triage.ListFilter) ([]*triage.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status triage.Status) (*triage.Complaint, bool, error)
	HotspotReport(ctx context.Context) ([]*triage.HotspotReportRow, error)
	Stats(ctx context.Context) (*triage.Stats, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    ComplaintService
}

// New creates a new API handler.
func New(logger log.Logger, svc ComplaintService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("complaint service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/complaints", func(r chi.Router) {
		r.Post("/", a.handleSubmit)
		r.Get("/", a.handleList)
		r.Get("/hotspots", a.handleHotspots)
		r.Get("/stats", a.handleStats)
		r.Get("/{id}", a.handleGet)
		r.Patch("/{id}/status", a.handleUpdateStatus)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
