package complaintapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/civicsense/internal/triage"
)

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in triage.Submission
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	result, err := a.svc.Submit(r.Context(), &in)
	if err != nil {
		if errors.Is(err, triage.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		a.logger.Error(r.Context(), err, "complaint submission failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("civicsense.complaint.id", result.Complaint.ID),
		attribute.String("civicsense.complaint.category", string(result.Complaint.Category)),
		attribute.String("civicsense.complaint.priority", string(result.Complaint.Priority)),
		attribute.Bool("civicsense.complaint.is_duplicate", result.IsDuplicate),
	)

	writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("civicsense.complaint.id", id))

	c, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get complaint", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := triage.ListFilter{
		Department: q.Get("department"),
		Priority:   q.Get("priority"),
		Status:     q.Get("status"),
	}

	complaints, err := a.svc.List(r.Context(), filter)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list complaints")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if complaints == nil {
		complaints = []*triage.Complaint{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"complaints": complaints})
}

func (a *API) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	c, ok, err := a.svc.UpdateStatus(r.Context(), id, triage.Status(body.Status))
	if err != nil {
		if errors.Is(err, triage.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		a.logger.Error(r.Context(), err, "failed to update complaint status", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("civicsense.complaint.id", id),
		attribute.String("civicsense.complaint.status", string(c.Status)),
	)

	writeJSON(w, http.StatusOK, map[string]any{"complaint": c})
}

func (a *API) handleHotspots(w http.ResponseWriter, r *http.Request) {
	rows, err := a.svc.HotspotReport(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to build hotspot report")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []*triage.HotspotReportRow{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"hotspots": rows})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Stats(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to compute stats")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
