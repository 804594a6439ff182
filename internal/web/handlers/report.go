package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/analytics"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// ReportHandler serves attendance reports and CSV exports
type ReportHandler struct {
	registry *store.ClassRegistry
	repo     ledger.Repository
}

// NewReportHandler creates a new report handler
func NewReportHandler(registry *store.ClassRegistry, repo ledger.Repository) *ReportHandler {
	return &ReportHandler{registry: registry, repo: repo}
}

// countMode reads the optional mode query parameter. Rows are the default;
// mode=days counts each calendar day at most once.
func countMode(r *http.Request) analytics.CountMode {
	if r.URL.Query().Get("mode") == "days" {
		return analytics.CountDistinctDays
	}
	return analytics.CountRows
}

// Student handles GET /api/v1/classes/{class}/report?student_id=...
func (h *ReportHandler) Student(w http.ResponseWriter, r *http.Request) {
	class, err := h.registry.Resolve(chi.URLParam(r, "class"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		respondError(w, http.StatusBadRequest, "student_id is required")
		return
	}

	events, err := h.repo.Rows(r.Context(), class)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	report, err := analytics.ReportForStudent(events, studentID, countMode(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// CSV handles GET /api/v1/classes/{class}/report/csv?student_id=...
// Without student_id the whole class ledger is exported.
func (h *ReportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	class, err := h.registry.Resolve(chi.URLParam(r, "class"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	events, err := h.repo.Rows(r.Context(), class)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	studentID := r.URL.Query().Get("student_id")
	if studentID != "" {
		var kept []ledger.Event
		for _, e := range events {
			if e.StudentID == studentID {
				kept = append(kept, e)
			}
		}
		events = kept
	}
	if len(events) == 0 {
		respondDomainError(w, ledger.ErrNoRows)
		return
	}

	filename := ledger.StudentReportFilename(class, studentID)
	if studentID == "" {
		from, to := ledger.DayBounds(events)
		filename = ledger.ExportFilename(class, from, to)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	if err := ledger.WriteCSV(w, events); err != nil {
		// Headers are out; nothing sensible left to send.
		return
	}
}
