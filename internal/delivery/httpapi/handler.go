package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"migration-reconciliation/internal/domain"
	"migration-reconciliation/internal/reconcile"
)

// Service is what the API needs from the job usecase.
type Service interface {
	Jobs() []domain.ComparisonConfig
	Reasons() *domain.ReasonDictionary
	StartRun(ctx context.Context, configID string) (domain.JobRun, error)
	ListRuns(ctx context.Context) ([]domain.JobRun, error)
	GetRun(ctx context.Context, runID string) (domain.JobRun, error)
	Results(ctx context.Context, runID string, q reconcile.Query) ([]domain.ComparisonResult, error)
	Stats(ctx context.Context, runID, field string) (domain.ComparisonStats, error)
	Explain(ctx context.Context, runID, recordID string) (string, error)
	Summarize(ctx context.Context, runID string) (string, error)
}

// Handler serves the dashboard API.
type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RunSummary is a run without its result rows; the outer Results field
// shadows the embedded one and is always empty.
type RunSummary struct {
	domain.JobRun
	Results []domain.ComparisonResult `json:"results,omitempty"`
}

type resultsResponse struct {
	RunID   string                    `json:"runId"`
	Count   int                       `json:"count"`
	Results []domain.ComparisonResult `json:"results"`
}

type statsResponse struct {
	RunID  string                  `json:"runId"`
	Field  string                  `json:"field,omitempty"`
	Stats  domain.ComparisonStats  `json:"stats"`
	Fields []domain.FieldStatEntry `json:"fields"`
}

type textResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Jobs())
}

func (h *Handler) ListReasons(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Reasons().Reasons())
}

func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.StartRun(r.Context(), mux.Vars(r)["jobID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, run)
}

// ListRuns returns the run history without result rows.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.ListRuns(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunSummary{JobRun: run})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), mux.Vars(r)["runID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, RunSummary{JobRun: run})
}

func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]
	qs := r.URL.Query()

	status, err := reconcile.ParseStatusFilter(qs.Get("status"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	results, err := h.svc.Results(r.Context(), runID, reconcile.Query{
		Status: status,
		Search: qs.Get("q"),
		Field:  qs.Get("field"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resultsResponse{RunID: runID, Count: len(results), Results: results})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]
	field := r.URL.Query().Get("field")

	stats, err := h.svc.Stats(r.Context(), runID, field)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statsResponse{RunID: runID, Field: field, Stats: stats, Fields: stats.SortedFields()})
}

func (h *Handler) ExplainRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	text, err := h.svc.Explain(r.Context(), vars["runID"], vars["recordID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func (h *Handler) SummarizeRun(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.Summarize(r.Context(), mux.Vars(r)["runID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRunNotReady), errors.Is(err, domain.ErrRunFailed):
		return http.StatusConflict
	case errors.Is(err, reconcile.ErrInvalidStatusFilter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrExplainerUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}
