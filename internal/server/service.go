// Package server exposes the analysis job lifecycle over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/docextract/internal/async"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/export"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

type AnalysisService struct {
	jobs      repository.JobRepository
	queue     async.Queue
	export    *export.Service
	health    func(ctx context.Context) error
	threshold float64 // default for requests that omit one
	logger    *zap.Logger
}

func NewAnalysisService(jobs repository.JobRepository, queue async.Queue, exp *export.Service, health func(ctx context.Context) error, threshold float64, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{jobs: jobs, queue: queue, export: exp, health: health, threshold: threshold, logger: logger}
}

// Router builds the HTTP surface.
func (s *AnalysisService) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestContext)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/analyses", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/report", s.handleReport)
		r.Get("/{id}/export", s.handleExport)
	})
	return r
}

// requestContext copies chi's request id into the application context so
// handlers and downstream services log under the same attribute.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := common.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type createAnalysisRequest struct {
	Source string `json:"source"`
	// Threshold left out of the request means "use the service default";
	// an explicit 0 is a real threshold that accepts every signature.
	Threshold *float64 `json:"confidence_threshold"`
}

func (s *AnalysisService) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}

	v := common.NewValidator().Field("source", req.Source, common.Required)
	if req.Threshold != nil {
		v.Field("confidence_threshold", *req.Threshold, common.UnitInterval)
	}
	if v.HasErrors() {
		s.writeError(w, http.StatusBadRequest, v.Error().Error())
		return
	}

	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	job, err := s.jobs.Create(r.Context(), req.Source, threshold)
	if err != nil {
		s.logger.Warn("create analysis failed", zap.String("source", req.Source), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "create analysis failed")
		return
	}
	if err := s.queue.Enqueue(r.Context(), async.Job{JobID: job.ID, Source: job.Source, SubmittedAt: time.Now()}); err != nil {
		s.logger.Warn("enqueue failed", zap.String("job_id", job.ID.String()), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "enqueue failed")
		return
	}

	s.logger.Info("analysis accepted",
		zap.String("job_id", job.ID.String()),
		zap.String("source", job.Source),
		zap.String("request_id", common.RequestIDFromContext(r.Context())),
	)
	s.writeJSON(w, http.StatusAccepted, job)
}

func (s *AnalysisService) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	jobs, err := s.jobs.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Warn("list analyses failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "list analyses failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"analyses": jobs})
}

func (s *AnalysisService) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	job, err := s.jobs.GetByID(r.Context(), id)
	if err != nil {
		s.writeRepoError(w, id, err, "get analysis failed")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *AnalysisService) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	job, err := s.jobs.GetByID(r.Context(), id)
	if err != nil {
		s.writeRepoError(w, id, err, "get analysis failed")
		return
	}
	if len(job.Report) == 0 {
		s.writeError(w, http.StatusConflict, fmt.Sprintf("analysis %s is %s, no report yet", id, job.Status))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(job.Report)
}

func (s *AnalysisService) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	xlsx, err := s.export.ExportReportXLSX(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		s.logger.Warn("export failed", zap.String("job_id", id.String()), zap.Error(err))
		s.writeError(w, http.StatusConflict, "report not available for export")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id.String()+"_extracted.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

func (s *AnalysisService) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			s.writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *AnalysisService) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if v := common.NewValidator().Field("id", raw, common.Required, common.UUID); v.HasErrors() {
		s.writeError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (s *AnalysisService) writeRepoError(w http.ResponseWriter, id uuid.UUID, err error, msg string) {
	if errors.Is(err, common.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.logger.Warn(msg, zap.String("job_id", id.String()), zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, msg)
}

func (s *AnalysisService) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
	}
}

func (s *AnalysisService) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
