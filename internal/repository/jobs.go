package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// JobRepository persists the analysis job lifecycle.
type JobRepository interface {
	Create(ctx context.Context, source string, threshold float64) (*entity.AnalysisJob, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	FinishSuccess(ctx context.Context, id uuid.UUID, report json.RawMessage, needsReview bool, artifactURI string) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.AnalysisJob, error)
}

type jobRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewJobRepository(db *DB, logger *slog.Logger) JobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobRepository{db: db, logger: logger}
}

func (r *jobRepository) Create(ctx context.Context, source string, threshold float64) (*entity.AnalysisJob, error) {
	job := &entity.AnalysisJob{
		ID:        uuid.New(),
		Source:    source,
		Threshold: threshold,
		Status:    constants.JobStatusQueued,
		StartedAt: time.Now().UTC(),
	}
	_, err := r.db.SQL.ExecContext(ctx, `
		INSERT INTO analysis_jobs (id, source, threshold, status, needs_review, started_at)
		VALUES ($1, $2, $3, $4, 0, $5)`,
		job.ID.String(), job.Source, job.Threshold, string(job.Status), job.StartedAt.Unix(),
	)
	if err != nil {
		r.logger.Error("repo.jobs.create_failed", "source", source, "error", err)
		return nil, dbError("create job", err)
	}
	return job, nil
}

func (r *jobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, constants.JobStatusRunning)
}

func (r *jobRepository) setStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus) error {
	res, err := r.db.SQL.ExecContext(ctx,
		`UPDATE analysis_jobs SET status = $1 WHERE id = $2`, string(status), id.String())
	if err != nil {
		return dbError("update job status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *jobRepository) FinishSuccess(ctx context.Context, id uuid.UUID, report json.RawMessage, needsReview bool, artifactURI string) error {
	review := 0
	if needsReview {
		review = 1
	}
	var artifact any
	if artifactURI != "" {
		artifact = artifactURI
	}
	res, err := r.db.SQL.ExecContext(ctx, `
		UPDATE analysis_jobs
		SET status = $1, report = $2, needs_review = $3, artifact_uri = $4, finished_at = $5, error_message = NULL
		WHERE id = $6`,
		string(constants.JobStatusAnalyzed), string(report), review, artifact, time.Now().UTC().Unix(), id.String(),
	)
	if err != nil {
		r.logger.Error("repo.jobs.finish_success_failed", "job_id", id, "error", err)
		return dbError("finish job", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *jobRepository) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	res, err := r.db.SQL.ExecContext(ctx, `
		UPDATE analysis_jobs
		SET status = $1, error_message = $2, finished_at = $3
		WHERE id = $4`,
		string(constants.JobStatusFailed), message, time.Now().UTC().Unix(), id.String(),
	)
	if err != nil {
		r.logger.Error("repo.jobs.finish_failure_failed", "job_id", id, "error", err)
		return dbError("fail job", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error) {
	row := r.db.SQL.QueryRowContext(ctx, `
		SELECT id, source, threshold, status, error_message, needs_review, report, artifact_uri, started_at, finished_at
		FROM analysis_jobs WHERE id = $1`, id.String())
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return job, err
}

func (r *jobRepository) ListRecent(ctx context.Context, limit int) ([]*entity.AnalysisJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.SQL.QueryContext(ctx, `
		SELECT id, source, threshold, status, error_message, needs_review, report, artifact_uri, started_at, finished_at
		FROM analysis_jobs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, dbError("list jobs", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			r.logger.Warn("repo.jobs.rows_close_failed", "error", cerr)
		}
	}()

	var jobs []*entity.AnalysisJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// dbError tags a storage failure with common.ErrDatabase while keeping the
// driver error inspectable.
func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(common.ErrDatabase, err))
}

func scanJob(row rowScanner) (*entity.AnalysisJob, error) {
	var (
		idStr       string
		status      string
		errMsg      sql.NullString
		needsReview int64
		report      sql.NullString
		artifactURI sql.NullString
		startedAt   int64
		finishedAt  sql.NullInt64
	)
	job := &entity.AnalysisJob{}
	err := row.Scan(&idStr, &job.Source, &job.Threshold, &status, &errMsg, &needsReview, &report, &artifactURI, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	job.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse job id: %w", err)
	}
	job.Status = constants.JobStatus(status)
	job.NeedsReview = needsReview != 0
	job.StartedAt = time.Unix(startedAt, 0).UTC()
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if report.Valid {
		job.Report = json.RawMessage(report.String)
	}
	if artifactURI.Valid {
		job.ArtifactURI = &artifactURI.String
	}
	if finishedAt.Valid {
		t := time.Unix(finishedAt.Int64, 0).UTC()
		job.FinishedAt = &t
	}
	return job, nil
}
