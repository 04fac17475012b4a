// Package pipeline coordinates one analysis job end to end: load blocks
// from the job's source, build the extraction report, persist the outcome,
// and optionally archive the report next to the source document.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docextract/internal/analyze"
	"github.com/joseph-ayodele/docextract/internal/artifacts"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/repository"
	"github.com/joseph-ayodele/docextract/internal/textract"
)

// BlockSource resolves a job source into its block list. The remote client
// and the local dump reader both satisfy it.
type BlockSource interface {
	Fetch(ctx context.Context, source string) ([]entity.Block, error)
}

// Processor runs the analyze stage for queued jobs.
type Processor struct {
	Logger    *slog.Logger
	Jobs      repository.JobRepository
	Blocks    BlockSource
	Artifacts *artifacts.Store // nil disables report archiving
	Threshold float64          // fallback when the job row carries a negative (unset) threshold
}

func NewProcessor(logger *slog.Logger, jobs repository.JobRepository, blocks BlockSource, store *artifacts.Store, threshold float64) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Jobs: jobs, Blocks: blocks, Artifacts: store, Threshold: threshold}
}

// ProcessJob drives one job through its lifecycle. Failures are recorded on
// the job row and also returned so the caller can log them. The job id rides
// on the context so every stage logs under the same attribute.
func (p *Processor) ProcessJob(ctx context.Context, jobID uuid.UUID) (*entity.AnalysisJob, error) {
	if common.JobIDFromContext(ctx) == "" {
		ctx = common.WithJobID(ctx, jobID.String())
	}
	log := p.Logger.With("job_id", common.JobIDFromContext(ctx))

	job, err := p.Jobs.GetByID(ctx, jobID)
	if err != nil {
		log.Error("processor.load.failed", "err", err)
		return nil, err
	}
	if err := p.Jobs.MarkRunning(ctx, jobID); err != nil {
		log.Error("processor.mark_running.failed", "err", err)
		return nil, err
	}

	blocks, err := p.Blocks.Fetch(ctx, job.Source)
	if err != nil {
		return nil, p.fail(ctx, log, jobID, fmt.Errorf("fetch blocks: %w", err))
	}
	log.Info("processor.fetch.ok", "source", job.Source, "blocks", len(blocks))

	threshold := job.Threshold
	if threshold < 0 {
		threshold = p.Threshold
	}
	report := analyze.BuildReport(blocks, analyze.Options{Source: job.Source, Threshold: &threshold})

	var usage analyze.Usage
	usage.SetPages(report.Document.Pages)
	if info, serr := os.Stat(job.Source); serr == nil {
		usage.SetDocumentSize(info.Size())
	}
	log.Info("processor.usage", "pages", usage.ProviderPages, "size_kb", usage.SizeKB)

	artifactURI := ""
	if p.Artifacts != nil {
		if uri, aerr := p.archive(ctx, job.Source, report); aerr != nil {
			// Archiving is best effort; the report still lands in the job row.
			log.Warn("processor.archive.failed", "err", aerr)
		} else {
			artifactURI = uri
		}
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return nil, p.fail(ctx, log, jobID, fmt.Errorf("marshal report: %w", err))
	}
	if err := p.Jobs.FinishSuccess(ctx, jobID, raw, report.HumanReview.Required, artifactURI); err != nil {
		log.Error("processor.finish.failed", "err", err)
		return nil, err
	}
	log.Info("processor.analyze.ok",
		"key_values", report.Summary.KeyValueCount,
		"tables", report.Summary.TableCount,
		"signatures", report.Summary.SignatureCount,
		"needs_review", report.HumanReview.Required,
	)
	return p.Jobs.GetByID(ctx, jobID)
}

func (p *Processor) fail(ctx context.Context, log *slog.Logger, jobID uuid.UUID, cause error) error {
	log.Error("processor.analyze.failed", "err", cause)
	if uerr := p.Jobs.FinishFailure(ctx, jobID, cause.Error()); uerr != nil {
		log.Error("processor.fail_update.failed", "err", uerr)
	}
	return cause
}

func (p *Processor) archive(ctx context.Context, source string, report entity.ExtractionReport) (string, error) {
	_, key, err := textract.ParseS3URI(source)
	if err != nil {
		// Local sources are archived under their base name.
		key = source
	}
	return p.Artifacts.PutReport(ctx, artifacts.DefaultReportKey(key), report)
}
