package textract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/joseph-ayodele/docextract/internal/entity"
)

// ErrJobTimeout is returned when a job does not finish inside cfg.Timeout.
// Callers must treat it as a distinct failure, never as an empty result.
var ErrJobTimeout = errors.New("textract job timed out")

// ErrJobFailed is returned when the provider reports the job as FAILED.
var ErrJobFailed = errors.New("textract job failed")

// PollAnalysis waits for the job with a fixed-interval loop bounded by the
// configured wall-clock timeout, then collects every result page (the
// provider paginates blocks via NextToken) into one concatenated block list.
func (c *Client) PollAnalysis(ctx context.Context, jobID string) ([]entity.Block, error) {
	deadline := time.Now().Add(c.cfg.Timeout)

	for {
		out, err := c.api.GetDocumentAnalysis(ctx, &textract.GetDocumentAnalysisInput{
			JobId: aws.String(jobID),
		})
		if err != nil {
			return nil, fmt.Errorf("get document analysis: %w", err)
		}

		switch out.JobStatus {
		case types.JobStatusSucceeded, types.JobStatusPartialSuccess:
			return c.collectBlocks(ctx, jobID, out)
		case types.JobStatusFailed:
			c.logger.Error("textract.poll.job_failed", "job_id", jobID, "status_message", aws.ToString(out.StatusMessage))
			return nil, fmt.Errorf("%w: %s", ErrJobFailed, aws.ToString(out.StatusMessage))
		}

		if time.Now().After(deadline) {
			c.logger.Error("textract.poll.timeout", "job_id", jobID, "timeout", c.cfg.Timeout)
			return nil, fmt.Errorf("%w after %s", ErrJobTimeout, c.cfg.Timeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// collectBlocks drains the paginated result set starting from the first page.
func (c *Client) collectBlocks(ctx context.Context, jobID string, first *textract.GetDocumentAnalysisOutput) ([]entity.Block, error) {
	blocks := fromProviderBlocks(first.Blocks)
	next := first.NextToken
	for next != nil {
		out, err := c.api.GetDocumentAnalysis(ctx, &textract.GetDocumentAnalysisInput{
			JobId:     aws.String(jobID),
			NextToken: next,
		})
		if err != nil {
			return nil, fmt.Errorf("get document analysis page: %w", err)
		}
		blocks = append(blocks, fromProviderBlocks(out.Blocks)...)
		next = out.NextToken
	}
	c.logger.Info("textract.poll.ok", "job_id", jobID, "blocks", len(blocks))
	return blocks, nil
}
