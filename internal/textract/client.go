// Package textract wraps the provider's async document-analysis API behind a
// small client: start a job, poll it to completion with a bounded wall-clock
// timeout, and convert provider blocks to the internal block model.
package textract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/joseph-ayodele/docextract/internal/entity"
)

// AnalysisAPI is the subset of the provider API the client touches.
// Lets us stub the service in tests.
type AnalysisAPI interface {
	StartDocumentAnalysis(ctx context.Context, in *textract.StartDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error)
	GetDocumentAnalysis(ctx context.Context, in *textract.GetDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error)
}

type Config struct {
	PollInterval time.Duration // default 2s
	Timeout      time.Duration // wall-clock bound on polling, default 10m
}

type Client struct {
	api    AnalysisAPI
	cfg    Config
	logger *slog.Logger
}

func NewClient(api AnalysisAPI, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Client{api: api, cfg: cfg, logger: logger}
}

// StartAnalysis submits an async analysis of s3://bucket/key with all
// feature types and returns the provider job id.
func (c *Client) StartAnalysis(ctx context.Context, bucket, key string) (string, error) {
	out, err := c.api.StartDocumentAnalysis(ctx, &textract.StartDocumentAnalysisInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{Bucket: aws.String(bucket), Name: aws.String(key)},
		},
		FeatureTypes: []types.FeatureType{
			types.FeatureTypeForms,
			types.FeatureTypeTables,
			types.FeatureTypeLayout,
			types.FeatureTypeSignatures,
		},
	})
	if err != nil {
		c.logger.Error("textract.start.failed", "bucket", bucket, "key", key, "error", err)
		return "", fmt.Errorf("start document analysis: %w", err)
	}
	jobID := aws.ToString(out.JobId)
	c.logger.Info("textract.start.ok", "bucket", bucket, "key", key, "job_id", jobID)
	return jobID, nil
}

// Fetch runs the full remote path for an s3://bucket/key source: start the
// analysis, poll it, return converted blocks.
func (c *Client) Fetch(ctx context.Context, source string) ([]entity.Block, error) {
	bucket, key, err := ParseS3URI(source)
	if err != nil {
		return nil, err
	}
	jobID, err := c.StartAnalysis(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return c.PollAnalysis(ctx, jobID)
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 uri: %q", uri)
	}
	return bucket, key, nil
}
