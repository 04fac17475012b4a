// Package artifacts persists extraction reports as JSON objects in S3,
// mirroring where the analyzed documents live.
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joseph-ayodele/docextract/internal/entity"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	api    S3API
	bucket string
	logger *slog.Logger
}

func NewStore(api S3API, bucket string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: api, bucket: bucket, logger: logger}
}

// PutReport uploads the report JSON under key and returns the object uri.
func (s *Store) PutReport(ctx context.Context, key string, report entity.ExtractionReport) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error("artifacts.put.failed", "bucket", s.bucket, "key", key, "error", err)
		return "", fmt.Errorf("put report: %w", err)
	}
	uri := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Info("artifacts.put.ok", "uri", uri, "bytes", len(body))
	return uri, nil
}

// DefaultReportKey derives the output key for a source object key:
// textract_output/<base>_extracted.json
func DefaultReportKey(sourceKey string) string {
	base := path.Base(sourceKey)
	base = strings.TrimSuffix(base, path.Ext(base))
	return "textract_output/" + base + "_extracted.json"
}
