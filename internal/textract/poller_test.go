package textract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/joseph-ayodele/docextract/constants"
)

// stubAPI scripts GetDocumentAnalysis responses in order.
type stubAPI struct {
	started   int
	responses []*textract.GetDocumentAnalysisOutput
	calls     int
}

func (s *stubAPI) StartDocumentAnalysis(context.Context, *textract.StartDocumentAnalysisInput, ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error) {
	s.started++
	return &textract.StartDocumentAnalysisOutput{JobId: aws.String("job-1")}, nil
}

func (s *stubAPI) GetDocumentAnalysis(context.Context, *textract.GetDocumentAnalysisInput, ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error) {
	if s.calls >= len(s.responses) {
		return s.responses[len(s.responses)-1], nil
	}
	out := s.responses[s.calls]
	s.calls++
	return out, nil
}

func fastCfg() Config {
	return Config{PollInterval: time.Millisecond, Timeout: 50 * time.Millisecond}
}

func wordBlock(id, text string) types.Block {
	return types.Block{
		Id:         aws.String(id),
		BlockType:  types.BlockTypeWord,
		Text:       aws.String(text),
		Confidence: aws.Float32(99),
		Page:       aws.Int32(1),
	}
}

func TestPollAnalysis_SucceedsAfterInProgress(t *testing.T) {
	api := &stubAPI{responses: []*textract.GetDocumentAnalysisOutput{
		{JobStatus: types.JobStatusInProgress},
		{JobStatus: types.JobStatusInProgress},
		{JobStatus: types.JobStatusSucceeded, Blocks: []types.Block{wordBlock("w1", "hello")}},
	}}
	c := NewClient(api, fastCfg(), nil)

	blocks, err := c.PollAnalysis(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 1 || blocks[0].ID != "w1" || blocks[0].Text != "hello" {
		t.Errorf("blocks = %+v", blocks)
	}
	if blocks[0].BlockType != constants.BlockTypeWord {
		t.Errorf("block type = %q", blocks[0].BlockType)
	}
}

func TestPollAnalysis_ConcatenatesPages(t *testing.T) {
	api := &stubAPI{responses: []*textract.GetDocumentAnalysisOutput{
		{JobStatus: types.JobStatusSucceeded, Blocks: []types.Block{wordBlock("w1", "a")}, NextToken: aws.String("t")},
		{JobStatus: types.JobStatusSucceeded, Blocks: []types.Block{wordBlock("w2", "b")}},
	}}
	c := NewClient(api, fastCfg(), nil)

	blocks, err := c.PollAnalysis(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 2 || blocks[0].ID != "w1" || blocks[1].ID != "w2" {
		t.Errorf("pagination not concatenated: %+v", blocks)
	}
}

func TestPollAnalysis_Timeout(t *testing.T) {
	api := &stubAPI{responses: []*textract.GetDocumentAnalysisOutput{
		{JobStatus: types.JobStatusInProgress},
	}}
	c := NewClient(api, Config{PollInterval: time.Millisecond, Timeout: 5 * time.Millisecond}, nil)

	_, err := c.PollAnalysis(context.Background(), "job-1")
	if !errors.Is(err, ErrJobTimeout) {
		t.Fatalf("err = %v, want ErrJobTimeout", err)
	}
}

func TestPollAnalysis_JobFailed(t *testing.T) {
	api := &stubAPI{responses: []*textract.GetDocumentAnalysisOutput{
		{JobStatus: types.JobStatusFailed, StatusMessage: aws.String("bad document")},
	}}
	c := NewClient(api, fastCfg(), nil)

	_, err := c.PollAnalysis(context.Background(), "job-1")
	if !errors.Is(err, ErrJobFailed) {
		t.Fatalf("err = %v, want ErrJobFailed", err)
	}
}

func TestPollAnalysis_ContextCancel(t *testing.T) {
	api := &stubAPI{responses: []*textract.GetDocumentAnalysisOutput{
		{JobStatus: types.JobStatusInProgress},
	}}
	c := NewClient(api, Config{PollInterval: time.Second, Timeout: time.Minute}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.PollAnalysis(ctx, "job-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFetch_StartsAndPolls(t *testing.T) {
	api := &stubAPI{responses: []*textract.GetDocumentAnalysisOutput{
		{JobStatus: types.JobStatusSucceeded, Blocks: []types.Block{wordBlock("w1", "x")}},
	}}
	c := NewClient(api, fastCfg(), nil)

	blocks, err := c.Fetch(context.Background(), "s3://bucket/path/doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.started != 1 || len(blocks) != 1 {
		t.Errorf("started=%d blocks=%d", api.started, len(blocks))
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri          string
		bucket, key  string
		wantErr      bool
	}{
		{"s3://docs/a/b.pdf", "docs", "a/b.pdf", false},
		{"s3://docs", "", "", true},
		{"http://docs/a.pdf", "", "", true},
		{"s3:///key", "", "", true},
	}
	for _, tt := range tests {
		bucket, key, err := ParseS3URI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseS3URI(%q) err = %v", tt.uri, err)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URI(%q) = %q/%q, want %q/%q", tt.uri, bucket, key, tt.bucket, tt.key)
		}
	}
}
