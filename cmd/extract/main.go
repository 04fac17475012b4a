package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"

	"github.com/joseph-ayodele/docextract/internal/analyze"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/export"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	"github.com/joseph-ayodele/docextract/internal/textract"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		input     = flag.String("in", "", "block dump JSON file, or an s3://bucket/key document with -remote")
		remote    = flag.Bool("remote", false, "treat -in as an s3 uri and run the provider analysis")
		source    = flag.String("source", "", "source label for the report (defaults to -in)")
		threshold = flag.Float64("threshold", -1, "signature confidence threshold in [0,1]; negative uses the default")
		out       = flag.String("out", "", "write the report JSON here instead of stdout")
		xlsx      = flag.String("xlsx", "", "also write an XLSX rendering of the report")
		validate  = flag.Bool("validate", false, "check the report against its JSON schema before writing")
	)
	flag.Parse()

	if *input == "" {
		logger.Error("usage", "cmd", "extract -in blocks.json [-remote] [-source label] [-threshold 0.85] [-out report.json] [-xlsx report.xlsx]")
		os.Exit(2)
	}
	if *threshold > 1 {
		logger.Error("threshold must be in [0,1]", "threshold", *threshold)
		os.Exit(2)
	}
	var thresholdOpt *float64
	if *threshold >= 0 {
		thresholdOpt = threshold
	}
	label := *source
	if label == "" {
		label = *input
	}

	start := time.Now()
	blocks, err := loadBlocks(*input, *remote, logger)
	if err != nil {
		logger.Error("loading blocks", "source", *input, "error", err)
		os.Exit(1)
	}

	report := analyze.BuildReport(blocks, analyze.Options{Source: label, Threshold: thresholdOpt})
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("encoding report", "error", err)
		os.Exit(1)
	}

	if *validate {
		if err := analyze.ValidateReportJSON(raw); err != nil {
			logger.Error("report failed schema validation", "error", err)
			os.Exit(1)
		}
	}

	if *out != "" {
		if err := os.WriteFile(*out, raw, 0o644); err != nil {
			logger.Error("writing report", "path", *out, "error", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(string(raw))
	}

	if *xlsx != "" {
		wb, err := export.RenderReportXLSX(report)
		if err != nil {
			logger.Error("rendering workbook", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsx, wb, 0o644); err != nil {
			logger.Error("writing workbook", "path", *xlsx, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("extraction OK",
		"source", label,
		"blocks", len(blocks),
		"key_values", report.Summary.KeyValueCount,
		"tables", report.Summary.TableCount,
		"signatures", report.Summary.SignatureCount,
		"needs_review", report.HumanReview.Required,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func loadBlocks(in string, remote bool, logger *slog.Logger) ([]entity.Block, error) {
	if !remote {
		return ingest.DecodeBlocksFile(in)
	}

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Textract.Timeout+time.Minute)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Textract.Region))
	if err != nil {
		return nil, err
	}
	client := textract.NewClient(awstextract.NewFromConfig(awsCfg), textract.Config{
		PollInterval: cfg.Textract.PollInterval,
		Timeout:      cfg.Textract.Timeout,
	}, logger)
	return client.Fetch(ctx, in)
}
