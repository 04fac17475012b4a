package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/docextract/internal/artifacts"
	"github.com/joseph-ayodele/docextract/internal/async"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/export"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	"github.com/joseph-ayodele/docextract/internal/pipeline"
	"github.com/joseph-ayodele/docextract/internal/repository"
	"github.com/joseph-ayodele/docextract/internal/server"
	"github.com/joseph-ayodele/docextract/internal/textract"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, nil)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	if err := db.Init(ctx); err != nil {
		log.Fatalf("init schema: %v", err)
	}
	if err := db.HealthCheck(ctx, 3*time.Second); err != nil {
		log.Fatalf("DB health failed: %v", err)
	}
	log.Infow("DB health OK")

	jobs := repository.NewJobRepository(db, nil)

	// Remote analysis client and optional artifact store
	var remote pipeline.BlockSource
	var store *artifacts.Store
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Textract.Region))
	if err != nil {
		log.Warnw("AWS config unavailable, s3 sources disabled", "err", err)
	} else {
		remote = textract.NewClient(awstextract.NewFromConfig(awsCfg), textract.Config{
			PollInterval: cfg.Textract.PollInterval,
			Timeout:      cfg.Textract.Timeout,
		}, nil)
		if cfg.Textract.ArtifactBucket != "" {
			store = artifacts.NewStore(s3.NewFromConfig(awsCfg), cfg.Textract.ArtifactBucket, nil)
		}
	}

	source := pipeline.SourceRouter{Remote: remote, Local: ingest.FileSource{}}
	proc := pipeline.NewProcessor(nil, jobs, source, store, cfg.Extraction.ConfidenceThreshold)

	queue := async.NewProcessorQueue(proc, slog.Default(),
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithProcessTimeout(cfg.Ingest.ProcessTimeout),
	)

	// Optional drop-directory watcher: new block dumps become jobs.
	if cfg.Ingest.WatchDir != "" {
		evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{cfg.Ingest.WatchDir},
			InitialScan: true,
			Debounce:    500 * time.Millisecond,
		})
		if err != nil {
			log.Fatalf("starting watcher: %v", err)
		}
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case path, ok := <-evCh:
					if !ok {
						return
					}
					job, err := jobs.Create(ctx, path, cfg.Extraction.ConfidenceThreshold)
					if err != nil {
						log.Warnw("creating job for watched file", "path", path, "err", err)
						continue
					}
					_ = queue.Enqueue(ctx, async.Job{JobID: job.ID, Source: path, SubmittedAt: time.Now()})
				case werr, ok := <-errCh:
					if ok && werr != nil {
						log.Warnw("watcher error", "err", werr)
					}
				}
			}
		}()
		log.Infow("watching for block dumps", "dir", cfg.Ingest.WatchDir)
	}

	// HTTP API
	health := func(ctx context.Context) error { return db.HealthCheck(ctx, 3*time.Second) }
	svc := server.NewAnalysisService(jobs, queue, export.NewService(jobs, nil), health, cfg.Extraction.ConfidenceThreshold, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("HTTP serving on %s", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http shutdown", "err", err)
	}
	queue.Shutdown(shutdownCtx)
	log.Info("stopped.")
}
