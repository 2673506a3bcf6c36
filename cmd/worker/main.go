// The worker binary consumes extraction jobs without serving HTTP. It runs
// the same in-process queue as the API; deployments that need cross-process
// queues should swap the inmemory pair for a broker-backed one.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taxmint/statements/internal/ai"
	"github.com/taxmint/statements/internal/config"
	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/gcs"
	"github.com/taxmint/statements/internal/jobs"
	"github.com/taxmint/statements/internal/jobs/inmemory"
	"github.com/taxmint/statements/internal/logger"
	"github.com/taxmint/statements/internal/pipeline"
	"github.com/taxmint/statements/internal/quota"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var creditStore quota.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to postgres")
		}
		defer pool.Close()
		creditStore = quota.NewPostgresStore(pool)
	} else {
		creditStore = quota.NewMemoryStoreWithDefault(cfg.DefaultCredits)
	}

	var providers []ai.Provider
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, ai.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if cfg.DeepSeekAPIKey != "" {
		providers = append(providers, ai.NewDeepSeek(cfg.DeepSeekAPIKey, cfg.DeepSeekModel))
	}
	if cfg.MistralAPIKey != "" {
		providers = append(providers, ai.NewMistral(cfg.MistralAPIKey, cfg.MistralModel))
	}

	orch := ai.NewOrchestrator(log, providers...)
	extractor := pipeline.NewExtractor(log, orch, creditStore)
	storage := gcs.NewClient(cfg.GCSBucket)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, cfg.QueueWorkers, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
		extractJob, ok := job.(*jobs.ExtractDocumentJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", extractJob.JobID).
			Str("source_uri", extractJob.SourceURI).
			Msg("Processing extraction job")

		raw, err := storage.Fetch(ctx, extractJob.SourceURI)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", extractJob.SourceURI, err)
		}

		doc := domain.DocumentContext{Format: extractJob.Format, Account: extractJob.Account}
		result, err := extractor.Extract(ctx, raw, doc)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", extractJob.JobID).
				Msg("Extraction job failed")
			return err
		}

		extractJob.Result = result
		log.Info().
			Str("job_id", extractJob.JobID).
			Int("candidates", len(result.Candidates)).
			Bool("used_ai", result.UsedAI).
			Msg("Extraction job completed")
		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
