package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/taxmint/statements/internal/ai"
	"github.com/taxmint/statements/internal/api/handlers"
	"github.com/taxmint/statements/internal/api/middleware"
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

	ctx := context.Background()

	creditStore, cleanup, err := newCreditStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create credit store")
	}
	defer cleanup()

	orch := ai.NewOrchestrator(log, buildProviders(cfg)...)
	extractor := pipeline.NewExtractor(log, orch, creditStore)

	storage := gcs.NewClient(cfg.GCSBucket)
	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - async uploads will be disabled")
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, cfg.QueueWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting embedded job worker")
		if err := jobQueue.Start(workerCtx, extractJobHandler(log, extractor, storage)); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	extractHandler := handlers.NewExtractHandler(extractor, log)
	asyncHandler := handlers.NewAsyncExtractHandler(storage, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	creditsHandler := handlers.NewCreditsHandler(creditStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			extractHandler.Extract(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/extract/async", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			asyncHandler.Enqueue(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/api/credits/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		accountID := strings.TrimPrefix(r.URL.Path, "/api/credits/")
		if accountID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Account ID is required")
			return
		}
		creditsHandler.GetBalance(w, r, accountID)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// newCreditStore picks Postgres when DATABASE_URL is set, otherwise an
// in-memory store seeded for local development.
func newCreditStore(ctx context.Context, cfg *config.Config) (quota.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		return quota.NewMemoryStoreWithDefault(cfg.DefaultCredits), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return quota.NewPostgresStore(pool), pool.Close, nil
}

// buildProviders assembles the fallback chain from the configured API keys,
// in fixed priority order.
func buildProviders(cfg *config.Config) []ai.Provider {
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
	return providers
}

// extractJobHandler turns queued jobs into pipeline runs.
func extractJobHandler(log zerolog.Logger, extractor *pipeline.Extractor, storage gcs.Storage) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
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

		result, err := extractor.Extract(ctx, raw, domainContext(extractJob))
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
			Msg("Extraction job completed")
		return nil
	}
}

func domainContext(job *jobs.ExtractDocumentJob) domain.DocumentContext {
	return domain.DocumentContext{Format: job.Format, Account: job.Account}
}
