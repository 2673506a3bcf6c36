// The extract binary runs the pipeline once over a local file or gs:// URI
// and prints the candidates as JSON. Useful for debugging parser behavior on
// a single statement without standing up the API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/taxmint/statements/internal/ai"
	"github.com/taxmint/statements/internal/config"
	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/gcs"
	"github.com/taxmint/statements/internal/logger"
	"github.com/taxmint/statements/internal/pipeline"
	"github.com/taxmint/statements/internal/quota"
)

func main() {
	var (
		input      = flag.String("input", "", "Local file path or gs:// URI of the document")
		format     = flag.String("format", "", "Document format: pdf, xlsx, xls, csv, text (default: from extension)")
		accountID  = flag.String("account", "local", "Account ID for quota and context")
		employment = flag.String("employment", "", "Employment type: salaried, self-employed, business-owner")
		noAI       = flag.Bool("no-ai", false, "Disable the AI fallback; structural parsers only")
	)
	flag.Parse()

	log := logger.New()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil && !*noAI {
		log.Fatal().Err(err).Msg("Failed to load configuration (use -no-ai to run without provider keys)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	storage := gcs.NewClient("")
	raw, err := storage.Fetch(ctx, *input)
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("Failed to read document")
	}

	var providers []ai.Provider
	if !*noAI && cfg != nil {
		if cfg.GeminiAPIKey != "" {
			providers = append(providers, ai.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel))
		}
		if cfg.DeepSeekAPIKey != "" {
			providers = append(providers, ai.NewDeepSeek(cfg.DeepSeekAPIKey, cfg.DeepSeekModel))
		}
		if cfg.MistralAPIKey != "" {
			providers = append(providers, ai.NewMistral(cfg.MistralAPIKey, cfg.MistralModel))
		}
	}

	credits := quota.NewMemoryStoreWithDefault(1)
	extractor := pipeline.NewExtractor(log, ai.NewOrchestrator(log, providers...), credits)

	doc := domain.DocumentContext{
		Format: resolveFormat(*format, *input),
		Account: domain.AccountContext{
			AccountID:      *accountID,
			EmploymentType: domain.EmploymentType(*employment),
		},
	}

	result, err := extractor.Extract(ctx, raw, doc)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("kind", string(pipeline.Classify(err))).
			Msg("Extraction failed")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))

	log.Info().
		Int("candidates", len(result.Candidates)).
		Bool("used_ai", result.UsedAI).
		Msg("Extraction complete")
}

func resolveFormat(declared, input string) domain.Format {
	switch strings.ToLower(declared) {
	case "pdf":
		return domain.FormatPDF
	case "xlsx":
		return domain.FormatXLSX
	case "xls":
		return domain.FormatXLS
	case "csv":
		return domain.FormatCSV
	case "text", "txt":
		return domain.FormatText
	}

	switch strings.ToLower(filepath.Ext(input)) {
	case ".pdf":
		return domain.FormatPDF
	case ".xlsx":
		return domain.FormatXLSX
	case ".xls":
		return domain.FormatXLS
	case ".csv":
		return domain.FormatCSV
	default:
		return domain.FormatText
	}
}
