// Package handlers implements the HTTP surface: synchronous extraction,
// async job submission and polling, and credit balance lookups.
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taxmint/statements/internal/api/middleware"
	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/gcs"
	"github.com/taxmint/statements/internal/jobs"
	"github.com/taxmint/statements/internal/pipeline"
	"github.com/taxmint/statements/internal/quota"
)

// maxUploadBytes caps multipart uploads at 25 MiB.
const maxUploadBytes = 25 << 20

// ExtractHandler runs the pipeline synchronously for one uploaded document.
type ExtractHandler struct {
	extractor *pipeline.Extractor
	log       zerolog.Logger
}

func NewExtractHandler(extractor *pipeline.Extractor, log zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, log: log}
}

// Extract handles POST /api/extract. The request is multipart form data with
// a "document" file part and optional account context fields.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, filename, doc, ok := readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.extractor.Extract(ctx, raw, doc)
	if err != nil {
		writePipelineError(w, h.log, err)
		return
	}

	h.log.Info().
		Str("filename", filename).
		Str("account_id", doc.Account.AccountID).
		Int("candidates", len(result.Candidates)).
		Bool("used_ai", result.UsedAI).
		Msg("document extracted")

	middleware.WriteJSON(w, http.StatusOK, result)
}

// readUpload parses the multipart request into raw bytes and a document
// context. It writes the error response itself and returns ok=false on any
// client error.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, domain.DocumentContext, bool) {
	var zero domain.DocumentContext

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return nil, "", zero, false
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Missing 'document' file part")
		return nil, "", zero, false
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read upload")
		return nil, "", zero, false
	}
	if len(raw) > maxUploadBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
		return nil, "", zero, false
	}

	doc := domain.DocumentContext{
		Format: formatFor(r.FormValue("format"), header.Filename),
		Account: domain.AccountContext{
			AccountID:      r.FormValue("account_id"),
			EmploymentType: domain.EmploymentType(r.FormValue("employment_type")),
			AccountType:    domain.AccountType(r.FormValue("account_type")),
		},
	}
	if doc.Account.AccountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return nil, "", zero, false
	}
	if rulesJSON := r.FormValue("import_rules"); rulesJSON != "" {
		if err := json.Unmarshal([]byte(rulesJSON), &doc.Account.ImportRules); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid import_rules JSON")
			return nil, "", zero, false
		}
	}

	return raw, header.Filename, doc, true
}

// formatFor resolves the document format from the declared value, falling
// back to the file extension.
func formatFor(declared, filename string) domain.Format {
	switch strings.ToLower(strings.TrimSpace(declared)) {
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

	switch strings.ToLower(filepath.Ext(filename)) {
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

// writePipelineError maps pipeline failures to response codes.
func writePipelineError(w http.ResponseWriter, log zerolog.Logger, err error) {
	kind := pipeline.Classify(err)

	var status int
	switch kind {
	case pipeline.KindInsufficientCredits:
		status = http.StatusPaymentRequired
	case pipeline.KindUnparseableDocument, pipeline.KindNoTransactions:
		status = http.StatusUnprocessableEntity
	case pipeline.KindAllProvidersFailed, pipeline.KindMalformedOutput:
		status = http.StatusBadGateway
	case pipeline.KindRateLimited:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		log.Error().Err(err).Str("kind", string(kind)).Msg("extraction failed")
	} else {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("extraction rejected")
	}

	middleware.WriteErrorKind(w, status, string(kind), err.Error())
}

// AsyncExtractHandler stores the upload and enqueues an extraction job.
type AsyncExtractHandler struct {
	storage   gcs.Storage
	publisher jobs.Publisher
	log       zerolog.Logger
}

func NewAsyncExtractHandler(storage gcs.Storage, publisher jobs.Publisher, log zerolog.Logger) *AsyncExtractHandler {
	return &AsyncExtractHandler{storage: storage, publisher: publisher, log: log}
}

// Enqueue handles POST /api/extract/async.
func (h *AsyncExtractHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, filename, doc, ok := readUpload(w, r)
	if !ok {
		return
	}

	objectName := "uploads/" + time.Now().Format("2006/01/02") + "/" + uuid.New().String() + "-" + filepath.Base(filename)
	uri, err := h.storage.Store(ctx, objectName, bytes.NewReader(raw))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to store upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	job := &jobs.ExtractDocumentJob{
		SourceURI: uri,
		Format:    doc.Format,
		Account:   doc.Account,
	}
	if err := h.publisher.PublishExtractDocument(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("source_uri", uri).
		Msg("extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     job.JobID,
		"source_uri": uri,
		"status":     string(job.Status),
	})
}

// JobsHandler serves job status lookups for async extractions.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		AccountID: query.Get("account_id"),
		Status:    jobs.JobStatus(query.Get("status")),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// CreditsHandler serves credit balance lookups.
type CreditsHandler struct {
	store quota.Store
	log   zerolog.Logger
}

func NewCreditsHandler(store quota.Store, log zerolog.Logger) *CreditsHandler {
	return &CreditsHandler{store: store, log: log}
}

// GetBalance handles GET /api/credits/{accountID}.
func (h *CreditsHandler) GetBalance(w http.ResponseWriter, r *http.Request, accountID string) {
	bal, err := h.store.Balance(r.Context(), accountID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Account not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"credits":    bal,
	})
}
