// Package jobs defines the async extraction job model and the queue/store
// abstractions behind it. The in-memory implementations cover a single
// process; swap them for a broker-backed pair without touching callers.
package jobs

import (
	"context"
	"time"

	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/pipeline"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	JobTypeExtractDocument JobType = "extract_document"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ExtractDocumentJob is one queued document extraction. SourceURI points at
// the uploaded object (gs:// or a local path); the raw bytes never enter the
// queue.
type ExtractDocumentJob struct {
	JobID     string                `json:"job_id"`
	SourceURI string                `json:"source_uri"`
	Format    domain.Format         `json:"format"`
	Account   domain.AccountContext `json:"account"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Result is set once the job completed successfully.
	Result *pipeline.Result `json:"result,omitempty"`

	// Error holds the failure kind and message when Status is failed.
	Error     string             `json:"error,omitempty"`
	ErrorKind pipeline.ErrorKind `json:"error_kind,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ExtractDocumentJob) GetID() string        { return j.JobID }
func (j *ExtractDocumentJob) GetType() JobType     { return JobTypeExtractDocument }
func (j *ExtractDocumentJob) GetStatus() JobStatus { return j.Status }

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	PublishExtractDocument(ctx context.Context, job *ExtractDocumentJob) error
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue. The handler is called
	// for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the job for retry until
// MaxRetries is reached.
type JobHandler func(ctx context.Context, job Job) error

// JobStore stores and retrieves job state so clients can poll for results.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExtractDocumentJob) error
	GetJob(ctx context.Context, jobID string) (*ExtractDocumentJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractDocumentJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	AccountID string
	Status    JobStatus
	Limit     int
	Offset    int
}
