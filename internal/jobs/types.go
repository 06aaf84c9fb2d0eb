// Package jobs defines asynchronous parse requests. A client that abandons a
// request (closed its dialog, navigated away) simply never collects the job's
// result; a late completion lands in the job store and touches nothing else.
package jobs

import (
	"context"
	"time"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ParseTextJob is one asynchronous parse request. Parse requests are never
// retried; a failure is terminal and carries the error text.
type ParseTextJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Text is the raw input handed to the parser.
	Text string `json:"text"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Draft holds the parse result once the job completed.
	Draft *domain.Draft `json:"draft,omitempty"`

	// Error contains the failure message for failed jobs.
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Publisher enqueues parse jobs.
type Publisher interface {
	// PublishParseText enqueues a parse job.
	PublishParseText(ctx context.Context, job *ParseTextJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer drains parse jobs.
type Consumer interface {
	// Start begins consuming jobs; the handler is called for each one.
	Start(ctx context.Context, handler Handler) error

	// Stop stops consuming and waits for in-flight jobs.
	Stop(ctx context.Context) error
}

// Handler processes a single job and returns the resulting draft.
type Handler func(ctx context.Context, job *ParseTextJob) (*domain.Draft, error)

// Store tracks job state so clients can poll for results.
type Store interface {
	SaveJob(ctx context.Context, job *ParseTextJob) error
	GetJob(ctx context.Context, jobID string) (*ParseTextJob, error)
	ListJobs(ctx context.Context, filter Filter) ([]*ParseTextJob, error)
}

// Filter narrows ListJobs results.
type Filter struct {
	Status Status
	Limit  int
}
