package store

import (
	"context"

	"github.com/shortlist-group/jobscout/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status      model.RunStatus `json:"status,omitempty"`
	CandidateID string          `json:"candidate_id,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Offset      int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the discovery pipeline and
// QC engine. Job sources are append-only; scored jobs upsert by dedupe
// key; QC results append one row per evaluation.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, input model.PipelineInput) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, stats model.PipelineStats) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	GetLatestRunByCandidate(ctx context.Context, candidateID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Job sources (append-only audit records)
	AppendJobSources(ctx context.Context, runID string, records []model.JobSourceRecord) error

	// Scored jobs
	UpsertScoredJobs(ctx context.Context, runID string, jobs []model.ScoredJob) error
	ListJobsByRun(ctx context.Context, runID string) ([]model.ScoredJob, error)

	// QC results
	SaveQCResult(ctx context.Context, result model.QCResult) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
