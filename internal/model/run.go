package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineInput is the pipeline's public input contract.
// TargetDescription is accepted and persisted with the run record but is
// not consulted by discovery or scoring; postings are always judged on
// their fetched text.
type PipelineInput struct {
	CandidateID       string         `json:"candidate_id"`
	Profile           ResumeProfile  `json:"resume_profile"`
	Preferences       JobPreferences `json:"preferences"`
	TargetJobURL      string         `json:"target_job_url,omitempty"`
	TargetDescription string         `json:"target_jd,omitempty"`
	MaxResults        int            `json:"max_results,omitempty"`
}

// PipelineStats counts work done at each pipeline stage.
type PipelineStats struct {
	URLsDiscovered int `json:"urls_discovered"`
	URLsFetched    int `json:"urls_fetched"`
	JobsParsed     int `json:"jobs_parsed"`
	JobsDeduped    int `json:"jobs_deduped"`
	JobsScored     int `json:"jobs_scored"`
}

// PipelineResult is the pipeline's public output contract.
type PipelineResult struct {
	RunID string        `json:"run_id"`
	Jobs  []ScoredJob   `json:"jobs"`
	Stats PipelineStats `json:"stats"`
}

// Run represents a single pipeline invocation. A run transitions
// running → completed|failed and is immutable after completion; QC re-runs
// attach new QCResult rows rather than mutating history.
type Run struct {
	ID          string         `json:"id"`
	CandidateID string         `json:"candidate_id"`
	Input       PipelineInput  `json:"input"`
	Status      RunStatus      `json:"status"`
	Stats       PipelineStats  `json:"stats"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
