package model

import "time"

// QCFlag is a tagged validation finding. Kind is a stable machine-checkable
// code; Detail carries optional context such as counts or offending values.
type QCFlag struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// String renders the flag in the code:detail wire form used by fixtures
// and stored rows.
func (f QCFlag) String() string {
	if f.Detail == "" {
		return f.Kind
	}
	return f.Kind + ":" + f.Detail
}

// QC flag kinds.
const (
	FlagJobsInsufficient   = "jobs_insufficient"
	FlagJobURLMissing      = "job_url_missing"
	FlagJobURLInsecure     = "job_url_insecure"
	FlagJobURLAggregator   = "job_url_aggregator"
	FlagJobURLUnreachable  = "job_url_unreachable"
	FlagJobATSUnverified   = "job_ats_unverified"
	FlagJobLowFit          = "job_low_fit"
	FlagJobHighGhost       = "job_high_ghost"
	FlagResumeProfileShape = "resume_profile_invalid"
	FlagResumeClaim        = "resume_claim"
	FlagResumeMissing      = "resume_missing"
	FlagOutreachMissing    = "outreach_missing"
	FlagOutreachNoCadence  = "outreach_no_cadence"
	FlagCertsMissing       = "certs_missing"
	FlagKeywordsMissing    = "keywords_missing"
)

// Bundle is the full deliverable set validated by QC.
type Bundle struct {
	Jobs        []ScoredJob       `json:"jobs"`
	Profile     ResumeProfile     `json:"profile"`
	ResumeDraft string            `json:"resume_draft"`
	Outreach    string            `json:"outreach"`
	CertDrafts  []string          `json:"cert_drafts"`
	GapDrafts   []string          `json:"gap_drafts"`
	KeywordMap  map[string]string `json:"keyword_map"`
}

// QCResult is the outcome of one QC evaluation. One row is written per
// evaluation; repair re-runs append rather than overwrite.
type QCResult struct {
	OrderID            string      `json:"order_id"`
	TierID             string      `json:"tier_id"`
	ConfidenceJobs     float64     `json:"confidence_jobs"`
	ConfidenceResume   float64     `json:"confidence_resume"`
	ConfidenceOutreach float64     `json:"confidence_outreach"`
	ConfidenceCerts    float64     `json:"confidence_certs"`
	ConfidenceTotal    float64     `json:"confidence_total"`
	HardFail           bool        `json:"hard_fail"`
	Flags              []QCFlag    `json:"flags"`
	ValidJobs          []ScoredJob `json:"valid_jobs"`
	InvalidJobs        []ScoredJob `json:"invalid_jobs"`
	EvaluatedAt        time.Time   `json:"evaluated_at"`
}

// HasFlag reports whether any flag of the given kind is present.
func (r QCResult) HasFlag(kind string) bool {
	for _, f := range r.Flags {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// FlagsOf returns every flag of the given kind.
func (r QCResult) FlagsOf(kind string) []QCFlag {
	var out []QCFlag
	for _, f := range r.Flags {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Tier defines a priced service level: how many jobs are required, which
// deliverables are mandatory, and how strict QC is.
type Tier struct {
	ID               string  `json:"id" yaml:"id"`
	RequiredJobs     int     `json:"required_jobs" yaml:"required_jobs"`
	MinFitScore      int     `json:"min_fit_score" yaml:"min_fit_score"`
	MaxGhostScore    int     `json:"max_ghost_score" yaml:"max_ghost_score"`
	HumanReviewed    bool    `json:"human_reviewed" yaml:"human_reviewed"`
	RequiresResume   bool    `json:"requires_resume" yaml:"requires_resume"`
	RequiresOutreach bool    `json:"requires_outreach" yaml:"requires_outreach"`
	RequiresCadence  bool    `json:"requires_cadence" yaml:"requires_cadence"`
	RequiresCerts    bool    `json:"requires_certs" yaml:"requires_certs"`
	RequiresKeywords bool    `json:"requires_keywords" yaml:"requires_keywords"`
	AutoShipMin      float64 `json:"auto_ship_min" yaml:"auto_ship_min"`
}
