package model

import "time"

// ATSType identifies the applicant tracking system hosting a posting.
type ATSType string

const (
	ATSGreenhouse ATSType = "greenhouse"
	ATSLever      ATSType = "lever"
	ATSAshby      ATSType = "ashby"
	ATSWorkday    ATSType = "workday"
	ATSUnknown    ATSType = "unknown"
)

// ApplyPath is the recommended channel for applying to a posting.
type ApplyPath string

const (
	ApplyPathATS       ApplyPath = "ats"
	ApplyPathRecruiter ApplyPath = "recruiter"
	ApplyPathReferral  ApplyPath = "referral"
	ApplyPathBoth      ApplyPath = "both"
)

// DiscoveredURL is a candidate posting location before any validation.
type DiscoveredURL struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// ParsedJob is the raw extraction result from a platform parser.
// It is immutable once parsed.
type ParsedJob struct {
	Title       string     `json:"title"`
	CompanyName string     `json:"company_name"`
	Location    string     `json:"location"`
	IsRemote    bool       `json:"is_remote"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Description string     `json:"description"`
	ApplyURL    string     `json:"apply_url"`
	SourceURL   string     `json:"source_url"`
	ATSType     ATSType    `json:"ats_type"`
}

// NormalizedJob extends ParsedJob with canonical forms and the dedupe key.
// DedupeKey is a deterministic function of (normalized company, normalized
// title, canonical apply URL) — postings sharing the triple always collide.
type NormalizedJob struct {
	ParsedJob
	NormalizedCompany string `json:"normalized_company"`
	NormalizedTitle   string `json:"normalized_title"`
	CanonicalApplyURL string `json:"canonical_apply_url"`
	DedupeKey         string `json:"dedupe_key"`
}

// ScoredJob extends NormalizedJob with fit and ghost-risk assessments.
type ScoredJob struct {
	NormalizedJob
	FitScore             int       `json:"fit_score"`
	GhostRiskScore       int       `json:"ghost_risk_score"`
	ReasonsFit           []string  `json:"reasons_fit"`
	ReasonsGhost         []string  `json:"reasons_ghost"`
	RecommendedApplyPath ApplyPath `json:"recommended_apply_path"`
	ShortSummary         string    `json:"short_summary"`
}

// JobSourceRecord is an append-only audit record for a single fetch attempt.
// One record is written per attempted URL regardless of parse outcome.
type JobSourceRecord struct {
	URL        string    `json:"url"`
	ATSType    ATSType   `json:"ats_type"`
	HTTPStatus int       `json:"http_status"`
	FetchedAt  time.Time `json:"fetched_at"`
	RawHTML    string    `json:"raw_html,omitempty"`
	Error      string    `json:"error,omitempty"`
}
