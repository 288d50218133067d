// Package qc validates deliverable bundles against tier rules and produces
// the confidence signal driving auto-ship and repair decisions.
package qc

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shortlist-group/jobscout/internal/ats"
	"github.com/shortlist-group/jobscout/internal/model"
)

// ProbeFunc checks URL reachability. A nil probe skips the check; probes
// are best-effort and must never block past their own deadline.
type ProbeFunc func(ctx context.Context, rawURL string) bool

// ghostUnverifiedPenalty is added to a job's ghost score when its ATS is
// unrecognized on a tier that does not treat that as fatal.
const ghostUnverifiedPenalty = 15

// credentialTerms mark resume lines that assert a verifiable credential.
// Each such line must be backed by a profile fact.
var credentialTerms = []string{
	"bachelor", "master", "certified", "certification",
	"cpa", "pmp", "mba", "phd", "licensed",
}

// cadenceTerms are the signals QC accepts as outreach cadence language.
var cadenceTerms = []string{
	"cadence", "day 1", "day one", "follow up", "follow-up", "sequence", "week",
}

// Evaluate validates one bundle against a tier. It is deterministic apart
// from the reachability probe and writes nothing; persistence is the
// caller's job. Category confidences blend into confidence_total at fixed
// weights: jobs 45%, resume 30%, outreach 15%, certs 10%.
func Evaluate(ctx context.Context, orderID string, bundle model.Bundle, tier model.Tier, probe ProbeFunc) model.QCResult {
	result := model.QCResult{
		OrderID:     orderID,
		TierID:      tier.ID,
		EvaluatedAt: time.Now().UTC(),
	}

	result.ConfidenceJobs = evaluateJobs(ctx, &result, bundle.Jobs, tier, probe)
	result.ConfidenceResume = evaluateResume(&result, bundle, tier)
	result.ConfidenceOutreach = evaluateOutreach(&result, bundle, tier)
	result.ConfidenceCerts = evaluateCerts(&result, bundle, tier)

	result.ConfidenceTotal = 0.45*result.ConfidenceJobs +
		0.30*result.ConfidenceResume +
		0.15*result.ConfidenceOutreach +
		0.10*result.ConfidenceCerts

	zap.L().Info("qc: evaluated bundle",
		zap.String("order_id", orderID),
		zap.String("tier", tier.ID),
		zap.Float64("confidence_total", result.ConfidenceTotal),
		zap.Bool("hard_fail", result.HardFail),
		zap.Int("flags", len(result.Flags)),
	)
	return result
}

// evaluateJobs partitions jobs into valid and invalid and returns the jobs
// sub-confidence. A job is invalid on any fatal URL check, on tier
// fit/ghost threshold violations, or on an unrecognized ATS when the tier
// is human-reviewed.
func evaluateJobs(ctx context.Context, result *model.QCResult, jobs []model.ScoredJob, tier model.Tier, probe ProbeFunc) float64 {
	for _, job := range jobs {
		job, fatal := checkJob(ctx, result, job, tier, probe)
		if fatal {
			result.InvalidJobs = append(result.InvalidJobs, job)
			continue
		}
		result.ValidJobs = append(result.ValidJobs, job)
	}

	// Overflow beyond the tier cap is dropped, not reclassified: the
	// invalid partition only holds jobs that failed a check.
	if len(result.ValidJobs) > tier.RequiredJobs {
		result.ValidJobs = result.ValidJobs[:tier.RequiredJobs]
	}

	valid := len(result.ValidJobs)
	if valid < tier.RequiredJobs {
		result.Flags = append(result.Flags, model.QCFlag{
			Kind:   model.FlagJobsInsufficient,
			Detail: fmt.Sprintf("%d/%d", valid, tier.RequiredJobs),
		})
		result.HardFail = true
	}

	if tier.RequiredJobs == 0 {
		return 1
	}
	conf := float64(valid) / float64(tier.RequiredJobs)
	if conf > 1 {
		conf = 1
	}
	return conf
}

// checkJob runs the per-job checks. The returned job may carry an adjusted
// ghost score for a non-fatal unverified ATS.
func checkJob(ctx context.Context, result *model.QCResult, job model.ScoredJob, tier model.Tier, probe ProbeFunc) (model.ScoredJob, bool) {
	applyURL := job.CanonicalApplyURL
	if applyURL == "" {
		applyURL = job.ApplyURL
	}

	if applyURL == "" {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagJobURLMissing, Detail: job.DedupeKey})
		return job, true
	}
	if u, err := url.Parse(applyURL); err != nil || u.Scheme != "https" {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagJobURLInsecure, Detail: applyURL})
		return job, true
	}
	if ats.IsAggregator(applyURL) {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagJobURLAggregator, Detail: applyURL})
		return job, true
	}
	if probe != nil && !probe(ctx, applyURL) {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagJobURLUnreachable, Detail: applyURL})
		return job, true
	}

	if !ats.Known(job.ATSType) {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagJobATSUnverified, Detail: applyURL})
		if tier.HumanReviewed {
			return job, true
		}
		job.GhostRiskScore += ghostUnverifiedPenalty
		if job.GhostRiskScore > 100 {
			job.GhostRiskScore = 100
		}
	}

	if job.FitScore < tier.MinFitScore {
		result.Flags = append(result.Flags, model.QCFlag{
			Kind:   model.FlagJobLowFit,
			Detail: fmt.Sprintf("%d<%d", job.FitScore, tier.MinFitScore),
		})
		return job, true
	}
	if job.GhostRiskScore > tier.MaxGhostScore {
		result.Flags = append(result.Flags, model.QCFlag{
			Kind:   model.FlagJobHighGhost,
			Detail: fmt.Sprintf("%d>%d", job.GhostRiskScore, tier.MaxGhostScore),
		})
		return job, true
	}

	return job, false
}

// evaluateResume checks the profile shape and the resume draft's credential
// claims. Shape violations and unsupported claims on resume-requiring tiers
// are hard failures.
func evaluateResume(result *model.QCResult, bundle model.Bundle, tier model.Tier) float64 {
	shapeValid := true
	for name, values := range bundle.Profile.ListFields() {
		if values == nil {
			result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagResumeProfileShape, Detail: name})
			shapeValid = false
		}
	}
	if !shapeValid {
		result.HardFail = true
		return 0
	}

	if tier.RequiresResume && strings.TrimSpace(bundle.ResumeDraft) == "" {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagResumeMissing})
		result.HardFail = true
		return 0
	}

	claims := unsupportedClaims(bundle.ResumeDraft, bundle.Profile)
	for _, claim := range claims {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagResumeClaim, Detail: claim})
	}
	if len(claims) > 0 && tier.RequiresResume {
		result.HardFail = true
	}

	conf := 1.0 - 0.2*float64(len(claims))
	if conf < 0 {
		conf = 0
	}
	return conf
}

// unsupportedClaims returns each resume-draft line asserting a credential
// that no profile fact backs up.
func unsupportedClaims(draft string, profile model.ResumeProfile) []string {
	var facts []string
	for _, values := range profile.ListFields() {
		for _, v := range values {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				facts = append(facts, v)
			}
		}
	}

	var claims []string
	for _, line := range strings.Split(draft, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if trimmed == "" || !containsAny(lower, credentialTerms) {
			continue
		}
		supported := false
		for _, fact := range facts {
			if strings.Contains(lower, fact) {
				supported = true
				break
			}
		}
		if !supported {
			claims = append(claims, truncateDetail(trimmed, 80))
		}
	}
	return claims
}

func evaluateOutreach(result *model.QCResult, bundle model.Bundle, tier model.Tier) float64 {
	if !tier.RequiresOutreach {
		return 1
	}
	if strings.TrimSpace(bundle.Outreach) == "" {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagOutreachMissing})
		result.HardFail = true
		return 0
	}
	if tier.RequiresCadence && !containsAny(strings.ToLower(bundle.Outreach), cadenceTerms) {
		result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagOutreachNoCadence})
		result.HardFail = true
		return 0.5
	}
	return 1
}

func evaluateCerts(result *model.QCResult, bundle model.Bundle, tier model.Tier) float64 {
	checks, passed := 0, 0
	if tier.RequiresCerts {
		checks++
		if len(bundle.CertDrafts) > 0 || len(bundle.GapDrafts) > 0 {
			passed++
		} else {
			result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagCertsMissing})
			result.HardFail = true
		}
	}
	if tier.RequiresKeywords {
		checks++
		if len(bundle.KeywordMap) > 0 {
			passed++
		} else {
			result.Flags = append(result.Flags, model.QCFlag{Kind: model.FlagKeywordsMissing})
			result.HardFail = true
		}
	}
	if checks == 0 {
		return 1
	}
	return float64(passed) / float64(checks)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func truncateDetail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
