package scorer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shortlist-group/jobscout/internal/ats"
	"github.com/shortlist-group/jobscout/internal/model"
)

// Ghost-risk penalty and discount weights.
const (
	penaltyUnknownATS    = 30
	penaltyEvergreen     = 25
	penaltyNoPostedDate  = 15
	penaltyRemoteUnknown = 10
	penaltyVague         = 10
	discountFresh        = 20
	discountConcrete     = 10
	discountRemoteKnown  = 10

	freshWindow = 14 * 24 * time.Hour
	vagueMinLen = 200
)

var evergreenPhrases = []string{
	"always hiring",
	"always looking for",
	"evergreen",
	"continuous hiring",
	"accepting applications on an ongoing basis",
	"talent pool",
	"talent community",
	"future opportunities",
	"pipeline for future",
}

var vaguePhrases = []string{
	"fast-paced environment",
	"wear many hats",
	"self-starter",
	"rockstar",
	"ninja",
	"guru",
	"competitive salary",
	"dynamic team",
	"other duties as assigned",
}

var concretePhrases = []string{
	"you will own",
	"deliverables",
	"roadmap",
	"okr", "kpi",
	"salesforce", "hubspot", "sql", "python", "tableau", "looker",
	"jira", "workday", "netsuite", "excel",
}

// ScoreGhost computes the 0-100 likelihood that a posting is stale or fake.
// Penalties accumulate first, then discounts apply; the result clamps at
// zero and never goes negative.
func ScoreGhost(job model.NormalizedJob, now time.Time) (int, []string) {
	var reasons []string
	score := 0
	lower := strings.ToLower(job.Title + " " + job.Description)

	knownATS := ats.Known(job.ATSType)
	if !knownATS {
		score += penaltyUnknownATS
		reasons = append(reasons, "source is not a recognized ATS platform")
	}

	if phrase := firstMatch(lower, evergreenPhrases); phrase != "" {
		score += penaltyEvergreen
		reasons = append(reasons, fmt.Sprintf("evergreen hiring language: %q", phrase))
	}

	if job.PostedAt == nil {
		score += penaltyNoPostedDate
		reasons = append(reasons, "no posted date on listing")
	}

	remoteExplicit := remoteStatusExplicit(job)
	if !remoteExplicit {
		score += penaltyRemoteUnknown
		reasons = append(reasons, "remote/onsite status cannot be determined")
	}

	if vagueHits(lower) >= 2 || len(job.Description) < vagueMinLen {
		score += penaltyVague
		reasons = append(reasons, "description is vague or very short")
	}

	// Discounts. The freshness discount requires a recognized ATS, so an
	// unknown-source job forgoes it on top of the unknown-ATS penalty.
	if knownATS && job.PostedAt != nil && now.Sub(*job.PostedAt) <= freshWindow {
		score -= discountFresh
		reasons = append(reasons, "posted within 14 days on a recognized ATS")
	}
	if firstMatch(lower, concretePhrases) != "" {
		score -= discountConcrete
		reasons = append(reasons, "concrete tools/deliverables language present")
	}
	if remoteExplicit {
		score -= discountRemoteKnown
		reasons = append(reasons, "remote/onsite status is explicit")
	}

	return clampScore(score), reasons
}

// remoteStatusExplicit reports whether location plus description pin the
// work mode down either way.
func remoteStatusExplicit(job model.NormalizedJob) bool {
	combined := strings.ToLower(job.Location + " " + job.Description)
	for _, term := range []string{"remote", "hybrid", "on-site", "onsite", "in-office", "in office", "work from home"} {
		if strings.Contains(combined, term) {
			return true
		}
	}
	// A concrete city/region in the location field also settles it.
	return strings.TrimSpace(job.Location) != ""
}

func firstMatch(text string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

func vagueHits(text string) int {
	hits := 0
	for _, p := range vaguePhrases {
		if strings.Contains(text, p) {
			hits++
		}
	}
	return hits
}

// RecommendPath applies the fixed apply-path decision table, evaluated
// top-to-bottom with first match winning.
func RecommendPath(fit, ghost int) model.ApplyPath {
	switch {
	case ghost >= 70:
		return model.ApplyPathReferral
	case fit >= 75 && ghost <= 35:
		return model.ApplyPathATS
	case ghost >= 50:
		return model.ApplyPathRecruiter
	default:
		return model.ApplyPathBoth
	}
}
