package scorer

import (
	"fmt"
	"strings"

	"github.com/shortlist-group/jobscout/internal/model"
)

// Factor caps for the fit score. They sum to 100.
const (
	maxOverlapScore      = 40
	maxTitleScore        = 20
	maxSeniorityScore    = 15
	maxIndustryScore     = 15
	maxAchievementScore  = 10
	titleFamilyScore     = 12
	titleFloorScore      = 4
	industryNeutralScore = 7
)

// ScoreFit computes the 0-100 candidate-job relevance score. Every factor
// emits a reason string; all reasons are retained for transparency.
func ScoreFit(profile model.ResumeProfile, prefs model.JobPreferences, job model.NormalizedJob) (int, []string) {
	jobText := job.Title + " " + job.Description
	var reasons []string
	score := 0

	overlap, reason := scoreOverlap(profile, jobText)
	score += overlap
	reasons = append(reasons, reason)

	title, reason := scoreTitle(prefs.PreferredTitles, job.Title)
	score += title
	reasons = append(reasons, reason)

	seniority, reason := scoreSeniority(profile, job.Title+" "+job.Description)
	score += seniority
	reasons = append(reasons, reason)

	industry, reason := scoreIndustry(prefs, jobText)
	score += industry
	reasons = append(reasons, reason)

	achievement, reason := scoreAchievements(profile, jobText)
	score += achievement
	reasons = append(reasons, reason)

	return clampScore(score), reasons
}

// scoreOverlap measures keyword/tool/skill token overlap between profile
// and job text, proportional to the share of profile tokens found.
func scoreOverlap(profile model.ResumeProfile, jobText string) (int, string) {
	var profileTerms []string
	profileTerms = append(profileTerms, profile.Skills...)
	profileTerms = append(profileTerms, profile.Tools...)
	profileTerms = append(profileTerms, profile.Keywords...)

	profileTokens := tokenize(strings.Join(profileTerms, " "))
	if len(profileTokens) == 0 {
		return 0, "no profile skills/tools/keywords to match"
	}

	jobTokens := tokenize(jobText)
	matched := 0
	for tok := range profileTokens {
		if jobTokens[tok] {
			matched++
		}
	}

	ratio := float64(matched) / float64(len(profileTokens))
	score := int(ratio*maxOverlapScore + 0.5)
	return score, fmt.Sprintf("keyword overlap: %d of %d profile terms found in posting", matched, len(profileTokens))
}

// scoreTitle compares the job title with preferred titles: an exact
// substring match scores highest, a role-family match second, anything
// else a low floor.
func scoreTitle(preferred []string, jobTitle string) (int, string) {
	if len(preferred) == 0 {
		return titleFloorScore, "no preferred titles set"
	}
	lowerTitle := strings.ToLower(jobTitle)

	for _, p := range preferred {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" && strings.Contains(lowerTitle, p) {
			return maxTitleScore, fmt.Sprintf("title matches preferred title %q", p)
		}
	}

	jobFamily := roleFamily(jobTitle)
	if jobFamily != "" {
		for _, p := range preferred {
			if roleFamily(p) == jobFamily {
				return titleFamilyScore, fmt.Sprintf("title in same role family (%s) as preferences", jobFamily)
			}
		}
	}

	return titleFloorScore, "title unrelated to preferred titles"
}

// seniorityAdjacency maps (candidate level, job level) distance to points.
// The table is asymmetric: stepping down one level reads better than
// stretching up one.
func scoreSeniority(profile model.ResumeProfile, jobText string) (int, string) {
	candidate := inferSeniority(profile.Seniority)
	if candidate == seniorityUnknown {
		candidate = inferSeniority(strings.Join(profile.Roles, " "))
	}
	job := inferSeniority(jobText)

	if candidate == seniorityUnknown || job == seniorityUnknown {
		return maxSeniorityScore / 2, "seniority indeterminate, neutral credit"
	}

	switch diff := candidate - job; {
	case diff == 0:
		return maxSeniorityScore, "seniority matches the posting"
	case diff == 1:
		return 12, "candidate one level above the posting"
	case diff == -1:
		return 8, "posting one level above the candidate"
	case diff == 2 || diff == -2:
		return 4, "seniority two levels apart"
	default:
		return 2, "seniority far from the posting"
	}
}

// scoreIndustry checks the preference lists against the job's free text.
// An avoid-list hit forces this factor to zero; a prefer-list hit scores
// full marks.
func scoreIndustry(prefs model.JobPreferences, jobText string) (int, string) {
	lower := strings.ToLower(jobText)

	for _, avoid := range prefs.IndustriesAvoid {
		if avoid = strings.ToLower(strings.TrimSpace(avoid)); avoid != "" && strings.Contains(lower, avoid) {
			return 0, fmt.Sprintf("avoided industry %q appears in posting", avoid)
		}
	}
	for _, prefer := range prefs.IndustriesPrefer {
		if prefer = strings.ToLower(strings.TrimSpace(prefer)); prefer != "" && strings.Contains(lower, prefer) {
			return maxIndustryScore, fmt.Sprintf("preferred industry %q appears in posting", prefer)
		}
	}
	return industryNeutralScore, "no industry preference signal either way"
}

// scoreAchievements credits quantified-achievement alignment: numeric,
// percentage, or dollar evidence present in both the posting and the
// candidate's achievements.
func scoreAchievements(profile model.ResumeProfile, jobText string) (int, string) {
	achievements := strings.Join(profile.Achievements, " ")
	if hasQuantifiedClaim(achievements) && hasQuantifiedClaim(jobText) {
		return maxAchievementScore, "quantified achievements align with a metrics-driven posting"
	}
	return 0, "no quantified-achievement alignment"
}
