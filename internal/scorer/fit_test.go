package scorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlist-group/jobscout/internal/model"
)

func testProfile() model.ResumeProfile {
	return model.ResumeProfile{
		Skills:       []string{"salesforce", "forecasting", "pipeline analytics"},
		Tools:        []string{"tableau", "sql"},
		Keywords:     []string{"revenue operations"},
		Seniority:    "senior",
		Achievements: []string{"Grew pipeline 40% year over year", "Cut reporting time by 12 hours"},
	}
}

func TestScoreFit_Bounds(t *testing.T) {
	profile := testProfile()
	prefs := model.JobPreferences{
		PreferredTitles:  []string{"revenue operations manager"},
		IndustriesPrefer: []string{"saas"},
	}

	strong := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title: "Senior Revenue Operations Manager",
			Description: "Own salesforce administration, forecasting, and pipeline analytics " +
				"for a saas business. Build tableau dashboards and sql reporting. " +
				"Target: improve win rate by 15%.",
		},
	}
	score, reasons := ScoreFit(profile, prefs, strong)
	assert.GreaterOrEqual(t, score, 80)
	assert.LessOrEqual(t, score, 100)
	// One reason per factor.
	assert.Len(t, reasons, 5)

	weak := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title:       "Line Cook",
			Description: "Prepare food.",
		},
	}
	score, _ = ScoreFit(profile, prefs, weak)
	assert.GreaterOrEqual(t, score, 0)
	assert.Less(t, score, 40)
}

func TestScoreFit_AvoidedIndustryZeroesFactor(t *testing.T) {
	prefs := model.JobPreferences{
		PreferredTitles: []string{"operations manager"},
		IndustriesAvoid: []string{"gambling"},
	}
	job := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title:       "Operations Manager",
			Description: "Operations role at a gambling company.",
		},
	}

	_, reasons := ScoreFit(testProfile(), prefs, job)
	joined := strings.Join(reasons, " | ")
	assert.Contains(t, joined, `avoided industry "gambling"`)
}

func TestScoreTitle(t *testing.T) {
	score, _ := scoreTitle([]string{"revenue operations manager"}, "Revenue Operations Manager (Remote)")
	assert.Equal(t, maxTitleScore, score)

	// Same role family, no substring match.
	score, _ = scoreTitle([]string{"sales director"}, "Account Executive")
	assert.Equal(t, titleFamilyScore, score)

	score, _ = scoreTitle([]string{"software engineer"}, "Pastry Chef")
	assert.Equal(t, titleFloorScore, score)

	score, _ = scoreTitle(nil, "Anything")
	assert.Equal(t, titleFloorScore, score)
}

func TestScoreSeniority(t *testing.T) {
	profile := model.ResumeProfile{Seniority: "senior"}

	score, _ := scoreSeniority(profile, "Senior Analyst role")
	assert.Equal(t, maxSeniorityScore, score)

	// Candidate one level above a mid-level posting.
	score, _ = scoreSeniority(profile, "Program Manager to support launches")
	assert.Equal(t, 12, score)

	// Posting one level above the candidate.
	score, _ = scoreSeniority(profile, "Lead of Operations")
	assert.Equal(t, 8, score)

	// Unknown candidate seniority gets neutral credit.
	score, reason := scoreSeniority(model.ResumeProfile{}, "Senior Analyst")
	assert.Equal(t, maxSeniorityScore/2, score)
	assert.Contains(t, reason, "neutral")
}

func TestScoreOverlap_NoProfileTerms(t *testing.T) {
	score, reason := scoreOverlap(model.ResumeProfile{}, "any job text")
	assert.Equal(t, 0, score)
	assert.Contains(t, reason, "no profile")
}

func TestScoreAchievements(t *testing.T) {
	profile := testProfile()

	score, _ := scoreAchievements(profile, "Improve retention by 20% this year")
	assert.Equal(t, maxAchievementScore, score)

	score, _ = scoreAchievements(profile, "Help the team succeed")
	assert.Equal(t, 0, score)

	noNumbers := model.ResumeProfile{Achievements: []string{"led many projects"}}
	score, _ = scoreAchievements(noNumbers, "Improve retention by 20%")
	assert.Equal(t, 0, score)
}

func TestScoreFit_ClampsAtHundred(t *testing.T) {
	// Factor caps sum to exactly 100, so a perfect job cannot exceed it.
	profile := testProfile()
	prefs := model.JobPreferences{
		PreferredTitles:  []string{"revenue operations manager"},
		IndustriesPrefer: []string{"saas"},
	}
	job := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title: "Senior Revenue Operations Manager",
			Description: "salesforce forecasting pipeline analytics tableau sql revenue operations " +
				"saas senior role, grow revenue 25%",
		},
	}
	score, _ := ScoreFit(profile, prefs, job)
	require.LessOrEqual(t, score, 100)
}
