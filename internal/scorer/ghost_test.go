package scorer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shortlist-group/jobscout/internal/model"
)

// solidDescription is long enough and concrete-free enough to avoid the
// vagueness penalty without triggering the concrete-language discount.
const solidDescription = "We are hiring an operations manager to coordinate vendor " +
	"relationships, run the weekly planning meeting, and keep the logistics " +
	"calendar accurate. The role reports to the regional general manager and " +
	"partners closely with the warehouse and finance teams on scheduling."

func timePtr(t time.Time) *time.Time { return &t }

func TestScoreGhost_UnknownSourceNoDate(t *testing.T) {
	now := time.Now()
	job := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title:       "Operations Manager",
			Location:    "New York, NY",
			Description: solidDescription,
			ATSType:     model.ATSUnknown,
		},
	}

	score, reasons := ScoreGhost(job, now)
	// 30 (unknown source) + 15 (no date) - 10 (explicit location).
	assert.Equal(t, 35, score)
	joined := strings.Join(reasons, " | ")
	assert.Contains(t, joined, "not a recognized ATS")
	assert.Contains(t, joined, "no posted date")
}

func TestScoreGhost_FreshDiscountRequiresKnownATS(t *testing.T) {
	now := time.Now()
	posted := timePtr(now.Add(-3 * 24 * time.Hour))

	known := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title:       "Operations Manager",
			Location:    "Austin, TX",
			Description: solidDescription,
			PostedAt:    posted,
			ATSType:     model.ATSGreenhouse,
		},
	}
	score, reasons := ScoreGhost(known, now)
	assert.Equal(t, 0, score)
	assert.Contains(t, strings.Join(reasons, " | "), "posted within 14 days")

	unknown := known
	unknown.ATSType = model.ATSUnknown
	score, reasons = ScoreGhost(unknown, now)
	// The unknown source both adds its own penalty and forfeits the
	// freshness discount even though the date is recent.
	assert.Equal(t, 20, score)
	assert.NotContains(t, strings.Join(reasons, " | "), "posted within 14 days")
}

func TestScoreGhost_StaleDateGetsNoDiscount(t *testing.T) {
	now := time.Now()
	job := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title:       "Operations Manager",
			Location:    "Austin, TX",
			Description: solidDescription,
			PostedAt:    timePtr(now.Add(-45 * 24 * time.Hour)),
			ATSType:     model.ATSLever,
		},
	}
	score, _ := ScoreGhost(job, now)
	// No penalties apply, only the explicit-location discount; clamps at 0.
	assert.Equal(t, 0, score)
}

func TestScoreGhost_WorstCase(t *testing.T) {
	job := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title:       "Rockstar Self-Starter",
			Description: "Join our talent community. Competitive salary.",
			ATSType:     model.ATSUnknown,
		},
	}

	score, reasons := ScoreGhost(job, time.Now())
	// 30 + 25 (evergreen) + 15 (no date) + 10 (remote unknown) + 10 (vague).
	assert.Equal(t, 90, score)
	assert.Len(t, reasons, 5)
}

func TestScoreGhost_ConcreteLanguageDiscount(t *testing.T) {
	now := time.Now()
	base := model.NormalizedJob{
		ParsedJob: model.ParsedJob{
			Title:       "Operations Manager",
			Location:    "Chicago, IL",
			Description: solidDescription,
			ATSType:     model.ATSAshby,
		},
	}
	concrete := base
	concrete.Description = solidDescription + " You will own the quarterly roadmap."

	baseScore, _ := ScoreGhost(base, now)
	concreteScore, reasons := ScoreGhost(concrete, now)
	assert.LessOrEqual(t, concreteScore, baseScore)
	assert.Contains(t, strings.Join(reasons, " | "), "concrete tools/deliverables")
}

func TestRemoteStatusExplicit(t *testing.T) {
	assert.True(t, remoteStatusExplicit(model.NormalizedJob{
		ParsedJob: model.ParsedJob{Location: "Denver, CO"},
	}))
	assert.True(t, remoteStatusExplicit(model.NormalizedJob{
		ParsedJob: model.ParsedJob{Description: "This role is fully remote."},
	}))
	assert.True(t, remoteStatusExplicit(model.NormalizedJob{
		ParsedJob: model.ParsedJob{Description: "Hybrid schedule, three days in office."},
	}))
	assert.False(t, remoteStatusExplicit(model.NormalizedJob{
		ParsedJob: model.ParsedJob{Description: "Join a great team."},
	}))
}

func TestRecommendPath(t *testing.T) {
	tests := []struct {
		fit, ghost int
		want       model.ApplyPath
	}{
		{50, 70, model.ApplyPathReferral},
		{90, 85, model.ApplyPathReferral}, // high ghost wins over high fit
		{80, 30, model.ApplyPathATS},
		{75, 35, model.ApplyPathATS},
		{60, 55, model.ApplyPathRecruiter},
		{80, 50, model.ApplyPathRecruiter}, // fit high but ghost above ATS cutoff
		{80, 40, model.ApplyPathBoth},
		{40, 20, model.ApplyPathBoth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendPath(tt.fit, tt.ghost),
			"fit=%d ghost=%d", tt.fit, tt.ghost)
	}
}
