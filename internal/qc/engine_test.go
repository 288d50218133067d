package qc

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlist-group/jobscout/internal/model"
)

func fullProfile() model.ResumeProfile {
	return model.ResumeProfile{
		Skills:       []string{"salesforce"},
		Tools:        []string{"tableau"},
		Roles:        []string{"revenue operations manager"},
		Industries:   []string{"saas"},
		Keywords:     []string{},
		Locations:    []string{},
		Achievements: []string{"grew pipeline 40%"},
	}
}

func validJob(i int) model.ScoredJob {
	return model.ScoredJob{
		NormalizedJob: model.NormalizedJob{
			ParsedJob: model.ParsedJob{
				ApplyURL: fmt.Sprintf("https://boards.greenhouse.io/acme/jobs/%d", i),
				ATSType:  model.ATSGreenhouse,
			},
			DedupeKey: fmt.Sprintf("key-%d", i),
		},
		FitScore:       80,
		GhostRiskScore: 10,
	}
}

func baseTier() model.Tier {
	return model.Tier{
		ID:            "launch",
		RequiredJobs:  2,
		MinFitScore:   50,
		MaxGhostScore: 60,
		AutoShipMin:   0.82,
	}
}

func TestEvaluate_CleanBundlePasses(t *testing.T) {
	bundle := model.Bundle{
		Jobs:    []model.ScoredJob{validJob(1), validJob(2)},
		Profile: fullProfile(),
	}

	result := Evaluate(context.Background(), "order-1", bundle, baseTier(), nil)
	assert.False(t, result.HardFail)
	assert.Empty(t, result.Flags)
	assert.Len(t, result.ValidJobs, 2)
	assert.InDelta(t, 1.0, result.ConfidenceTotal, 1e-9)
	assert.Equal(t, "order-1", result.OrderID)
	assert.Equal(t, "launch", result.TierID)
}

func TestEvaluate_InsufficientJobsHardFails(t *testing.T) {
	tier := baseTier()
	tier.RequiredJobs = 10

	jobs := make([]model.ScoredJob, 0, 8)
	for i := 0; i < 8; i++ {
		jobs = append(jobs, validJob(i))
	}
	bundle := model.Bundle{Jobs: jobs, Profile: fullProfile()}

	result := Evaluate(context.Background(), "order-1", bundle, tier, nil)
	assert.True(t, result.HardFail)
	require.True(t, result.HasFlag(model.FlagJobsInsufficient))
	assert.Equal(t, "jobs_insufficient:8/10", result.FlagsOf(model.FlagJobsInsufficient)[0].String())
	assert.InDelta(t, 0.8, result.ConfidenceJobs, 1e-9)
	// 0.45*0.8 + 0.30 + 0.15 + 0.10
	assert.InDelta(t, 0.91, result.ConfidenceTotal, 1e-9)
}

func TestEvaluate_OverflowJobsAreDroppedNotInvalidated(t *testing.T) {
	tier := baseTier()
	tier.RequiredJobs = 1

	bundle := model.Bundle{
		Jobs:    []model.ScoredJob{validJob(1), validJob(2), validJob(3)},
		Profile: fullProfile(),
	}

	result := Evaluate(context.Background(), "order-1", bundle, tier, nil)
	assert.False(t, result.HardFail)
	assert.Len(t, result.ValidJobs, 1)
	// Jobs beyond the tier cap passed every check; they must not show up
	// in the invalid partition.
	assert.Empty(t, result.InvalidJobs)
	assert.InDelta(t, 1.0, result.ConfidenceJobs, 1e-9)
}

func TestCheckJob_FatalURLChecks(t *testing.T) {
	tier := baseTier()
	tier.RequiredJobs = 1

	tests := []struct {
		name     string
		mutate   func(*model.ScoredJob)
		wantFlag string
	}{
		{"missing url", func(j *model.ScoredJob) { j.ApplyURL = "" }, model.FlagJobURLMissing},
		{"plain http", func(j *model.ScoredJob) { j.ApplyURL = "http://boards.greenhouse.io/acme/jobs/1" }, model.FlagJobURLInsecure},
		{"aggregator", func(j *model.ScoredJob) { j.ApplyURL = "https://www.indeed.com/viewjob?jk=1" }, model.FlagJobURLAggregator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := validJob(1)
			tt.mutate(&job)
			bundle := model.Bundle{Jobs: []model.ScoredJob{job}, Profile: fullProfile()}

			result := Evaluate(context.Background(), "order-1", bundle, tier, nil)
			assert.True(t, result.HardFail)
			assert.True(t, result.HasFlag(tt.wantFlag), "want %s in %v", tt.wantFlag, result.Flags)
			assert.Empty(t, result.ValidJobs)
			assert.Len(t, result.InvalidJobs, 1)
		})
	}
}

func TestCheckJob_CanonicalURLWinsOverRaw(t *testing.T) {
	tier := baseTier()
	tier.RequiredJobs = 1

	job := validJob(1)
	job.ApplyURL = "http://insecure.example.com"
	job.CanonicalApplyURL = "https://boards.greenhouse.io/acme/jobs/1"
	bundle := model.Bundle{Jobs: []model.ScoredJob{job}, Profile: fullProfile()}

	result := Evaluate(context.Background(), "order-1", bundle, tier, nil)
	assert.False(t, result.HardFail)
	assert.Len(t, result.ValidJobs, 1)
}

func TestCheckJob_ProbeUnreachable(t *testing.T) {
	tier := baseTier()
	tier.RequiredJobs = 1
	probe := func(context.Context, string) bool { return false }

	bundle := model.Bundle{Jobs: []model.ScoredJob{validJob(1)}, Profile: fullProfile()}
	result := Evaluate(context.Background(), "order-1", bundle, tier, probe)
	assert.True(t, result.HardFail)
	assert.True(t, result.HasFlag(model.FlagJobURLUnreachable))
}

func TestCheckJob_UnverifiedATS(t *testing.T) {
	tier := baseTier()
	tier.RequiredJobs = 1

	job := validJob(1)
	job.ATSType = model.ATSUnknown
	job.GhostRiskScore = 40

	// Standard tier: flagged but kept, with the ghost score bumped.
	result := Evaluate(context.Background(), "order-1", model.Bundle{
		Jobs: []model.ScoredJob{job}, Profile: fullProfile(),
	}, tier, nil)
	assert.False(t, result.HardFail)
	assert.True(t, result.HasFlag(model.FlagJobATSUnverified))
	require.Len(t, result.ValidJobs, 1)
	assert.Equal(t, 55, result.ValidJobs[0].GhostRiskScore)

	// The bump can push the job over the tier's ghost ceiling.
	job.GhostRiskScore = 50
	result = Evaluate(context.Background(), "order-1", model.Bundle{
		Jobs: []model.ScoredJob{job}, Profile: fullProfile(),
	}, tier, nil)
	assert.True(t, result.HardFail)
	assert.True(t, result.HasFlag(model.FlagJobHighGhost))

	// Human-reviewed tier: unverified ATS is fatal outright.
	tier.HumanReviewed = true
	job.GhostRiskScore = 10
	result = Evaluate(context.Background(), "order-1", model.Bundle{
		Jobs: []model.ScoredJob{job}, Profile: fullProfile(),
	}, tier, nil)
	assert.True(t, result.HardFail)
	assert.Empty(t, result.ValidJobs)
}

func TestCheckJob_TierThresholds(t *testing.T) {
	tier := baseTier()
	tier.RequiredJobs = 1

	low := validJob(1)
	low.FitScore = 30
	result := Evaluate(context.Background(), "order-1", model.Bundle{
		Jobs: []model.ScoredJob{low}, Profile: fullProfile(),
	}, tier, nil)
	require.True(t, result.HasFlag(model.FlagJobLowFit))
	assert.Equal(t, "30<50", result.FlagsOf(model.FlagJobLowFit)[0].Detail)

	ghost := validJob(1)
	ghost.GhostRiskScore = 75
	result = Evaluate(context.Background(), "order-1", model.Bundle{
		Jobs: []model.ScoredJob{ghost}, Profile: fullProfile(),
	}, tier, nil)
	require.True(t, result.HasFlag(model.FlagJobHighGhost))
	assert.Equal(t, "75>60", result.FlagsOf(model.FlagJobHighGhost)[0].Detail)
}

func TestEvaluateResume_ProfileShape(t *testing.T) {
	profile := fullProfile()
	profile.Roles = nil

	result := Evaluate(context.Background(), "order-1", model.Bundle{
		Jobs: []model.ScoredJob{validJob(1), validJob(2)}, Profile: profile,
	}, baseTier(), nil)
	assert.True(t, result.HardFail)
	require.Len(t, result.FlagsOf(model.FlagResumeProfileShape), 1)
	assert.Equal(t, "roles", result.FlagsOf(model.FlagResumeProfileShape)[0].Detail)
	assert.Zero(t, result.ConfidenceResume)
}

func TestEvaluateResume_UnsupportedClaims(t *testing.T) {
	tier := baseTier()
	tier.RequiresResume = true

	bundle := model.Bundle{
		Jobs:    []model.ScoredJob{validJob(1), validJob(2)},
		Profile: fullProfile(),
		ResumeDraft: "Certified Salesforce administrator\n" + // backed by the salesforce skill
			"MBA from a top program\n" + // no supporting profile fact
			"Ran weekly forecast reviews\n",
	}

	result := Evaluate(context.Background(), "order-1", bundle, tier, nil)
	assert.True(t, result.HardFail)
	claims := result.FlagsOf(model.FlagResumeClaim)
	require.Len(t, claims, 1)
	assert.Equal(t, "MBA from a top program", claims[0].Detail)
	assert.InDelta(t, 0.8, result.ConfidenceResume, 1e-9)
}

func TestEvaluateResume_MissingDraft(t *testing.T) {
	tier := baseTier()
	tier.RequiresResume = true

	result := Evaluate(context.Background(), "order-1", model.Bundle{
		Jobs: []model.ScoredJob{validJob(1), validJob(2)}, Profile: fullProfile(),
	}, tier, nil)
	assert.True(t, result.HardFail)
	assert.True(t, result.HasFlag(model.FlagResumeMissing))
	assert.Zero(t, result.ConfidenceResume)
}

func TestEvaluateOutreach(t *testing.T) {
	tier := baseTier()
	tier.RequiresOutreach = true
	tier.RequiresCadence = true
	base := model.Bundle{Jobs: []model.ScoredJob{validJob(1), validJob(2)}, Profile: fullProfile()}

	missing := base
	result := Evaluate(context.Background(), "order-1", missing, tier, nil)
	assert.True(t, result.HasFlag(model.FlagOutreachMissing))
	assert.Zero(t, result.ConfidenceOutreach)

	noCadence := base
	noCadence.Outreach = "I admire your company and would love to connect."
	result = Evaluate(context.Background(), "order-1", noCadence, tier, nil)
	assert.True(t, result.HardFail)
	assert.True(t, result.HasFlag(model.FlagOutreachNoCadence))
	assert.InDelta(t, 0.5, result.ConfidenceOutreach, 1e-9)

	withCadence := base
	withCadence.Outreach = "Day 1: intro note. Follow up on day 4."
	result = Evaluate(context.Background(), "order-1", withCadence, tier, nil)
	assert.False(t, result.HasFlag(model.FlagOutreachNoCadence))
	assert.InDelta(t, 1.0, result.ConfidenceOutreach, 1e-9)
}

func TestEvaluateCerts(t *testing.T) {
	tier := baseTier()
	tier.RequiresCerts = true
	tier.RequiresKeywords = true
	base := model.Bundle{Jobs: []model.ScoredJob{validJob(1), validJob(2)}, Profile: fullProfile()}

	result := Evaluate(context.Background(), "order-1", base, tier, nil)
	assert.True(t, result.HardFail)
	assert.True(t, result.HasFlag(model.FlagCertsMissing))
	assert.True(t, result.HasFlag(model.FlagKeywordsMissing))
	assert.Zero(t, result.ConfidenceCerts)

	half := base
	half.CertDrafts = []string{"Salesforce Administrator path"}
	result = Evaluate(context.Background(), "order-1", half, tier, nil)
	assert.InDelta(t, 0.5, result.ConfidenceCerts, 1e-9)

	full := half
	full.KeywordMap = map[string]string{"revops": "RevOps"}
	result = Evaluate(context.Background(), "order-1", full, tier, nil)
	assert.InDelta(t, 1.0, result.ConfidenceCerts, 1e-9)
	assert.False(t, result.HasFlag(model.FlagCertsMissing))
}
