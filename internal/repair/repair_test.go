package repair

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlist-group/jobscout/internal/model"
	"github.com/shortlist-group/jobscout/internal/store"
)

// recordingStore satisfies store.Store; only SaveQCResult matters here.
type recordingStore struct {
	store.Store
	saved   []model.QCResult
	saveErr error
}

func (s *recordingStore) SaveQCResult(_ context.Context, result model.QCResult) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, result)
	return nil
}

type fakePipeline struct {
	result *model.PipelineResult
	err    error
	inputs []model.PipelineInput
}

func (p *fakePipeline) Run(_ context.Context, input model.PipelineInput) (*model.PipelineResult, error) {
	p.inputs = append(p.inputs, input)
	return p.result, p.err
}

type erroringGenerators struct {
	LocalGenerators
	outreachErr error
}

func (g erroringGenerators) RegenerateOutreach(ctx context.Context, input model.PipelineInput) (string, error) {
	if g.outreachErr != nil {
		return "", g.outreachErr
	}
	return g.LocalGenerators.RegenerateOutreach(ctx, input)
}

func repairProfile() model.ResumeProfile {
	return model.ResumeProfile{
		Skills:       []string{"salesforce"},
		Tools:        []string{},
		Roles:        []string{},
		Industries:   []string{},
		Keywords:     []string{"revops"},
		Locations:    []string{},
		Achievements: []string{},
	}
}

func repairJob(i int) model.ScoredJob {
	return model.ScoredJob{
		NormalizedJob: model.NormalizedJob{
			ParsedJob: model.ParsedJob{
				ApplyURL: "https://boards.greenhouse.io/acme/jobs/1",
				ATSType:  model.ATSGreenhouse,
			},
			DedupeKey: "key",
		},
		FitScore:       80,
		GhostRiskScore: 10,
	}
}

func repairTier() model.Tier {
	return model.Tier{
		ID:            "launch",
		RequiredJobs:  1,
		MinFitScore:   50,
		MaxGhostScore: 60,
		AutoShipMin:   0.82,
	}
}

func TestLoop_CleanBundleNeedsNoRepair(t *testing.T) {
	st := &recordingStore{}
	bundle := model.Bundle{Jobs: []model.ScoredJob{repairJob(1)}, Profile: repairProfile()}

	outcome, err := Loop(context.Background(), Deps{Store: st}, "order-1", bundle, repairTier(), model.PipelineInput{})
	require.NoError(t, err)
	assert.Zero(t, outcome.Attempts)
	assert.False(t, outcome.Result.HardFail)
	assert.Len(t, st.saved, 1)
}

func TestLoop_NonConvergingBundleExhaustsAttempts(t *testing.T) {
	st := &recordingStore{}
	tier := repairTier()
	tier.RequiresOutreach = true
	// No outreach and no generators: the flag has no remedy, so the loop
	// burns its full budget and reports the failure honestly.
	bundle := model.Bundle{Jobs: []model.ScoredJob{repairJob(1)}, Profile: repairProfile()}

	outcome, err := Loop(context.Background(), Deps{Store: st, MaxAttempts: 2}, "order-1", bundle, tier, model.PipelineInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Attempts)
	assert.True(t, outcome.Result.HardFail)
	// Initial evaluation plus one per attempt.
	assert.Len(t, st.saved, 3)
}

func TestLoop_RegeneratesOutreach(t *testing.T) {
	st := &recordingStore{}
	tier := repairTier()
	tier.RequiresOutreach = true
	tier.RequiresCadence = true
	bundle := model.Bundle{Jobs: []model.ScoredJob{repairJob(1)}, Profile: repairProfile()}

	outcome, err := Loop(context.Background(), Deps{
		Store:      st,
		Generators: LocalGenerators{},
	}, "order-1", bundle, tier, model.PipelineInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Attempts)
	assert.False(t, outcome.Result.HardFail)
	assert.Contains(t, outcome.Bundle.Outreach, "Day 1")
	assert.Len(t, st.saved, 2)
}

func TestLoop_StripsUnsupportedClaims(t *testing.T) {
	st := &recordingStore{}
	tier := repairTier()
	tier.RequiresResume = true
	bundle := model.Bundle{
		Jobs:    []model.ScoredJob{repairJob(1)},
		Profile: repairProfile(),
		ResumeDraft: "Salesforce administration across two orgs\n" +
			"PMP certified project lead\n",
	}

	outcome, err := Loop(context.Background(), Deps{
		Store:      st,
		Generators: LocalGenerators{},
	}, "order-1", bundle, tier, model.PipelineInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Attempts)
	assert.False(t, outcome.Result.HardFail)
	assert.NotContains(t, outcome.Bundle.ResumeDraft, "PMP")
	assert.Contains(t, outcome.Bundle.ResumeDraft, "Salesforce administration")
}

func TestLoop_RerunsPipelineForJobFlags(t *testing.T) {
	st := &recordingStore{}
	pipe := &fakePipeline{result: &model.PipelineResult{
		Jobs: []model.ScoredJob{repairJob(1)},
	}}
	tier := repairTier()
	bundle := model.Bundle{Profile: repairProfile()} // no jobs at all

	outcome, err := Loop(context.Background(), Deps{
		Store:    st,
		Pipeline: pipe,
	}, "order-1", bundle, tier, model.PipelineInput{CandidateID: "cand-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Attempts)
	assert.False(t, outcome.Result.HardFail)
	require.Len(t, pipe.inputs, 1)
	assert.Equal(t, "cand-1", pipe.inputs[0].CandidateID)
	// Rerun asks for twice the tier's requirement to leave QC headroom.
	assert.Equal(t, 2*tier.RequiredJobs, pipe.inputs[0].MaxResults)
	assert.Len(t, outcome.Bundle.Jobs, 1)
}

func TestLoop_GeneratorErrorAborts(t *testing.T) {
	st := &recordingStore{}
	tier := repairTier()
	tier.RequiresOutreach = true
	bundle := model.Bundle{Jobs: []model.ScoredJob{repairJob(1)}, Profile: repairProfile()}

	_, err := Loop(context.Background(), Deps{
		Store:      st,
		Generators: erroringGenerators{outreachErr: eris.New("generator offline")},
	}, "order-1", bundle, tier, model.PipelineInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regenerate outreach")
}

func TestLoop_SaveFailureIsFatal(t *testing.T) {
	st := &recordingStore{saveErr: eris.New("db down")}
	bundle := model.Bundle{Jobs: []model.ScoredJob{repairJob(1)}, Profile: repairProfile()}

	_, err := Loop(context.Background(), Deps{Store: st}, "order-1", bundle, repairTier(), model.PipelineInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save qc result")
}

func TestRewriteResume_KeepsUnflaggedLines(t *testing.T) {
	draft := "Line one\nMBA claim here\nLine three"
	out, err := LocalGenerators{}.RewriteResume(context.Background(), draft, []string{"MBA claim here"})
	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine three", out)
}

func TestRegenerateCerts_DerivesFromProfile(t *testing.T) {
	input := model.PipelineInput{
		Profile: model.ResumeProfile{
			Skills:   []string{"salesforce", "sql"},
			Keywords: []string{"RevOps"},
		},
		Preferences: model.JobPreferences{PreferredTitles: []string{"revenue operations manager"}},
	}

	certs, gaps, keywords, err := LocalGenerators{}.RegenerateCerts(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, certs, 2)
	assert.Contains(t, certs[0], "salesforce")
	require.Len(t, gaps, 1)
	assert.Contains(t, gaps[0], "revenue operations manager")
	assert.Equal(t, "RevOps", keywords["revops"])
	assert.Equal(t, "sql", keywords["sql"])
}
