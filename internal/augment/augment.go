// Package augment models the optional semantic re-ranking capability.
//
// The pipeline always talks to a Rescorer; configuration presence selects
// the live implementation, and the no-op default keeps the keyword-only
// ranking intact. This keeps the degrade path out of the orchestrator.
package augment

import (
	"context"

	"go.uber.org/zap"

	"github.com/shortlist-group/jobscout/internal/model"
	"github.com/shortlist-group/jobscout/pkg/rescore"
)

// Rescorer re-ranks scored jobs with semantic signals. Implementations must
// be best-effort: a partial or failed response leaves the original fit
// scores in place.
type Rescorer interface {
	Rescore(ctx context.Context, jobs []model.ScoredJob, profile model.ResumeProfile, prefs model.JobPreferences) []model.ScoredJob
}

// Noop is the identity rescorer used when no endpoint is configured:
// combined score equals fit score and job order is unchanged.
type Noop struct{}

func (Noop) Rescore(_ context.Context, jobs []model.ScoredJob, _ model.ResumeProfile, _ model.JobPreferences) []model.ScoredJob {
	return jobs
}

// Service rescores via the external semantic augmentation service.
type Service struct {
	Client rescore.Client
}

// Rescore calls the service and folds combined scores back into the jobs.
// Jobs absent from the response, and the whole set on any call failure,
// keep their original fit score.
func (s Service) Rescore(ctx context.Context, jobs []model.ScoredJob, profile model.ResumeProfile, prefs model.JobPreferences) []model.ScoredJob {
	if s.Client == nil || len(jobs) == 0 {
		return jobs
	}

	resp, err := s.Client.Rescore(ctx, rescore.Request{
		Jobs:        jobs,
		Profile:     profile,
		Preferences: prefs,
	})
	if err != nil {
		zap.L().Warn("augment: rescore failed, keeping keyword ranking", zap.Error(err))
		return jobs
	}

	byKey := make(map[string]rescore.JobScore, len(resp.Scores))
	for _, sc := range resp.Scores {
		byKey[sc.DedupeKey] = sc
	}

	out := make([]model.ScoredJob, len(jobs))
	for i, job := range jobs {
		out[i] = job
		sc, ok := byKey[job.DedupeKey]
		if !ok || sc.CombinedScore < 0 || sc.CombinedScore > 100 {
			continue
		}
		out[i].FitScore = sc.CombinedScore
		out[i].ReasonsFit = append(out[i].ReasonsFit, sc.Reasons...)
	}
	return out
}
