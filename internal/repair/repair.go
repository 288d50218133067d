// Package repair drives the bounded QC-flag-driven recovery loop.
package repair

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shortlist-group/jobscout/internal/model"
	"github.com/shortlist-group/jobscout/internal/qc"
	"github.com/shortlist-group/jobscout/internal/store"
)

// defaultMaxAttempts bounds the repair loop when config leaves it unset.
const defaultMaxAttempts = 2

// defaultAutoShipMin is the shipping threshold when a tier defines none.
const defaultAutoShipMin = 0.82

// Generators produce replacement deliverables for flagged categories. They
// are black boxes: an error from any generator aborts the repair attempt
// and propagates to the caller.
type Generators interface {
	RewriteResume(ctx context.Context, draft string, unsupportedClaims []string) (string, error)
	RegenerateOutreach(ctx context.Context, input model.PipelineInput) (string, error)
	RegenerateCerts(ctx context.Context, input model.PipelineInput) (certs, gaps []string, keywords map[string]string, err error)
}

// PipelineRunner re-runs job discovery when QC finds the job set lacking.
type PipelineRunner interface {
	Run(ctx context.Context, input model.PipelineInput) (*model.PipelineResult, error)
}

// Deps wires the repair loop's collaborators.
type Deps struct {
	Store       store.Store
	Pipeline    PipelineRunner
	Generators  Generators
	Probe       qc.ProbeFunc
	MaxAttempts int
}

// Outcome is the final state of a repair pass. A bundle that never
// converged is returned as-is with Result.HardFail still true — the loop
// never silently accepts a failing bundle.
type Outcome struct {
	Bundle   model.Bundle
	Result   model.QCResult
	Attempts int
}

// Loop evaluates the bundle and applies flag-matched remedies until QC
// passes the tier's auto-ship threshold or the attempt budget runs out.
// Each remedy applies at most once per attempt and every QC evaluation is
// persisted.
func Loop(ctx context.Context, deps Deps, orderID string, bundle model.Bundle, tier model.Tier, input model.PipelineInput) (*Outcome, error) {
	log := zap.L().With(zap.String("order_id", orderID), zap.String("tier", tier.ID))

	maxAttempts := deps.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	threshold := tier.AutoShipMin
	if threshold <= 0 {
		threshold = defaultAutoShipMin
	}

	result := qc.Evaluate(ctx, orderID, bundle, tier, deps.Probe)
	if err := deps.Store.SaveQCResult(ctx, result); err != nil {
		return nil, eris.Wrap(err, "repair: save qc result")
	}

	attempts := 0
	for (result.HardFail || result.ConfidenceTotal < threshold) && attempts < maxAttempts {
		attempts++
		log.Info("repair: attempting recovery",
			zap.Int("attempt", attempts),
			zap.Float64("confidence", result.ConfidenceTotal),
			zap.Bool("hard_fail", result.HardFail),
		)

		var err error
		bundle, err = applyRemedies(ctx, deps, bundle, result, tier, input)
		if err != nil {
			return nil, err
		}

		result = qc.Evaluate(ctx, orderID, bundle, tier, deps.Probe)
		if err := deps.Store.SaveQCResult(ctx, result); err != nil {
			return nil, eris.Wrap(err, "repair: save qc result")
		}
	}

	if result.HardFail || result.ConfidenceTotal < threshold {
		log.Warn("repair: bundle did not converge, routing to manual review",
			zap.Int("attempts", attempts),
			zap.Float64("confidence", result.ConfidenceTotal),
		)
	}
	return &Outcome{Bundle: bundle, Result: result, Attempts: attempts}, nil
}

// applyRemedies applies each flag-matched remedy exactly once.
func applyRemedies(ctx context.Context, deps Deps, bundle model.Bundle, result model.QCResult, tier model.Tier, input model.PipelineInput) (model.Bundle, error) {
	if claims := result.FlagsOf(model.FlagResumeClaim); len(claims) > 0 && deps.Generators != nil {
		details := make([]string, 0, len(claims))
		for _, f := range claims {
			details = append(details, f.Detail)
		}
		draft, err := deps.Generators.RewriteResume(ctx, bundle.ResumeDraft, details)
		if err != nil {
			return bundle, eris.Wrap(err, "repair: rewrite resume")
		}
		bundle.ResumeDraft = draft
	}

	if hasJobFlags(result) && deps.Pipeline != nil {
		expanded := input
		expanded.MaxResults = 2 * tier.RequiredJobs
		pipelineResult, err := deps.Pipeline.Run(ctx, expanded)
		if err != nil {
			return bundle, eris.Wrap(err, "repair: rerun pipeline")
		}
		bundle.Jobs = pipelineResult.Jobs
	}

	if (result.HasFlag(model.FlagOutreachMissing) || result.HasFlag(model.FlagOutreachNoCadence)) && deps.Generators != nil {
		outreach, err := deps.Generators.RegenerateOutreach(ctx, input)
		if err != nil {
			return bundle, eris.Wrap(err, "repair: regenerate outreach")
		}
		bundle.Outreach = outreach
	}

	if (result.HasFlag(model.FlagCertsMissing) || result.HasFlag(model.FlagKeywordsMissing)) && deps.Generators != nil {
		certs, gaps, keywords, err := deps.Generators.RegenerateCerts(ctx, input)
		if err != nil {
			return bundle, eris.Wrap(err, "repair: regenerate certs")
		}
		bundle.CertDrafts = certs
		bundle.GapDrafts = gaps
		bundle.KeywordMap = keywords
	}

	return bundle, nil
}

// hasJobFlags reports whether any flag calls for a fresh job pipeline run.
func hasJobFlags(result model.QCResult) bool {
	for _, kind := range []string{
		model.FlagJobsInsufficient,
		model.FlagJobURLMissing,
		model.FlagJobURLInsecure,
		model.FlagJobURLAggregator,
		model.FlagJobURLUnreachable,
	} {
		if result.HasFlag(kind) {
			return true
		}
	}
	return false
}
