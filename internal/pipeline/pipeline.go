// Package pipeline orchestrates the discovery-to-persistence job flow.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shortlist-group/jobscout/internal/ats"
	"github.com/shortlist-group/jobscout/internal/augment"
	"github.com/shortlist-group/jobscout/internal/config"
	"github.com/shortlist-group/jobscout/internal/discovery"
	"github.com/shortlist-group/jobscout/internal/fetcher"
	"github.com/shortlist-group/jobscout/internal/model"
	"github.com/shortlist-group/jobscout/internal/normalize"
	"github.com/shortlist-group/jobscout/internal/parser"
	"github.com/shortlist-group/jobscout/internal/scorer"
	"github.com/shortlist-group/jobscout/internal/store"
	"github.com/shortlist-group/jobscout/internal/summarize"
)

// Fetcher issues the posting-page requests made during a run.
type Fetcher interface {
	FetchWithTimeout(ctx context.Context, rawURL string, opts fetcher.FetchOptions) (*fetcher.FetchResult, error)
}

// Pipeline runs discovery, fetching, parsing, scoring, and persistence for
// one candidate.
type Pipeline struct {
	cfg        *config.Config
	store      store.Store
	search     discovery.Searcher
	fetch      Fetcher
	limiter    *fetcher.RateLimiter
	summarizer summarize.Summarizer
	rescorer   augment.Rescorer
	now        func() time.Time
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	search discovery.Searcher,
	fetch Fetcher,
	summarizer summarize.Summarizer,
	rescorer augment.Rescorer,
) *Pipeline {
	if summarizer == nil {
		summarizer = summarize.Extractive{MaxSentences: cfg.Summarize.MaxSentences}
	}
	if rescorer == nil {
		rescorer = augment.Noop{}
	}
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		search:     search,
		fetch:      fetch,
		limiter:    fetcher.NewRateLimiter(cfg.Fetch.RateInterval()),
		summarizer: summarizer,
		rescorer:   rescorer,
		now:        time.Now,
	}
}

// fetchOutcome pairs the audit record for one URL with whatever jobs its
// page yielded.
type fetchOutcome struct {
	record model.JobSourceRecord
	jobs   []model.ParsedJob
}

// Run executes the full pipeline for one input. The run row is created
// up front; any error after that marks the run failed before returning.
func (p *Pipeline) Run(ctx context.Context, input model.PipelineInput) (*model.PipelineResult, error) {
	log := zap.L().With(zap.String("candidate_id", input.CandidateID))
	log.Info("pipeline: starting run")

	run, err := p.store.CreateRun(ctx, input)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	log = log.With(zap.String("run_id", run.ID))

	result, err := p.execute(ctx, log, run.ID, input)
	if err != nil {
		if failErr := p.store.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			log.Warn("pipeline: failed to mark run failed", zap.Error(failErr))
		}
		return nil, err
	}

	if err := p.store.CompleteRun(ctx, run.ID, result.Stats); err != nil {
		return nil, eris.Wrap(err, "pipeline: complete run")
	}

	log.Info("pipeline: run complete",
		zap.Int("urls_discovered", result.Stats.URLsDiscovered),
		zap.Int("urls_fetched", result.Stats.URLsFetched),
		zap.Int("jobs_scored", result.Stats.JobsScored),
	)
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, log *zap.Logger, runID string, input model.PipelineInput) (*model.PipelineResult, error) {
	var stats model.PipelineStats

	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = p.cfg.Discovery.MaxResults
	}

	// Discover. Target URL, if any, goes first so it survives truncation.
	seeds := p.cfg.Discovery.SeedURLs
	if input.TargetJobURL != "" {
		seeds = append([]string{input.TargetJobURL}, seeds...)
	}
	discovered := discovery.DiscoverJobURLs(ctx, p.search, input.Preferences, seeds, maxResults*2)
	stats.URLsDiscovered = len(discovered)

	// Fetch and parse. Only URLs on a recognized ATS are attempted; every
	// attempted URL produces exactly one audit record.
	targets := make([]model.DiscoveredURL, 0, len(discovered))
	for _, d := range discovered {
		if ats.Classify(d.URL) == model.ATSUnknown {
			log.Debug("pipeline: skipping unrecognized host", zap.String("url", d.URL))
			continue
		}
		targets = append(targets, d)
	}

	outcomes, err := fetcher.MapWithConcurrency(ctx, targets, p.cfg.Fetch.Concurrency,
		func(ctx context.Context, d model.DiscoveredURL) (fetchOutcome, error) {
			return p.fetchOne(ctx, d.URL)
		})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch postings")
	}

	records := make([]model.JobSourceRecord, 0, len(outcomes))
	var parsed []model.ParsedJob
	for _, o := range outcomes {
		records = append(records, o.record)
		if o.record.Error == "" && o.record.HTTPStatus >= 200 && o.record.HTTPStatus < 300 {
			stats.URLsFetched++
		}
		parsed = append(parsed, o.jobs...)
	}
	stats.JobsParsed = len(parsed)

	// Normalize, filter, dedupe. First occurrence of a dedupe key wins.
	seen := make(map[string]bool)
	var jobs []model.NormalizedJob
	for _, pj := range parsed {
		nj, ok := normalize.Job(pj)
		if !ok {
			continue
		}
		if !matchesPreferences(nj, input.Preferences) {
			continue
		}
		if seen[nj.DedupeKey] {
			continue
		}
		seen[nj.DedupeKey] = true
		jobs = append(jobs, nj)
	}
	stats.JobsDeduped = len(jobs)

	// Score and summarize.
	now := p.now()
	scored := make([]model.ScoredJob, 0, len(jobs))
	for _, nj := range jobs {
		fit, fitReasons := scorer.ScoreFit(input.Profile, input.Preferences, nj)
		ghost, ghostReasons := scorer.ScoreGhost(nj, now)
		scored = append(scored, model.ScoredJob{
			NormalizedJob:        nj,
			FitScore:             fit,
			GhostRiskScore:       ghost,
			ReasonsFit:           fitReasons,
			ReasonsGhost:         ghostReasons,
			RecommendedApplyPath: scorer.RecommendPath(fit, ghost),
			ShortSummary:         p.summarizer.Summarize(ctx, nj.Description),
		})
	}
	stats.JobsScored = len(scored)

	rankJobs(scored)
	scored = p.rescorer.Rescore(ctx, scored, input.Profile, input.Preferences)
	rankJobs(scored)

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	// Persist.
	if err := p.store.AppendJobSources(ctx, runID, records); err != nil {
		return nil, eris.Wrap(err, "pipeline: append job sources")
	}
	if err := p.store.UpsertScoredJobs(ctx, runID, scored); err != nil {
		return nil, eris.Wrap(err, "pipeline: upsert jobs")
	}

	return &model.PipelineResult{
		RunID: runID,
		Jobs:  scored,
		Stats: stats,
	}, nil
}

// fetchOne fetches and parses a single posting URL. Fetch failures and
// non-2xx statuses are recorded, not returned: one dead URL must not abort
// the run.
func (p *Pipeline) fetchOne(ctx context.Context, rawURL string) (fetchOutcome, error) {
	atsType := ats.Classify(rawURL)
	record := model.JobSourceRecord{
		URL:     rawURL,
		ATSType: atsType,
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fetchOutcome{record: record}, err
	}
	record.FetchedAt = time.Now().UTC()

	res, err := p.fetch.FetchWithTimeout(ctx, rawURL, fetcher.FetchOptions{Timeout: p.cfg.Fetch.Timeout()})
	if err != nil {
		record.Error = err.Error()
		zap.L().Warn("pipeline: fetch failed", zap.String("url", rawURL), zap.Error(err))
		return fetchOutcome{record: record}, nil
	}
	record.HTTPStatus = res.StatusCode

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		zap.L().Debug("pipeline: non-2xx posting page", zap.String("url", rawURL), zap.Int("status", res.StatusCode))
		return fetchOutcome{record: record}, nil
	}
	record.RawHTML = string(res.Body)

	jobs, err := parser.ForATS(atsType).Parse(string(res.Body), rawURL)
	if err != nil {
		record.Error = err.Error()
		zap.L().Warn("pipeline: parse failed", zap.String("url", rawURL), zap.Error(err))
		return fetchOutcome{record: record}, nil
	}
	return fetchOutcome{record: record, jobs: jobs}, nil
}

// matchesPreferences applies the hard candidate filters. Remote-only
// excludes any posting without a remote signal; contract roles are excluded
// unless the candidate accepts them.
func matchesPreferences(job model.NormalizedJob, prefs model.JobPreferences) bool {
	if prefs.RemoteOnly && !job.IsRemote && !mentionsRemote(job) {
		return false
	}
	if !prefs.ContractOK && looksContract(job.Title) {
		return false
	}
	return true
}

func mentionsRemote(job model.NormalizedJob) bool {
	text := strings.ToLower(job.Location + " " + job.Description)
	return strings.Contains(text, "remote") || strings.Contains(text, "work from home") || strings.Contains(text, "anywhere")
}

func looksContract(title string) bool {
	t := strings.ToLower(title)
	return strings.Contains(t, "contract") || strings.Contains(t, "temporary") || strings.Contains(t, "freelance")
}

// rankJobs orders jobs by fit descending, then ghost risk ascending, then
// posting recency descending. Jobs without a posted date sort last within
// their score band.
func rankJobs(jobs []model.ScoredJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].FitScore != jobs[j].FitScore {
			return jobs[i].FitScore > jobs[j].FitScore
		}
		if jobs[i].GhostRiskScore != jobs[j].GhostRiskScore {
			return jobs[i].GhostRiskScore < jobs[j].GhostRiskScore
		}
		pi, pj := jobs[i].PostedAt, jobs[j].PostedAt
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})
}
