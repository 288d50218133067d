package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shortlist-group/jobscout/internal/augment"
	"github.com/shortlist-group/jobscout/internal/fetcher"
	"github.com/shortlist-group/jobscout/internal/pipeline"
	"github.com/shortlist-group/jobscout/internal/store"
	"github.com/shortlist-group/jobscout/internal/summarize"
	anthropicpkg "github.com/shortlist-group/jobscout/pkg/anthropic"
	"github.com/shortlist-group/jobscout/pkg/rescore"
	"github.com/shortlist-group/jobscout/pkg/search"
)

// pipelineEnv holds the initialized store, fetcher, and pipeline shared by
// the run/repair/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Fetcher  *fetcher.HTTPFetcher
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "jobscout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store and external clients and builds the
// Pipeline. Every external capability degrades when unconfigured: no search
// backend means seed-only discovery, no Anthropic key means extractive
// summaries, no rescore endpoint means identity ranking.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var searcher search.Client
	if cfg.Search.BaseURL != "" {
		searcher = search.NewClient(search.WithBaseURL(cfg.Search.BaseURL))
	} else {
		zap.L().Info("no search backend configured, discovery will use seeds only")
	}

	var summarizer summarize.Summarizer
	fallback := summarize.Extractive{MaxSentences: cfg.Summarize.MaxSentences}
	if cfg.Summarize.AnthropicKey != "" {
		summarizer = summarize.Hosted{
			AI:       anthropicpkg.NewClient(cfg.Summarize.AnthropicKey),
			Model:    cfg.Summarize.Model,
			Timeout:  cfg.Summarize.Timeout(),
			Fallback: fallback,
		}
	} else {
		zap.L().Debug("JOBSCOUT_SUMMARIZE_ANTHROPIC_KEY not set, using extractive summaries")
		summarizer = fallback
	}

	var rescorer augment.Rescorer = augment.Noop{}
	if cfg.Rescore.Endpoint != "" {
		rescorer = augment.Service{Client: rescore.NewClient(cfg.Rescore.Endpoint)}
		zap.L().Info("semantic rescoring enabled", zap.String("endpoint", cfg.Rescore.Endpoint))
	}

	httpFetcher := fetcher.NewHTTPFetcher(cfg.Fetch.UserAgent, cfg.Fetch.Timeout())
	p := pipeline.New(cfg, st, searcher, httpFetcher, summarizer, rescorer)

	return &pipelineEnv{
		Store:    st,
		Fetcher:  httpFetcher,
		Pipeline: p,
	}, nil
}
