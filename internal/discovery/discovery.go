// Package discovery finds candidate posting URLs on supported ATS domains.
package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/shortlist-group/jobscout/internal/ats"
	"github.com/shortlist-group/jobscout/internal/model"
)

// Searcher is the external HTML search interface. Implementations return
// raw result-page HTML for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// genericTitles is the fallback vocabulary when the candidate has no
// preferred titles.
var genericTitles = []string{
	"operations manager",
	"revenue operations",
	"business operations",
	"program manager",
}

// seedURLs is the curated list of known ATS boards appended to every
// discovery pass so a failed search never returns empty.
var seedURLs = []string{
	"https://boards.greenhouse.io/stripe",
	"https://boards.greenhouse.io/gitlab",
	"https://jobs.lever.co/plaid",
	"https://jobs.lever.co/brex",
	"https://jobs.ashbyhq.com/notion",
	"https://jobs.ashbyhq.com/linear",
}

var linkRe = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)

// BuildQueries constructs search queries from preferences: preferred titles
// (or the generic vocabulary), an optional remote qualifier, up to two
// preferred industries, all restricted to the supported ATS domains via an
// OR of site: filters.
func BuildQueries(prefs model.JobPreferences) []string {
	titles := prefs.PreferredTitles
	if len(titles) == 0 {
		titles = genericTitles
	}

	var siteParts []string
	for _, d := range ats.Domains {
		siteParts = append(siteParts, "site:"+d)
	}
	siteFilter := "(" + strings.Join(siteParts, " OR ") + ")"

	qualifier := ""
	if prefs.RemoteOnly {
		qualifier = " remote"
	}

	industries := prefs.IndustriesPrefer
	if len(industries) > 2 {
		industries = industries[:2]
	}

	var queries []string
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		queries = append(queries, fmt.Sprintf("%q%s %s", title, qualifier, siteFilter))
		for _, industry := range industries {
			industry = strings.TrimSpace(industry)
			if industry == "" {
				continue
			}
			queries = append(queries, fmt.Sprintf("%q %s%s %s", title, industry, qualifier, siteFilter))
		}
	}
	return queries
}

// DiscoverJobURLs runs the discovery pass: search per query, extract links,
// keep ATS-matching URLs, merge in static and configured seeds, dedupe, and
// truncate to maxResults. Configured seeds (including an explicit target
// URL) are placed first so truncation never drops them. Per-query search
// failures are logged and swallowed so one bad query cannot abort the run.
func DiscoverJobURLs(ctx context.Context, search Searcher, prefs model.JobPreferences, extraSeeds []string, maxResults int) []model.DiscoveredURL {
	log := zap.L().With(zap.String("component", "discovery"))
	if maxResults <= 0 {
		maxResults = 25
	}

	var discovered []model.DiscoveredURL
	for _, seed := range extraSeeds {
		if seed = strings.TrimSpace(seed); seed != "" {
			discovered = append(discovered, model.DiscoveredURL{URL: seed, Source: "seed_env"})
		}
	}

	if search != nil {
		for _, query := range BuildQueries(prefs) {
			if ctx.Err() != nil {
				break
			}
			html, err := search.Search(ctx, query)
			if err != nil {
				log.Warn("search query failed", zap.String("query", query), zap.Error(err))
				continue
			}
			links := ExtractATSLinks(html)
			log.Debug("query results", zap.String("query", query), zap.Int("ats_links", len(links)))
			for _, link := range links {
				discovered = append(discovered, model.DiscoveredURL{URL: link, Source: "search"})
			}
		}
	}

	for _, seed := range seedURLs {
		discovered = append(discovered, model.DiscoveredURL{URL: seed, Source: "seed"})
	}

	deduped := dedupeURLs(discovered)
	if len(deduped) > maxResults {
		deduped = deduped[:maxResults]
	}

	log.Info("discovery complete", zap.Int("urls", len(deduped)))
	return deduped
}

// ExtractATSLinks pulls every absolute link out of search-result HTML and
// keeps the ones matching a known ATS pattern.
func ExtractATSLinks(html string) []string {
	var links []string
	for _, link := range linkRe.FindAllString(html, -1) {
		link = strings.TrimRight(link, ".,;")
		if ats.Classify(link) != model.ATSUnknown {
			links = append(links, link)
		}
	}
	return links
}

func dedupeURLs(urls []model.DiscoveredURL) []model.DiscoveredURL {
	seen := make(map[string]bool, len(urls))
	out := make([]model.DiscoveredURL, 0, len(urls))
	for _, u := range urls {
		if seen[u.URL] {
			continue
		}
		seen[u.URL] = true
		out = append(out, u)
	}
	return out
}
