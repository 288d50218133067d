// Package ats classifies posting URLs by applicant tracking system.
package ats

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/shortlist-group/jobscout/internal/model"
)

// pattern pairs a host matcher with the platform it identifies.
type pattern struct {
	host *regexp.Regexp
	ats  model.ATSType
}

var patterns = []pattern{
	{regexp.MustCompile(`(^|\.)boards\.greenhouse\.io$`), model.ATSGreenhouse},
	{regexp.MustCompile(`(^|\.)job-boards\.greenhouse\.io$`), model.ATSGreenhouse},
	{regexp.MustCompile(`(^|\.)greenhouse\.io$`), model.ATSGreenhouse},
	{regexp.MustCompile(`(^|\.)jobs\.lever\.co$`), model.ATSLever},
	{regexp.MustCompile(`(^|\.)lever\.co$`), model.ATSLever},
	{regexp.MustCompile(`(^|\.)jobs\.ashbyhq\.com$`), model.ATSAshby},
	{regexp.MustCompile(`(^|\.)ashbyhq\.com$`), model.ATSAshby},
	{regexp.MustCompile(`\.myworkdayjobs\.com$`), model.ATSWorkday},
	{regexp.MustCompile(`\.myworkdaysite\.com$`), model.ATSWorkday},
}

// Domains lists the public ATS domains used to build site: search filters.
var Domains = []string{
	"boards.greenhouse.io",
	"jobs.lever.co",
	"jobs.ashbyhq.com",
	"myworkdayjobs.com",
}

// AggregatorHosts are job-board aggregators whose links QC rejects as apply
// URLs — they relay rather than host postings.
var AggregatorHosts = []string{
	"indeed.com",
	"linkedin.com",
	"ziprecruiter.com",
	"glassdoor.com",
	"monster.com",
	"simplyhired.com",
}

// Classify returns the ATS platform hosting the given URL, or ATSUnknown.
func Classify(rawURL string) model.ATSType {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return model.ATSUnknown
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range patterns {
		if p.host.MatchString(host) {
			return p.ats
		}
	}
	return model.ATSUnknown
}

// Known reports whether t is one of the four recognized platforms.
func Known(t model.ATSType) bool {
	switch t {
	case model.ATSGreenhouse, model.ATSLever, model.ATSAshby, model.ATSWorkday:
		return true
	}
	return false
}

// IsAggregator reports whether the URL's host is a known aggregator.
func IsAggregator(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, agg := range AggregatorHosts {
		if host == agg || strings.HasSuffix(host, "."+agg) {
			return true
		}
	}
	return false
}
