// Package parser extracts structured job records from ATS posting pages.
//
// Each parser tries strategies in order until one yields data: JSON-LD
// JobPosting structured data, platform-specific embedded state or listing
// containers, then a generic single-job heuristic. Finding nothing is not
// an error — parsers return an empty slice and reserve errors for input
// they cannot safely degrade from.
package parser

import (
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/shortlist-group/jobscout/internal/model"
)

// Parser turns raw HTML from one platform into ParsedJob records.
type Parser interface {
	ATS() model.ATSType
	Parse(rawHTML, sourceURL string) ([]model.ParsedJob, error)
}

// ForATS returns the parser for the given platform, or nil for unknown.
func ForATS(t model.ATSType) Parser {
	switch t {
	case model.ATSGreenhouse:
		return &Greenhouse{}
	case model.ATSLever:
		return &Lever{}
	case model.ATSAshby:
		return &Ashby{}
	case model.ATSWorkday:
		return &Workday{}
	}
	return nil
}

// cleanText unescapes HTML entities and collapses all whitespace runs.
func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

// absoluteURL resolves href against base, passing through already-absolute
// and protocol-relative links.
func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// parsePostedAt accepts the date formats ATS platforms emit.
func parsePostedAt(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02T15:04:05-0700",
		"January 2, 2006",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// siteCompany infers the company name from page metadata when structured
// data omits it: og:site_name first, then the trailing segment of <title>.
func siteCompany(doc *goquery.Document) string {
	if name, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if c := cleanText(name); c != "" {
			return c
		}
	}
	title := cleanText(doc.Find("title").First().Text())
	for _, sep := range []string{" at ", " | ", " - ", " – "} {
		if idx := strings.LastIndex(title, sep); idx >= 0 {
			if c := cleanText(title[idx+len(sep):]); c != "" {
				return c
			}
		}
	}
	return ""
}

// looksRemote reports whether the location or description indicates a
// remote role.
func looksRemote(location, description string) bool {
	combined := strings.ToLower(location + " " + description)
	for _, term := range []string{"remote", "work from home", "work-from-home", "anywhere", "distributed"} {
		if strings.Contains(combined, term) {
			return true
		}
	}
	return false
}
