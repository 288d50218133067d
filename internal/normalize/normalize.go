// Package normalize canonicalizes parsed jobs and computes dedupe keys.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shortlist-group/jobscout/internal/model"
)

var (
	legalSuffixRe = regexp.MustCompile(`(?i)[,.]?\s+(inc|llc|ltd|corp|co)\.?$`)
	workModeRe    = regexp.MustCompile(`(?i)[\s(\[-]*(remote|hybrid|onsite|on-site|work from home)[\s)\]-]*`)

	titleCaser = cases.Title(language.English)
)

// CanonicalURL strips the fragment and query string so tracking noise
// cannot split duplicates.
func CanonicalURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSpace(rawURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Company lowercases, strips trailing legal suffixes, and collapses
// whitespace.
func Company(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for {
		stripped := legalSuffixRe.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = strings.TrimSpace(stripped)
	}
	return strings.Join(strings.Fields(name), " ")
}

// Title lowercases and strips work-mode qualifiers so "Engineer (Remote)"
// and "Engineer" hash identically.
func Title(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = workModeRe.ReplaceAllString(title, " ")
	return strings.Join(strings.Fields(title), " ")
}

// DisplayCompany renders a normalized company name for human-facing output.
func DisplayCompany(normalized string) string {
	return titleCaser.String(normalized)
}

// DedupeKey hashes company|title|canonicalURL. The key is intentionally
// coarse: two req IDs at one company with the same normalized title collide,
// which suppresses ATS pagination and duplicate-listing noise.
func DedupeKey(company, title, canonicalURL string) string {
	sum := sha256.Sum256([]byte(company + "|" + title + "|" + canonicalURL))
	return hex.EncodeToString(sum[:])
}

// Job normalizes a parsed job. Records missing title or company are dropped
// (ok=false) before hashing. Normalizing an already-normalized job is
// idempotent: the dedupe key does not change.
func Job(parsed model.ParsedJob) (model.NormalizedJob, bool) {
	company := Company(parsed.CompanyName)
	title := Title(parsed.Title)
	if company == "" || title == "" {
		return model.NormalizedJob{}, false
	}

	canonical := CanonicalURL(parsed.ApplyURL)
	if canonical == "" {
		canonical = CanonicalURL(parsed.SourceURL)
	}

	return model.NormalizedJob{
		ParsedJob:         parsed,
		NormalizedCompany: company,
		NormalizedTitle:   title,
		CanonicalApplyURL: canonical,
		DedupeKey:         DedupeKey(company, title, canonical),
	}, true
}
