// Package scorer implements the fit and ghost-risk scoring model.
//
// The formulas are deliberately simple, auditable linear combinations with
// reason strings rather than a learned model — pure functions returning
// (score, reasons) so they stay unit-testable and swappable.
package scorer

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-z0-9+#.]+`)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "our": true, "that": true,
	"the": true, "to": true, "we": true, "will": true, "with": true, "you": true,
	"your": true,
}

// tokenize lowercases text and returns the set of non-stopword tokens.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		tokens[tok] = true
	}
	return tokens
}

// Seniority levels ordered from junior to executive.
const (
	seniorityUnknown = iota
	seniorityJunior
	seniorityMid
	senioritySenior
	seniorityLead
	seniorityDirector
	seniorityExecutive
)

var seniorityTerms = []struct {
	level int
	terms []string
}{
	{seniorityExecutive, []string{"chief", "cxo", "ceo", "cfo", "coo", "cto", "vp", "vice president", "head of"}},
	{seniorityDirector, []string{"director"}},
	{seniorityLead, []string{"lead", "principal", "staff"}},
	{senioritySenior, []string{"senior", "sr.", "sr "}},
	{seniorityJunior, []string{"junior", "jr.", "jr ", "entry", "associate", "intern"}},
}

// inferSeniority maps free text to a seniority level. Text with no marker
// is treated as mid-level.
func inferSeniority(text string) int {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return seniorityUnknown
	}
	for _, st := range seniorityTerms {
		for _, term := range st.terms {
			if strings.Contains(lower, term) {
				return st.level
			}
		}
	}
	return seniorityMid
}

// roleFamilies maps a family name to indicative title keywords.
var roleFamilies = map[string][]string{
	"engineering": {"engineer", "developer", "swe", "devops", "sre", "architect"},
	"data":        {"data", "analytics", "scientist", "machine learning", "ml"},
	"product":     {"product manager", "product owner", "pm"},
	"design":      {"designer", "ux", "ui"},
	"operations":  {"operations", "revops", "revenue operations", "ops", "program manager", "project manager"},
	"sales":       {"sales", "account executive", "account manager", "business development"},
	"marketing":   {"marketing", "growth", "seo", "content"},
	"finance":     {"finance", "accountant", "controller", "fp&a"},
	"people":      {"recruiter", "talent", "people", "hr", "human resources"},
	"support":     {"support", "customer success", "customer service"},
}

// roleFamily classifies a title into a role family, or "" when no family
// keyword matches.
func roleFamily(title string) string {
	lower := strings.ToLower(title)
	for family, terms := range roleFamilies {
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return family
			}
		}
	}
	return ""
}

var quantifiedRe = regexp.MustCompile(`[$€£]\s?\d|\d+(\.\d+)?\s?%|\b\d{2,}\b`)

// hasQuantifiedClaim reports whether text carries numeric, percentage, or
// dollar evidence.
func hasQuantifiedClaim(text string) bool {
	return quantifiedRe.MatchString(text)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
