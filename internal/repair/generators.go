package repair

import (
	"context"
	"fmt"
	"strings"

	"github.com/shortlist-group/jobscout/internal/model"
)

// LocalGenerators is the deterministic default generator set: it strips
// flagged resume lines, renders a templated outreach cadence, and derives
// cert suggestions from the candidate's own profile. Hosted generators can
// replace it without touching the loop.
type LocalGenerators struct{}

// RewriteResume removes every draft line matching an unsupported claim.
func (LocalGenerators) RewriteResume(_ context.Context, draft string, unsupportedClaims []string) (string, error) {
	if len(unsupportedClaims) == 0 {
		return draft, nil
	}

	var kept []string
	for _, line := range strings.Split(draft, "\n") {
		trimmed := strings.TrimSpace(line)
		flagged := false
		for _, claim := range unsupportedClaims {
			if claim != "" && strings.HasPrefix(trimmed, claim) {
				flagged = true
				break
			}
		}
		if !flagged {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

// RegenerateOutreach renders a three-touch cadence around the candidate's
// top preferred title.
func (LocalGenerators) RegenerateOutreach(_ context.Context, input model.PipelineInput) (string, error) {
	title := "your target role"
	if len(input.Preferences.PreferredTitles) > 0 {
		title = input.Preferences.PreferredTitles[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Day 1: Apply and send a short intro note referencing the %s opening.\n", title)
	b.WriteString("Day 3: Follow up with the hiring manager, lead with one relevant achievement.\n")
	b.WriteString("Day 7: Final follow-up in the cadence; ask for a referral if no response.\n")
	return b.String(), nil
}

// RegenerateCerts derives gap and certification suggestions from the
// profile's skills and keywords, and rebuilds the keyword map from the
// profile's own terms.
func (LocalGenerators) RegenerateCerts(_ context.Context, input model.PipelineInput) ([]string, []string, map[string]string, error) {
	profile := input.Profile

	var certs []string
	for _, skill := range profile.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			certs = append(certs, fmt.Sprintf("Certification path: %s practitioner credential", skill))
		}
		if len(certs) >= 3 {
			break
		}
	}
	if len(certs) == 0 {
		certs = []string{"Certification path: project management fundamentals"}
	}

	var gaps []string
	for _, title := range input.Preferences.PreferredTitles {
		if title = strings.TrimSpace(title); title != "" {
			gaps = append(gaps, fmt.Sprintf("Gap review: map experience against a typical %s posting", title))
		}
		if len(gaps) >= 2 {
			break
		}
	}

	keywords := make(map[string]string, len(profile.Keywords))
	for _, kw := range profile.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords[strings.ToLower(kw)] = kw
		}
	}
	for _, skill := range profile.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			keywords[strings.ToLower(skill)] = skill
		}
	}

	return certs, gaps, keywords, nil
}
