package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/shortlist-group/jobscout/internal/model"
)

// Ashby parses jobs.ashbyhq.com pages. Ashby boards render from a
// serialized window.__appData blob rather than server-side markup, so the
// embedded-state strategy carries most of the weight here.
type Ashby struct{}

func (a *Ashby) ATS() model.ATSType { return model.ATSAshby }

// Parse tries JSON-LD, then the __appData page-state blob, then the
// single-job heuristic.
func (a *Ashby) Parse(rawHTML, sourceURL string) ([]model.ParsedJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrap(err, "ashby: parse html")
	}

	if jobs := parseJSONLD(doc, sourceURL, model.ATSAshby); len(jobs) > 0 {
		return jobs, nil
	}

	company := siteCompany(doc)
	var jobs []model.ParsedJob
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, "window.__appData")
		if idx < 0 {
			return true
		}
		blob := extractJSONObject(text[idx:])
		if blob == "" {
			return true
		}
		jobs = appDataJobs(blob, company, sourceURL)
		return len(jobs) == 0
	})
	if len(jobs) > 0 {
		return jobs, nil
	}

	return heuristicJob(doc, sourceURL, model.ATSAshby), nil
}

// extractJSONObject returns the first balanced {...} object in s, honoring
// string literals and escapes.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// appDataJobs walks the decoded app state for jobPosting entries wherever
// they appear in the tree.
func appDataJobs(blob, company, sourceURL string) []model.ParsedJob {
	var data any
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil
	}

	var jobs []model.ParsedJob
	var walk func(node any)
	walk = func(node any) {
		switch v := node.(type) {
		case []any:
			for _, item := range v {
				walk(item)
			}
		case map[string]any:
			if postings, ok := v["jobPostings"].([]any); ok {
				for _, p := range postings {
					pm, ok := p.(map[string]any)
					if !ok {
						continue
					}
					title := cleanText(stringValue(pm["title"], pm["name"]))
					if title == "" {
						continue
					}
					location := cleanText(stringValue(pm["locationName"], pm["location"]))
					applyURL := sourceURL
					if id := stringValue(pm["id"]); id != "" {
						applyURL = strings.TrimRight(sourceURL, "/") + "/" + id
					}
					jobs = append(jobs, model.ParsedJob{
						Title:       title,
						CompanyName: company,
						Location:    location,
						IsRemote:    looksRemote(location, ""),
						ApplyURL:    applyURL,
						SourceURL:   sourceURL,
						ATSType:     model.ATSAshby,
					})
				}
				return
			}
			for _, item := range v {
				walk(item)
			}
		}
	}
	walk(data)
	return jobs
}
