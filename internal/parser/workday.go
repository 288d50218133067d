package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/shortlist-group/jobscout/internal/model"
)

// Workday parses *.myworkdayjobs.com pages. Workday ships posting data in
// JSON-LD on job detail pages and in embedded jobPostings JSON on list
// pages rendered before hydration.
type Workday struct{}

func (w *Workday) ATS() model.ATSType { return model.ATSWorkday }

// Parse tries JSON-LD, then embedded jobPostings state, then the
// single-job heuristic.
func (w *Workday) Parse(rawHTML, sourceURL string) ([]model.ParsedJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrap(err, "workday: parse html")
	}

	if jobs := parseJSONLD(doc, sourceURL, model.ATSWorkday); len(jobs) > 0 {
		return jobs, nil
	}

	company := siteCompany(doc)
	var jobs []model.ParsedJob
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, "jobPostings") {
			return true
		}
		blob := extractJSONObject(text)
		if blob == "" {
			return true
		}
		jobs = workdayJobs(blob, company, sourceURL)
		return len(jobs) == 0
	})
	if len(jobs) > 0 {
		return jobs, nil
	}

	return heuristicJob(doc, sourceURL, model.ATSWorkday), nil
}

// workdayJobs extracts jobPostings entries from embedded facet-search state.
func workdayJobs(blob, company, sourceURL string) []model.ParsedJob {
	var data struct {
		JobPostings []struct {
			Title         string `json:"title"`
			LocationsText string `json:"locationsText"`
			ExternalPath  string `json:"externalPath"`
			PostedOn      string `json:"postedOn"`
		} `json:"jobPostings"`
	}
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil
	}

	var jobs []model.ParsedJob
	for _, p := range data.JobPostings {
		title := cleanText(p.Title)
		if title == "" {
			continue
		}
		location := cleanText(p.LocationsText)
		job := model.ParsedJob{
			Title:       title,
			CompanyName: company,
			Location:    location,
			IsRemote:    looksRemote(location, ""),
			ApplyURL:    absoluteURL(sourceURL, p.ExternalPath),
			SourceURL:   sourceURL,
			ATSType:     model.ATSWorkday,
		}
		if ts, ok := parsePostedAt(p.PostedOn); ok {
			job.PostedAt = &ts
		}
		jobs = append(jobs, job)
	}
	return jobs
}
