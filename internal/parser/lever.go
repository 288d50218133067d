package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/shortlist-group/jobscout/internal/model"
)

// Lever parses jobs.lever.co listing and posting pages.
type Lever struct{}

func (l *Lever) ATS() model.ATSType { return model.ATSLever }

// Parse tries JSON-LD first, then the board's .posting listing entries,
// then the single-job heuristic.
func (l *Lever) Parse(rawHTML, sourceURL string) ([]model.ParsedJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrap(err, "lever: parse html")
	}

	if jobs := parseJSONLD(doc, sourceURL, model.ATSLever); len(jobs) > 0 {
		return jobs, nil
	}

	company := siteCompany(doc)

	var jobs []model.ParsedJob
	doc.Find(".posting").Each(func(_ int, s *goquery.Selection) {
		title := cleanText(s.Find("h5").First().Text())
		if title == "" {
			title = cleanText(s.Find(`[data-qa="posting-name"]`).First().Text())
		}
		if title == "" {
			return
		}
		href, _ := s.Find("a.posting-title").First().Attr("href")
		if href == "" {
			href, _ = s.Find("a").First().Attr("href")
		}
		location := cleanText(s.Find(".posting-categories .sort-by-location").First().Text())
		if location == "" {
			location = cleanText(s.Find(".location").First().Text())
		}
		commitment := cleanText(s.Find(".posting-categories .sort-by-commitment").First().Text())

		jobs = append(jobs, model.ParsedJob{
			Title:       title,
			CompanyName: company,
			Location:    location,
			IsRemote:    looksRemote(location, commitment),
			ApplyURL:    absoluteURL(sourceURL, href),
			SourceURL:   sourceURL,
			ATSType:     model.ATSLever,
		})
	})
	if len(jobs) > 0 {
		return jobs, nil
	}

	return heuristicJob(doc, sourceURL, model.ATSLever), nil
}
