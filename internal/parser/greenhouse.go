package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/shortlist-group/jobscout/internal/model"
)

// Greenhouse parses boards.greenhouse.io listing and posting pages.
type Greenhouse struct{}

func (g *Greenhouse) ATS() model.ATSType { return model.ATSGreenhouse }

// Parse tries JSON-LD first, then the board's .opening listing entries,
// then the single-job heuristic.
func (g *Greenhouse) Parse(rawHTML, sourceURL string) ([]model.ParsedJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrap(err, "greenhouse: parse html")
	}

	if jobs := parseJSONLD(doc, sourceURL, model.ATSGreenhouse); len(jobs) > 0 {
		return jobs, nil
	}

	company := siteCompany(doc)

	var jobs []model.ParsedJob
	doc.Find(".opening").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a").First()
		title := cleanText(link.Text())
		if title == "" {
			return
		}
		href, _ := link.Attr("href")
		location := cleanText(s.Find(".location").First().Text())
		if location == "" {
			location = cleanText(s.Find("span").First().Text())
		}

		jobs = append(jobs, model.ParsedJob{
			Title:       title,
			CompanyName: company,
			Location:    location,
			IsRemote:    looksRemote(location, ""),
			ApplyURL:    absoluteURL(sourceURL, href),
			SourceURL:   sourceURL,
			ATSType:     model.ATSGreenhouse,
		})
	})
	if len(jobs) > 0 {
		return jobs, nil
	}

	return heuristicJob(doc, sourceURL, model.ATSGreenhouse), nil
}
