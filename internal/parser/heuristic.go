package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/shortlist-group/jobscout/internal/model"
)

// heuristicJob is the last-resort strategy: treat the page as a single
// posting built from its main heading and body text. Returns nothing when
// the page has no usable heading.
func heuristicJob(doc *goquery.Document, sourceURL string, ats model.ATSType) []model.ParsedJob {
	title := cleanText(doc.Find("h1").First().Text())
	if title == "" {
		title = cleanText(doc.Find("h2").First().Text())
	}
	if title == "" {
		return nil
	}

	body := doc.Find("main").First()
	if body.Length() == 0 {
		body = doc.Find("body").First()
	}
	description := cleanText(body.Text())
	if len(description) > 8000 {
		description = description[:8000]
	}

	location := ""
	doc.Find(`[class*="location"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		location = cleanText(s.Text())
		return location == ""
	})

	return []model.ParsedJob{{
		Title:       title,
		CompanyName: siteCompany(doc),
		Location:    location,
		IsRemote:    looksRemote(location, description),
		Description: description,
		ApplyURL:    sourceURL,
		SourceURL:   sourceURL,
		ATSType:     ats,
	}}
}
