package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shortlist-group/jobscout/internal/model"
)

// parseJSONLD extracts JobPosting records from ld+json script blocks.
// It tolerates arrays, @graph wrappers, and mainEntity nesting.
func parseJSONLD(doc *goquery.Document, sourceURL string, ats model.ATSType) []model.ParsedJob {
	var jobs []model.ParsedJob

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		data, err := decodeJSONLD(raw)
		if err != nil {
			return
		}
		jobs = append(jobs, jobsFromJSONLD(data, sourceURL, ats)...)
	})

	return jobs
}

// decodeJSONLD strips comment wrappers and line separators that break
// encoding/json before unmarshalling.
func decodeJSONLD(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, " ", "")

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func jobsFromJSONLD(data any, sourceURL string, ats model.ATSType) []model.ParsedJob {
	var jobs []model.ParsedJob

	switch value := data.(type) {
	case []any:
		for _, item := range value {
			jobs = append(jobs, jobsFromJSONLD(item, sourceURL, ats)...)
		}
	case map[string]any:
		if typ := strings.ToLower(stringValue(value["@type"], value["type"])); typ == "jobposting" {
			if job, ok := jobFromPosting(value, sourceURL, ats); ok {
				jobs = append(jobs, job)
			}
			return jobs
		}
		if graph, ok := value["@graph"]; ok {
			jobs = append(jobs, jobsFromJSONLD(graph, sourceURL, ats)...)
		}
		if main, ok := value["mainEntity"]; ok {
			jobs = append(jobs, jobsFromJSONLD(main, sourceURL, ats)...)
		}
		if items, ok := value["itemListElement"]; ok {
			jobs = append(jobs, jobsFromJSONLD(items, sourceURL, ats)...)
		}
	}

	return jobs
}

func jobFromPosting(value map[string]any, sourceURL string, ats model.ATSType) (model.ParsedJob, bool) {
	job := model.ParsedJob{
		Title:       cleanText(stringValue(value["title"], value["name"])),
		CompanyName: cleanText(stringValue(mapValue(value["hiringOrganization"], "name"))),
		Location:    locationFromJSONLD(value["jobLocation"]),
		Description: cleanText(stringValue(value["description"])),
		ApplyURL:    stringValue(value["url"], value["@id"]),
		SourceURL:   sourceURL,
		ATSType:     ats,
	}
	if job.Title == "" {
		return model.ParsedJob{}, false
	}
	if job.ApplyURL == "" {
		job.ApplyURL = sourceURL
	}
	if posted := stringValue(value["datePosted"]); posted != "" {
		if ts, ok := parsePostedAt(posted); ok {
			job.PostedAt = &ts
		}
	}
	if locType := strings.ToUpper(stringValue(value["jobLocationType"])); locType == "TELECOMMUTE" {
		job.IsRemote = true
	} else {
		job.IsRemote = looksRemote(job.Location, job.Description)
	}
	return job, true
}

func locationFromJSONLD(value any) string {
	switch v := value.(type) {
	case []any:
		var parts []string
		for _, item := range v {
			if loc := locationFromJSONLD(item); loc != "" {
				parts = append(parts, loc)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		if address, ok := v["address"].(map[string]any); ok {
			return joinAddress(address)
		}
		return joinAddress(v)
	case string:
		return cleanText(v)
	}
	return ""
}

func joinAddress(value map[string]any) string {
	parts := []string{
		stringValue(value["addressLocality"]),
		stringValue(value["addressRegion"]),
		stringValue(value["addressCountry"]),
	}
	var cleaned []string
	for _, part := range parts {
		if part = cleanText(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return strings.Join(cleaned, ", ")
}

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case map[string]any:
			if name := stringValue(v["name"]); name != "" {
				return name
			}
		}
	}
	return ""
}

func mapValue(value any, key string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}
