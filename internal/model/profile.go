package model

// ResumeProfile holds the candidate facts used for scoring and claim
// validation. It is the only source of truth for resume claims and is
// never embellished by the pipeline.
type ResumeProfile struct {
	Skills       []string `json:"skills"`
	Tools        []string `json:"tools"`
	Roles        []string `json:"roles"`
	Seniority    string   `json:"seniority"`
	Industries   []string `json:"industries"`
	Keywords     []string `json:"keywords"`
	Locations    []string `json:"locations"`
	Achievements []string `json:"achievements"`
}

// ListFields returns the profile's list-typed field values keyed by name.
// QC requires every one of these to be present as a list.
func (p ResumeProfile) ListFields() map[string][]string {
	return map[string][]string{
		"skills":       p.Skills,
		"tools":        p.Tools,
		"roles":        p.Roles,
		"industries":   p.Industries,
		"keywords":     p.Keywords,
		"locations":    p.Locations,
		"achievements": p.Achievements,
	}
}

// JobPreferences captures the candidate's search constraints.
type JobPreferences struct {
	RemoteOnly       bool     `json:"remote_only"`
	ContractOK       bool     `json:"contract_ok"`
	PreferredTitles  []string `json:"preferred_titles"`
	IndustriesPrefer []string `json:"industries_prefer"`
	IndustriesAvoid  []string `json:"industries_avoid"`
	SalaryMin        *int     `json:"salary_min,omitempty"`
	Geo              string   `json:"geo,omitempty"`
}
