package freight

import "fmt"

// Match is a single carrier candidate ranked against a load.
type Match struct {
	LeadID      string   `json:"lead_id"`
	CompanyName string   `json:"company_name"`
	MCNumber    string   `json:"mc_number,omitempty"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons"`
	DistanceMi  float64  `json:"distance_mi"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
}

// MatchReport is the outcome of matching carriers to one load. A
// forbidden load produces a report with the verdict set and no matches.
type MatchReport struct {
	LoadID              string   `json:"load_id"`
	Lane                string   `json:"lane"`
	Commodity           string   `json:"commodity"`
	Verdict             Verdict  `json:"verdict"`
	VerdictReason       string   `json:"verdict_reason,omitempty"`
	Rate                float64  `json:"rate"`
	RatePerMile         float64  `json:"rate_per_mile"`
	CommissionAmount    float64  `json:"commission_amount"`
	CharityContribution float64  `json:"charity_contribution"`
	Matches             []*Match `json:"matches"`
	CandidatesConsidered int     `json:"candidates_considered"`
}

func (r *MatchReport) HasMatches() bool {
	return len(r.Matches) > 0
}

// Summary is a one-line description for logs and the interactive menu.
func (r *MatchReport) Summary() string {
	return fmt.Sprintf("%s %s $%.2f ($%.2f/mi): %d match(es)",
		r.Lane, r.Commodity, r.Rate, r.RatePerMile, len(r.Matches))
}

// Report groups matches by company for display, mirroring how results
// are presented before dispatch approval.
func (r *MatchReport) ByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, m := range r.Matches {
		key := fmt.Sprintf("%s (%s)", m.CompanyName, m.MCNumber)
		report[key] = append(report[key], map[string]string{
			"score":    fmt.Sprintf("%.2f", m.Score),
			"distance": fmt.Sprintf("%.0f mi", m.DistanceMi),
			"reasons":  fmt.Sprint(m.Reasons),
			"phone":    m.Phone,
			"email":    m.Email,
		})
	}
	return report
}
