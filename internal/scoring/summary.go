package scoring

import "github.com/faridlogistics/freightcrm/internal/freight"

// Summary aggregates qualification outcomes for a batch of scored
// leads.
type Summary struct {
	Total             int     `json:"total"`
	Qualified         int     `json:"qualified"`
	Disqualified      int     `json:"disqualified"`
	QualificationRate float64 `json:"qualification_rate"`
	AvgScore          float64 `json:"avg_score"`
	TopScore          float64 `json:"top_score"`

	Excellent int `json:"excellent"` // score >= 0.8
	Good      int `json:"good"`      // 0.6 <= score < 0.8
	Fair      int `json:"fair"`      // 0.4 <= score < 0.6
	Poor      int `json:"poor"`      // score < 0.4
}

// Summarize builds qualification statistics over already-scored leads.
func Summarize(leads []*freight.Lead) Summary {
	var s Summary
	s.Total = len(leads)
	if s.Total == 0 {
		return s
	}

	var sum float64
	for _, lead := range leads {
		if lead.IsQualified {
			s.Qualified++
		}
		sum += lead.Score
		if lead.Score > s.TopScore {
			s.TopScore = lead.Score
		}
		switch {
		case lead.Score >= 0.8:
			s.Excellent++
		case lead.Score >= 0.6:
			s.Good++
		case lead.Score >= 0.4:
			s.Fair++
		default:
			s.Poor++
		}
	}
	s.Disqualified = s.Total - s.Qualified
	s.QualificationRate = round3(float64(s.Qualified) / float64(s.Total))
	s.AvgScore = round3(sum / float64(s.Total))
	return s
}
