// Package compliance classifies freight commodities against configured
// keyword sets. Classification is pure rule logic: a forbidden scan, a
// review scan, a permitted scan, then a needs-review default.
package compliance

import (
	"fmt"
	"strings"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

// Result is the outcome of classifying one commodity.
type Result struct {
	Verdict        freight.Verdict
	Reason         string
	MatchedKeyword string
	Confidence     float64
}

// Classifier evaluates commodities against its keyword sets. It holds
// no mutable state and is safe for concurrent use.
type Classifier struct {
	forbidden []string
	review    []string
	permitted []string
}

// NewClassifier builds a classifier from the given keyword sets.
// Keywords are normalized to lowercase once here.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		forbidden: normalize(cfg.ForbiddenKeywords),
		review:    normalize(cfg.ReviewKeywords),
		permitted: normalize(cfg.PermittedKeywords),
	}
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Classify checks a commodity name and optional description. Forbidden
// keywords win over review keywords, review over permitted, and an
// unrecognized commodity defaults to needs-review. Matching is
// substring containment over the lowercased combined text.
func (c *Classifier) Classify(commodity, description string) Result {
	combined := strings.ToLower(strings.TrimSpace(commodity)) + " " + strings.ToLower(strings.TrimSpace(description))

	for _, keyword := range c.forbidden {
		if strings.Contains(combined, keyword) {
			return Result{
				Verdict:        freight.VerdictForbidden,
				Reason:         fmt.Sprintf("Forbidden commodity detected: '%s' found in '%s'", keyword, commodity),
				MatchedKeyword: keyword,
				Confidence:     1.0,
			}
		}
	}

	for _, keyword := range c.review {
		if strings.Contains(combined, keyword) {
			return Result{
				Verdict:        freight.VerdictNeedsReview,
				Reason:         fmt.Sprintf("Manual review required: '%s' found - verify compliance", keyword),
				MatchedKeyword: keyword,
				Confidence:     0.5,
			}
		}
	}

	for _, keyword := range c.permitted {
		if strings.Contains(combined, keyword) {
			return Result{
				Verdict:        freight.VerdictPermitted,
				Reason:         fmt.Sprintf("Commodity verified permitted: matches '%s'", keyword),
				MatchedKeyword: keyword,
				Confidence:     0.95,
			}
		}
	}

	return Result{
		Verdict:    freight.VerdictNeedsReview,
		Reason:     fmt.Sprintf("Unrecognized commodity: '%s' - manual verification recommended", commodity),
		Confidence: 0.3,
	}
}

// ClassifyLoad classifies a load's commodity and writes the verdict
// back onto the load. A forbidden verdict also rejects the load; a
// rejected load never reaches matching.
func (c *Classifier) ClassifyLoad(load *freight.Load) Result {
	result := c.Classify(load.Commodity, load.CommodityDescription)

	if result.Verdict == freight.VerdictForbidden {
		load.RejectForbidden(result.Reason)
		return result
	}

	load.SetVerdict(result.Verdict, result.Reason)
	return result
}

// Partition classifies every load in place and splits the set by
// verdict.
type Partition struct {
	Permitted   []*freight.Load
	Forbidden   []*freight.Load
	NeedsReview []*freight.Load
}

func (c *Classifier) PartitionLoads(loads []*freight.Load) Partition {
	var p Partition
	for _, load := range loads {
		result := c.ClassifyLoad(load)
		switch result.Verdict {
		case freight.VerdictPermitted:
			p.Permitted = append(p.Permitted, load)
		case freight.VerdictForbidden:
			p.Forbidden = append(p.Forbidden, load)
		default:
			p.NeedsReview = append(p.NeedsReview, load)
		}
	}
	return p
}

// Stats summarizes a partition for reporting.
type Stats struct {
	Total         int     `json:"total"`
	Permitted     int     `json:"permitted"`
	Forbidden     int     `json:"forbidden"`
	NeedsReview   int     `json:"needs_review"`
	PermittedRate float64 `json:"permitted_rate"`
	RejectionRate float64 `json:"rejection_rate"`
}

func (p Partition) Stats() Stats {
	total := len(p.Permitted) + len(p.Forbidden) + len(p.NeedsReview)
	s := Stats{
		Total:       total,
		Permitted:   len(p.Permitted),
		Forbidden:   len(p.Forbidden),
		NeedsReview: len(p.NeedsReview),
	}
	if total > 0 {
		s.PermittedRate = round3(float64(s.Permitted) / float64(total))
		s.RejectionRate = round3(float64(s.Forbidden) / float64(total))
	}
	return s
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}
