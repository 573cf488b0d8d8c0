// Package hunters collects carrier leads from external sources: CSV
// exports of carrier registries and the federal carrier registry API.
package hunters

import (
	"time"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

// LeadSink is where hunters persist what they find. Satisfied by
// store.Store.
type LeadSink interface {
	LeadExistsByMC(mcNumber string) (bool, error)
	SaveLead(lead *freight.Lead) error
}

// HuntResult is the outcome of one hunting run.
type HuntResult struct {
	Leads           []*freight.Lead
	TotalFound      int
	TotalProcessed  int
	TotalDuplicates int
	Errors          []string
	Source          freight.LeadSource
	StartedAt       time.Time
	CompletedAt     time.Time
}

func NewHuntResult(source freight.LeadSource) *HuntResult {
	return &HuntResult{Source: source, StartedAt: time.Now().UTC()}
}

// Complete stamps the end time and returns the result for chaining.
func (r *HuntResult) Complete() *HuntResult {
	r.CompletedAt = time.Now().UTC()
	return r
}

func (r *HuntResult) Duration() time.Duration {
	end := r.CompletedAt
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return end.Sub(r.StartedAt)
}

// SuccessRate is kept leads over rows processed.
func (r *HuntResult) SuccessRate() float64 {
	if r.TotalProcessed == 0 {
		return 0
	}
	return float64(len(r.Leads)) / float64(r.TotalProcessed)
}
