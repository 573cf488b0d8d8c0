// Package dispatch ranks qualified carriers against loads. A match
// score is built from five additive factors (equipment, proximity,
// lane preference, fleet size, verification) and clamped to [0,1].
package dispatch

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/compliance"
	"github.com/faridlogistics/freightcrm/internal/freight"
)

// Defaults for match selection.
const (
	DefaultMatchLimit = 5
	DefaultMinScore   = 0.3
)

// Options bound how many matches are returned and the score floor.
type Options struct {
	Limit    int     `mapstructure:"limit"`
	MinScore float64 `mapstructure:"min_score"`
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultMatchLimit
	}
	if o.MinScore <= 0 {
		o.MinScore = DefaultMinScore
	}
	return o
}

// Engine matches carriers to loads. The compliance classifier runs
// first: a forbidden load is rejected and never scored against
// carriers.
type Engine struct {
	classifier *compliance.Classifier
	opts       Options
	logger     *zap.Logger
}

// NewEngine builds a match engine.
func NewEngine(classifier *compliance.Classifier, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		classifier: classifier,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// FindMatches ranks the given carriers against one load. The load's
// verdict and commission fields are updated in place. Ties in score
// break by MC number ascending so results are deterministic.
func (e *Engine) FindMatches(load *freight.Load, carriers []*freight.Lead) *freight.MatchReport {
	verdict := e.classifier.ClassifyLoad(load)

	report := &freight.MatchReport{
		LoadID:               load.ID,
		Lane:                 load.Lane(),
		Commodity:            load.Commodity,
		Verdict:              verdict.Verdict,
		VerdictReason:        verdict.Reason,
		Rate:                 load.Rate,
		RatePerMile:          load.RatePerMile(),
		CandidatesConsidered: len(carriers),
		Matches:              []*freight.Match{},
	}

	if verdict.Verdict == freight.VerdictForbidden {
		e.logger.Info("load rejected before matching",
			zap.String("load_id", load.ID),
			zap.String("commodity", load.Commodity),
			zap.String("reason", verdict.Reason),
		)
		report.CandidatesConsidered = 0
		return report
	}

	// Commission is derived from the load alone, so compute it once
	// per load rather than per candidate.
	load.CalculateCommission()
	report.CommissionAmount = load.CommissionAmount
	report.CharityContribution = load.CharityContribution

	for _, carrier := range carriers {
		score, reasons, distance := e.scoreCarrier(load, carrier)
		if score < e.opts.MinScore {
			continue
		}
		report.Matches = append(report.Matches, &freight.Match{
			LeadID:      carrier.ID,
			CompanyName: carrier.CompanyName,
			MCNumber:    carrier.Authority.MCNumber,
			Score:       score,
			Reasons:     reasons,
			DistanceMi:  distance,
			Phone:       carrier.Contact.PhonePrimary,
			Email:       carrier.Contact.Email,
		})
	}

	sort.SliceStable(report.Matches, func(i, j int) bool {
		if report.Matches[i].Score != report.Matches[j].Score {
			return report.Matches[i].Score > report.Matches[j].Score
		}
		return report.Matches[i].MCNumber < report.Matches[j].MCNumber
	})
	if len(report.Matches) > e.opts.Limit {
		report.Matches = report.Matches[:e.opts.Limit]
	}

	e.logger.Debug("matched load",
		zap.String("load_id", load.ID),
		zap.String("lane", report.Lane),
		zap.Int("candidates", len(carriers)),
		zap.Int("matches", len(report.Matches)),
	)

	return report
}

// FindMatchesAll builds a report per load in input order.
func (e *Engine) FindMatchesAll(loads []*freight.Load, carriers []*freight.Lead) []*freight.MatchReport {
	reports := make([]*freight.MatchReport, 0, len(loads))
	for _, load := range loads {
		reports = append(reports, e.FindMatches(load, carriers))
	}
	return reports
}

func (e *Engine) scoreCarrier(load *freight.Load, carrier *freight.Lead) (float64, []string, float64) {
	score := 0.0
	reasons := []string{}

	// Equipment match (40% weight)
	hasExact := false
	for _, eq := range carrier.Fleet.EquipmentTypes {
		if eq == load.EquipmentType {
			hasExact = true
			break
		}
	}
	switch {
	case hasExact:
		score += 0.4
		reasons = append(reasons, fmt.Sprintf("Equipment match: %s", load.EquipmentType))
	case len(carrier.Fleet.EquipmentTypes) > 0:
		held := carrier.Fleet.EquipmentTypes
		if len(held) > 2 {
			held = held[:2]
		}
		names := make([]string, len(held))
		for i, eq := range held {
			names[i] = string(eq)
		}
		score += 0.1
		reasons = append(reasons, fmt.Sprintf("Has equipment: %s", strings.Join(names, ", ")))
	}

	// Origin proximity (30% weight)
	distance := 0.0
	if carrier.Fleet.HomeBaseState != "" {
		distance = estimateDistance(carrier.Fleet.HomeBaseState, load.Origin.State)
		switch {
		case distance < 100:
			score += 0.3
			reasons = append(reasons, fmt.Sprintf("Near origin (%s)", carrier.Fleet.HomeBaseState))
		case distance < 300:
			score += 0.2
			reasons = append(reasons, fmt.Sprintf("Reasonable distance (%d mi)", int(distance)))
		case distance < 500:
			score += 0.1
			reasons = append(reasons, fmt.Sprintf("Moderate distance (%d mi)", int(distance)))
		}
	}

	// Lane preference (15% weight)
	lane := load.Lane()
	if containsString(carrier.Fleet.PreferredLanes, lane) {
		score += 0.15
		reasons = append(reasons, fmt.Sprintf("Preferred lane: %s", lane))
	} else if containsString(carrier.Fleet.OperatingStates, load.Destination.State) {
		score += 0.08
		reasons = append(reasons, fmt.Sprintf("Operates in %s", load.Destination.State))
	}

	// Fleet size bonus (10% weight)
	switch {
	case carrier.Fleet.TruckCount >= 3:
		score += 0.1
		reasons = append(reasons, fmt.Sprintf("Fleet size: %d trucks", carrier.Fleet.TruckCount))
	case carrier.Fleet.TruckCount >= 1:
		score += 0.05
	}

	// Verification bonus (5% weight)
	if carrier.SocialVerified {
		score += 0.03
		reasons = append(reasons, "Verified (social)")
	}
	if carrier.HighIntent {
		score += 0.02
		reasons = append(reasons, "High intent")
	}

	return math.Min(1.0, score), reasons, distance
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
