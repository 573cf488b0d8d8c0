// Package scoring qualifies carrier leads. Each lead gets a weighted
// score across seven factors, then passes through hard disqualifiers
// and a threshold check.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

// DefaultQualificationThreshold is the minimum score to qualify.
const DefaultQualificationThreshold = 0.6

// Breakdown carries per-factor scores plus the raw facts behind them.
type Breakdown struct {
	AuthorityAge   float64 `json:"authority_age"`
	FleetSize      float64 `json:"fleet_size"`
	Insurance      float64 `json:"insurance"`
	Safety         float64 `json:"safety"`
	EquipmentMatch float64 `json:"equipment_match"`
	Location       float64 `json:"location"`
	ContactQuality float64 `json:"contact_quality"`

	AuthorityAgeDays      int      `json:"authority_age_days"`
	TruckCount            int      `json:"truck_count"`
	MeetsInsuranceMinimum bool     `json:"meets_insurance_minimum"`
	MatchingEquipment     []string `json:"matching_equipment"`
	MatchingStates        []string `json:"matching_states"`
}

// ToMap flattens the factor scores for storage on the lead.
func (b Breakdown) ToMap() map[string]float64 {
	return map[string]float64{
		"authority_age":   b.AuthorityAge,
		"fleet_size":      b.FleetSize,
		"insurance":       b.Insurance,
		"safety":          b.Safety,
		"equipment_match": b.EquipmentMatch,
		"location":        b.Location,
		"contact_quality": b.ContactQuality,
	}
}

// Scorer scores and qualifies leads. It holds no mutable state and is
// safe for concurrent use; the only mutation is the explicit write of
// qualification fields in Qualify.
type Scorer struct {
	weights         Weights
	threshold       float64
	targetEquipment map[freight.EquipmentType]struct{}
	targetStates    map[string]struct{}
	now             func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithThreshold overrides the qualification threshold.
func WithThreshold(t float64) Option {
	return func(s *Scorer) { s.threshold = t }
}

// WithClock overrides the clock used for authority age.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// NewScorer builds a scorer. It fails fast on invalid weights.
func NewScorer(weights Weights, targetEquipment []freight.EquipmentType, targetStates []string, opts ...Option) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		weights:         weights,
		threshold:       DefaultQualificationThreshold,
		targetEquipment: make(map[freight.EquipmentType]struct{}, len(targetEquipment)),
		targetStates:    make(map[string]struct{}, len(targetStates)),
		now:             time.Now,
	}
	for _, e := range targetEquipment {
		s.targetEquipment[e] = struct{}{}
	}
	for _, st := range targetStates {
		s.targetStates[st] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Score computes the weighted total and per-factor breakdown for a
// lead. It never mutates the lead; the total is rounded to three
// decimals.
func (s *Scorer) Score(lead *freight.Lead) (float64, Breakdown) {
	ageDays := lead.Authority.AgeDays(s.now())

	b := Breakdown{
		AuthorityAge:   scoreAuthorityAge(ageDays),
		FleetSize:      scoreFleetSize(lead.Fleet.TruckCount),
		Insurance:      s.scoreInsurance(lead),
		Safety:         scoreSafety(lead.Safety),
		EquipmentMatch: s.scoreEquipmentMatch(lead),
		Location:       s.scoreLocation(lead),
		ContactQuality: scoreContactQuality(lead),

		AuthorityAgeDays:      ageDays,
		TruckCount:            lead.Fleet.TruckCount,
		MeetsInsuranceMinimum: lead.Insurance.MeetsMinimum(),
		MatchingEquipment:     s.matchingEquipment(lead),
		MatchingStates:        s.matchingStates(lead),
	}

	total := b.AuthorityAge*s.weights.AuthorityAge +
		b.FleetSize*s.weights.FleetSize +
		b.Insurance*s.weights.Insurance +
		b.Safety*s.weights.Safety +
		b.EquipmentMatch*s.weights.EquipmentMatch +
		b.Location*s.weights.Location +
		b.ContactQuality*s.weights.ContactQuality

	return round3(total), b
}

// Qualify scores a lead and writes the outcome back onto it. Hard
// disqualifiers are checked in a fixed order before the threshold, so
// the recorded reason is deterministic.
func (s *Scorer) Qualify(lead *freight.Lead) {
	total, b := s.Score(lead)

	var reason string
	switch {
	case b.Insurance == 0:
		reason = "Insurance does not meet minimum requirements"
	case b.EquipmentMatch == 0:
		reason = "No matching equipment types for dispatch"
	case b.ContactQuality == 0:
		reason = "Missing required contact information"
	case total < s.threshold:
		reason = fmt.Sprintf("Lead score %.2f below threshold %v", total, s.threshold)
	}

	if reason != "" {
		lead.Disqualify(total, b.ToMap(), reason)
		return
	}
	lead.Qualify(total, b.ToMap())
}

// Rank qualifies every lead and returns them sorted by score
// descending. Leads are mutated in place; ties keep input order.
func (s *Scorer) Rank(leads []*freight.Lead) []*freight.Lead {
	for _, lead := range leads {
		s.Qualify(lead)
	}
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].Score > leads[j].Score
	})
	return leads
}

func scoreAuthorityAge(ageDays int) float64 {
	switch {
	case ageDays < 30:
		return 1.0 // brand new, most receptive
	case ageDays < 60:
		return 0.95
	case ageDays < 90:
		return 0.90
	case ageDays < 180:
		return 0.80
	case ageDays < 365:
		return 0.60
	case ageDays < 730:
		return 0.40
	default:
		return 0.20 // established, unlikely to switch
	}
}

func scoreFleetSize(truckCount int) float64 {
	switch {
	case truckCount == 1:
		return 1.0 // solo owner-operator
	case truckCount == 2:
		return 0.95
	case truckCount >= 3 && truckCount <= 5:
		return 0.90
	case truckCount >= 6 && truckCount <= 10:
		return 0.75
	case truckCount >= 11 && truckCount <= 20:
		return 0.50
	case truckCount >= 21 && truckCount <= 50:
		return 0.35
	default:
		return 0.20 // large fleets run in-house dispatch
	}
}

// Below-minimum coverage is a hard zero regardless of the other
// insurance facts.
func (s *Scorer) scoreInsurance(lead *freight.Lead) float64 {
	if !lead.Insurance.MeetsMinimum() {
		return 0.0
	}
	if lead.Insurance.Verified {
		return 1.0
	}
	if lead.Insurance.LiabilityCoverage >= 1_500_000 {
		return 0.90
	}
	return 0.75
}

// CSA-style scores run 0-100 with lower meaning safer. Missing data
// scores neutral.
func scoreSafety(safety *freight.Safety) float64 {
	overall, ok := safety.Overall()
	if !ok {
		return 0.5
	}
	switch {
	case overall < 30:
		return 1.0
	case overall < 50:
		return 0.85
	case overall < 70:
		return 0.60
	case overall < 85:
		return 0.30
	default:
		return 0.10
	}
}

func (s *Scorer) scoreEquipmentMatch(lead *freight.Lead) float64 {
	if len(lead.Fleet.EquipmentTypes) == 0 {
		return 0.3 // unknown equipment
	}
	matching := len(s.matchingEquipment(lead))
	if matching == 0 {
		return 0.0
	}
	matchRatio := float64(matching) / float64(len(s.targetEquipment))
	return math.Min(1.0, 0.5+matchRatio*0.5)
}

func (s *Scorer) scoreLocation(lead *freight.Lead) float64 {
	matching := len(s.matchingStates(lead))
	switch {
	case matching >= 5:
		return 1.0
	case matching >= 3:
		return 0.85
	case matching >= 1:
		return 0.70
	}
	if _, ok := s.targetStates[lead.Fleet.HomeBaseState]; ok {
		return 0.50
	}
	return 0.20
}

func scoreContactQuality(lead *freight.Lead) float64 {
	score := 0.0
	if lead.Contact.PhonePrimary != "" {
		score += 0.50
	}
	if lead.Contact.Email != "" {
		score += 0.30
	}
	if lead.Contact.PhoneSecondary != "" {
		score += 0.15
	}
	if lead.OwnerName != "" {
		score += 0.05
	}
	return math.Min(1.0, score)
}

func (s *Scorer) matchingEquipment(lead *freight.Lead) []string {
	seen := make(map[string]struct{})
	matching := make([]string, 0)
	for _, e := range lead.Fleet.EquipmentTypes {
		if _, ok := s.targetEquipment[e]; !ok {
			continue
		}
		if _, dup := seen[string(e)]; dup {
			continue
		}
		seen[string(e)] = struct{}{}
		matching = append(matching, string(e))
	}
	sort.Strings(matching)
	return matching
}

func (s *Scorer) matchingStates(lead *freight.Lead) []string {
	seen := make(map[string]struct{})
	matching := make([]string, 0)
	for _, st := range lead.Fleet.OperatingStates {
		if _, ok := s.targetStates[st]; !ok {
			continue
		}
		if _, dup := seen[st]; dup {
			continue
		}
		seen[st] = struct{}{}
		matching = append(matching, st)
	}
	sort.Strings(matching)
	return matching
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
