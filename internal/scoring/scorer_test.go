package scoring

import (
	"testing"
	"time"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

var (
	testEquipment = []freight.EquipmentType{
		freight.EquipmentDryVan, freight.EquipmentReefer,
		freight.EquipmentFlatbed, freight.EquipmentStepDeck,
	}
	testStates = []string{
		"TX", "CA", "FL", "IL", "GA", "OH", "PA", "NY", "NC", "TN",
		"AZ", "NJ", "MI", "IN", "MO", "WI", "MN", "CO", "AL", "LA",
		"SC", "KY", "OK", "WA", "OR", "NV", "VA", "MD", "MA", "CT",
	}
	testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
)

func testScorer(t *testing.T, opts ...Option) *Scorer {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	s, err := NewScorer(DefaultWeights(), testEquipment, testStates, opts...)
	if err != nil {
		t.Fatalf("building scorer: %v", err)
	}
	return s
}

func ownerOperatorLead() *freight.Lead {
	lead := freight.NewLead("New Owner Operator LLC", freight.SourceRegistry)
	lead.Contact = freight.Contact{PhonePrimary: "5551234567", Email: "test@example.com"}
	lead.Authority = freight.Authority{
		MCNumber:    "1234567",
		DOTNumber:   "7654321",
		GrantedDate: testNow.AddDate(0, 0, -20),
	}
	lead.Insurance = freight.Insurance{LiabilityCoverage: 1_000_000, CargoCoverage: 100_000}
	lead.Fleet = freight.Fleet{
		TruckCount:      1,
		EquipmentTypes:  []freight.EquipmentType{freight.EquipmentDryVan},
		OperatingStates: []string{"TX", "OK", "LA"},
		HomeBaseState:   "TX",
	}
	return lead
}

func TestNewScorerRejectsInvalidWeights(t *testing.T) {
	bad := DefaultWeights()
	bad.FleetSize = 0.5

	if _, err := NewScorer(bad, testEquipment, testStates); err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}

func TestScoreOwnerOperator(t *testing.T) {
	s := testScorer(t)
	lead := ownerOperatorLead()

	total, b := s.Score(lead)

	if b.AuthorityAge != 1.0 {
		t.Fatalf("expected authority age factor 1.0 for 20 day old authority, got %v", b.AuthorityAge)
	}
	if b.FleetSize != 1.0 {
		t.Fatalf("expected fleet factor 1.0 for single truck, got %v", b.FleetSize)
	}
	if b.Insurance != 0.75 {
		t.Fatalf("expected insurance factor 0.75 for unverified minimum coverage, got %v", b.Insurance)
	}
	if b.Safety != 0.5 {
		t.Fatalf("expected neutral safety factor 0.5 for missing data, got %v", b.Safety)
	}
	if b.EquipmentMatch != 0.625 {
		t.Fatalf("expected equipment factor 0.625 for one of four target types, got %v", b.EquipmentMatch)
	}
	if b.Location != 0.85 {
		t.Fatalf("expected location factor 0.85 for three matching states, got %v", b.Location)
	}
	if b.ContactQuality != 0.8 {
		t.Fatalf("expected contact factor 0.8 for phone plus email, got %v", b.ContactQuality)
	}
	if total != 0.796 {
		t.Fatalf("expected total 0.796, got %v", total)
	}

	// Score must not mutate the lead.
	if lead.Score != 0 || lead.IsQualified {
		t.Fatal("Score must not write qualification fields")
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	s := testScorer(t)
	lead := ownerOperatorLead()

	first, _ := s.Score(lead)
	second, _ := s.Score(lead)
	if first != second {
		t.Fatalf("scores differ across calls: %v vs %v", first, second)
	}
}

func TestQualifyOwnerOperator(t *testing.T) {
	s := testScorer(t)
	lead := ownerOperatorLead()

	s.Qualify(lead)
	if !lead.IsQualified {
		t.Fatalf("expected qualification, reason: %s", lead.DisqualificationReason)
	}
	if lead.Score != 0.796 {
		t.Fatalf("expected stored score 0.796, got %v", lead.Score)
	}
	if lead.ScoreBreakdown["fleet_size"] != 1.0 {
		t.Fatalf("expected fleet factor in stored breakdown, got %v", lead.ScoreBreakdown["fleet_size"])
	}
}

func TestQualifyInsuranceHardFloor(t *testing.T) {
	s := testScorer(t)

	// Everything else is perfect but liability is half the minimum.
	lead := ownerOperatorLead()
	lead.Insurance = freight.Insurance{LiabilityCoverage: 500_000, CargoCoverage: 100_000, Verified: true}

	s.Qualify(lead)
	if lead.IsQualified {
		t.Fatal("below-minimum insurance must never qualify")
	}
	if lead.DisqualificationReason != "Insurance does not meet minimum requirements" {
		t.Fatalf("unexpected reason: %q", lead.DisqualificationReason)
	}
}

func TestQualifyEquipmentHardZero(t *testing.T) {
	s := testScorer(t)
	lead := ownerOperatorLead()
	lead.Fleet.EquipmentTypes = []freight.EquipmentType{freight.EquipmentTanker}

	s.Qualify(lead)
	if lead.IsQualified {
		t.Fatal("no matching equipment must never qualify")
	}
	if lead.DisqualificationReason != "No matching equipment types for dispatch" {
		t.Fatalf("unexpected reason: %q", lead.DisqualificationReason)
	}
}

func TestQualifyContactHardZero(t *testing.T) {
	s := testScorer(t)
	lead := ownerOperatorLead()
	lead.Contact = freight.Contact{}
	lead.OwnerName = ""

	s.Qualify(lead)
	if lead.IsQualified {
		t.Fatal("missing contact info must never qualify")
	}
	if lead.DisqualificationReason != "Missing required contact information" {
		t.Fatalf("unexpected reason: %q", lead.DisqualificationReason)
	}
}

func TestQualifyBelowThreshold(t *testing.T) {
	s := testScorer(t)

	lead := freight.NewLead("Big Fleet Inc", freight.SourceLoadBoard)
	lead.Contact = freight.Contact{PhonePrimary: "5559876543"}
	lead.Authority = freight.Authority{GrantedDate: testNow.AddDate(0, 0, -800)}
	lead.Insurance = freight.Insurance{LiabilityCoverage: 1_000_000, CargoCoverage: 100_000}
	lead.Fleet = freight.Fleet{
		TruckCount:      100,
		EquipmentTypes:  []freight.EquipmentType{freight.EquipmentDryVan},
		OperatingStates: []string{"AK"},
	}

	s.Qualify(lead)
	if lead.IsQualified {
		t.Fatal("expected disqualification below threshold")
	}
	if lead.Score != 0.421 {
		t.Fatalf("expected score 0.421, got %v", lead.Score)
	}
	if lead.DisqualificationReason != "Lead score 0.42 below threshold 0.6" {
		t.Fatalf("unexpected reason: %q", lead.DisqualificationReason)
	}
}

func TestQualifyIsRepeatable(t *testing.T) {
	s := testScorer(t)
	lead := ownerOperatorLead()

	s.Qualify(lead)
	firstScore := lead.Score
	s.Qualify(lead)
	if lead.Score != firstScore {
		t.Fatalf("requalifying changed the score: %v vs %v", firstScore, lead.Score)
	}
	if !lead.IsQualified {
		t.Fatal("requalifying flipped the outcome")
	}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	s := testScorer(t)

	strong := ownerOperatorLead()
	weak := ownerOperatorLead()
	weak.CompanyName = "Old Large Fleet"
	weak.Authority.GrantedDate = testNow.AddDate(-3, 0, 0)
	weak.Fleet.TruckCount = 60

	ranked := s.Rank([]*freight.Lead{weak, strong})
	if ranked[0].CompanyName != "New Owner Operator LLC" {
		t.Fatalf("expected strongest lead first, got %s", ranked[0].CompanyName)
	}
	if ranked[0].Score < ranked[1].Score {
		t.Fatal("ranked leads not in descending score order")
	}
}

func TestPartialDataDegradesToDefaults(t *testing.T) {
	s := testScorer(t)

	lead := freight.NewLead("Sparse Records Trucking", freight.SourceCSVImport)
	lead.Contact.PhonePrimary = "5550001111"
	lead.Insurance = freight.Insurance{LiabilityCoverage: 1_000_000, CargoCoverage: 100_000}

	_, b := s.Score(lead)
	if b.Safety != 0.5 {
		t.Fatalf("expected neutral safety for missing data, got %v", b.Safety)
	}
	if b.EquipmentMatch != 0.3 {
		t.Fatalf("expected 0.3 for unknown equipment, got %v", b.EquipmentMatch)
	}
	if b.AuthorityAge != 1.0 {
		t.Fatalf("expected 1.0 for unknown grant date (age 0), got %v", b.AuthorityAge)
	}
}

func TestSummarize(t *testing.T) {
	s := testScorer(t)

	strong := ownerOperatorLead()
	weak := ownerOperatorLead()
	weak.Insurance.LiabilityCoverage = 100_000

	leads := []*freight.Lead{strong, weak}
	s.Rank(leads)

	summary := Summarize(leads)
	if summary.Total != 2 {
		t.Fatalf("expected total 2, got %d", summary.Total)
	}
	if summary.Qualified != 1 || summary.Disqualified != 1 {
		t.Fatalf("expected 1 qualified and 1 disqualified, got %d/%d", summary.Qualified, summary.Disqualified)
	}
	if summary.QualificationRate != 0.5 {
		t.Fatalf("expected qualification rate 0.5, got %v", summary.QualificationRate)
	}
	if summary.TopScore != 0.796 {
		t.Fatalf("expected top score 0.796, got %v", summary.TopScore)
	}
}
