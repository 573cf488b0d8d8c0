package freight

import (
	"strings"
	"testing"
	"time"
)

func TestInsuranceMeetsMinimum(t *testing.T) {
	cases := []struct {
		liability int
		cargo     int
		want      bool
	}{
		{1_000_000, 100_000, true},
		{2_000_000, 250_000, true},
		{500_000, 100_000, false},
		{1_000_000, 50_000, false},
		{0, 0, false},
	}

	for _, c := range cases {
		ins := Insurance{LiabilityCoverage: c.liability, CargoCoverage: c.cargo}
		if got := ins.MeetsMinimum(); got != c.want {
			t.Fatalf("MeetsMinimum(%d, %d) = %v, want %v", c.liability, c.cargo, got, c.want)
		}
	}
}

func TestAuthorityAgeDays(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	a := Authority{GrantedDate: now.AddDate(0, 0, -45)}
	if got := a.AgeDays(now); got != 45 {
		t.Fatalf("expected 45 days, got %d", got)
	}

	var unknown Authority
	if got := unknown.AgeDays(now); got != 0 {
		t.Fatalf("expected 0 days for unknown grant date, got %d", got)
	}

	future := Authority{GrantedDate: now.AddDate(0, 0, 10)}
	if got := future.AgeDays(now); got != 0 {
		t.Fatalf("expected 0 days for future grant date, got %d", got)
	}
}

func TestSafetyOverall(t *testing.T) {
	var nilSafety *Safety
	if _, ok := nilSafety.Overall(); ok {
		t.Fatal("expected no overall score for nil safety data")
	}

	empty := &Safety{}
	if _, ok := empty.Overall(); ok {
		t.Fatal("expected no overall score when all sub-scores are unknown")
	}

	a, b := 20.0, 40.0
	partial := &Safety{UnsafeDriving: &a, CrashIndicator: &b}
	got, ok := partial.Overall()
	if !ok {
		t.Fatal("expected overall score from partial data")
	}
	if got != 30.0 {
		t.Fatalf("expected overall 30.0, got %v", got)
	}
}

func TestQualifyAndDisqualify(t *testing.T) {
	lead := NewLead("Lone Star Freight LLC", SourceCSVImport)
	breakdown := map[string]float64{"insurance": 1.0, "fleet_size": 0.9}

	lead.Qualify(0.82, breakdown)
	if !lead.IsQualified {
		t.Fatal("expected lead to be qualified")
	}
	if lead.Status != LeadStatusQualified {
		t.Fatalf("expected status %s, got %s", LeadStatusQualified, lead.Status)
	}
	if lead.QualifiedAt.IsZero() {
		t.Fatal("expected qualification timestamp")
	}
	if lead.DisqualificationReason != "" {
		t.Fatalf("expected empty disqualification reason, got %q", lead.DisqualificationReason)
	}

	lead.Disqualify(0.41, breakdown, "Lead score 0.41 below threshold 0.6")
	if lead.IsQualified {
		t.Fatal("expected lead to be disqualified")
	}
	if lead.Status != LeadStatusRejected {
		t.Fatalf("expected status %s, got %s", LeadStatusRejected, lead.Status)
	}
	if lead.Score != 0.41 {
		t.Fatalf("expected failed score to be kept, got %v", lead.Score)
	}
}

func TestMarkContacted(t *testing.T) {
	lead := NewLead("Red River Carriers", SourceRegistry)
	lead.MarkContacted()

	if lead.ContactAttempts != 1 {
		t.Fatalf("expected 1 contact attempt, got %d", lead.ContactAttempts)
	}
	if lead.LastContactDate.IsZero() {
		t.Fatal("expected last contact date to be set")
	}
	if lead.Status != LeadStatusContacted {
		t.Fatalf("expected status %s, got %s", LeadStatusContacted, lead.Status)
	}

	lead.MarkContacted()
	if lead.ContactAttempts != 2 {
		t.Fatalf("expected 2 contact attempts, got %d", lead.ContactAttempts)
	}
}

func TestLeadEmbeddingText(t *testing.T) {
	lead := NewLead("Bluebonnet Logistics", SourceCSVImport)
	lead.Authority.MCNumber = "123456"
	lead.Fleet.TruckCount = 4
	lead.Fleet.EquipmentTypes = []EquipmentType{EquipmentDryVan, EquipmentReefer}
	lead.Fleet.OperatingStates = []string{"TX", "OK"}
	lead.Fleet.HomeBaseCity = "Waco"
	lead.Fleet.HomeBaseState = "TX"

	text := lead.EmbeddingText()
	for _, want := range []string{"Bluebonnet Logistics", "123456", "dry_van", "reefer", "Waco"} {
		if !strings.Contains(text, want) {
			t.Fatalf("embedding text missing %q: %s", want, text)
		}
	}
}

func TestLeadsQualified(t *testing.T) {
	a := NewLead("A", SourceCSVImport)
	b := NewLead("B", SourceCSVImport)
	b.IsQualified = true
	leads := &Leads{Items: []*Lead{a, b}}

	qualified := leads.Qualified()
	if len(qualified) != 1 || qualified[0].CompanyName != "B" {
		t.Fatalf("expected only lead B qualified, got %d", len(qualified))
	}
}
