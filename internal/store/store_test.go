package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "crm.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func storedLead(name, mc string) *freight.Lead {
	lead := freight.NewLead(name, freight.SourceCSVImport)
	lead.Authority.MCNumber = mc
	lead.Contact.PhonePrimary = "5551234567"
	return lead
}

func TestSaveAndGetLead(t *testing.T) {
	s := testStore(t)
	lead := storedLead("Lone Star Freight LLC", "123456")
	lead.Fleet.TruckCount = 3

	if err := s.SaveLead(lead); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetLead(lead.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompanyName != lead.CompanyName {
		t.Fatalf("expected company %q, got %q", lead.CompanyName, got.CompanyName)
	}
	if got.Fleet.TruckCount != 3 {
		t.Fatalf("nested fields lost in round trip: %+v", got.Fleet)
	}
}

func TestGetLeadMissing(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetLead("nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSaveLeadUpsert(t *testing.T) {
	s := testStore(t)
	lead := storedLead("Bluebonnet Logistics", "222333")

	if err := s.SaveLead(lead); err != nil {
		t.Fatalf("save: %v", err)
	}
	lead.Qualify(0.81, map[string]float64{"fleet_size": 1.0})
	if err := s.SaveLead(lead); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := s.GetLead(lead.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsQualified || got.Score != 0.81 {
		t.Fatalf("upsert did not replace the record: %+v", got)
	}
}

func TestSaveLeadsBatch(t *testing.T) {
	s := testStore(t)
	leads := []*freight.Lead{
		storedLead("Carrier One", "100"),
		storedLead("Carrier Two", "200"),
		storedLead("Carrier Three", "300"),
	}

	saved, err := s.SaveLeads(leads)
	if err != nil {
		t.Fatalf("batch save: %v", err)
	}
	if saved != 3 {
		t.Fatalf("expected 3 saved, got %d", saved)
	}

	counts, err := s.CountLeads()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[freight.LeadStatusNew] != 3 {
		t.Fatalf("expected 3 new leads, got %d", counts[freight.LeadStatusNew])
	}
}

func TestLeadExistsByMC(t *testing.T) {
	s := testStore(t)
	if err := s.SaveLead(storedLead("Carrier One", "424242")); err != nil {
		t.Fatalf("save: %v", err)
	}

	exists, err := s.LeadExistsByMC("424242")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected lead to exist by MC")
	}

	exists, err = s.LeadExistsByMC("999999")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected no lead for unknown MC")
	}

	// Carriers without an MC never collide with each other.
	exists, err = s.LeadExistsByMC("")
	if err != nil || exists {
		t.Fatalf("empty MC should never match, got %v %v", exists, err)
	}
}

func TestListLeadsFilters(t *testing.T) {
	s := testStore(t)

	strong := storedLead("Strong Carrier", "1")
	strong.Qualify(0.9, nil)
	mid := storedLead("Mid Carrier", "2")
	mid.Qualify(0.65, nil)
	weak := storedLead("Weak Carrier", "3")
	weak.Disqualify(0.3, nil, "Lead score 0.30 below threshold 0.6")

	if _, err := s.SaveLeads([]*freight.Lead{strong, mid, weak}); err != nil {
		t.Fatalf("save: %v", err)
	}

	qualified, err := s.ListLeads(LeadFilter{QualifiedOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(qualified) != 2 {
		t.Fatalf("expected 2 qualified leads, got %d", len(qualified))
	}
	if qualified[0].Score < qualified[1].Score {
		t.Fatal("leads not ordered by score descending")
	}

	top, err := s.ListLeads(LeadFilter{QualifiedOnly: true, MinScore: 0.8, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(top) != 1 || top[0].CompanyName != "Strong Carrier" {
		t.Fatalf("min score filter failed: %d results", len(top))
	}
}

func TestSaveAndListLoads(t *testing.T) {
	s := testStore(t)

	open := freight.NewLoad(freight.Stop{State: "TX"}, freight.Stop{State: "CA"}, "Electronics", freight.EquipmentDryVan, 3500, 1400)
	rejected := freight.NewLoad(freight.Stop{State: "TX"}, freight.Stop{State: "FL"}, "Beer", freight.EquipmentReefer, 4000, 1100)
	rejected.RejectForbidden("Forbidden commodity detected: 'beer' found in 'Beer'")

	if _, err := s.SaveLoads([]*freight.Load{open, rejected}); err != nil {
		t.Fatalf("save: %v", err)
	}

	available, err := s.ListAvailableLoads(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(available) != 1 || available[0].ID != open.ID {
		t.Fatalf("expected only the open load, got %d", len(available))
	}

	counts, err := s.CountLoads()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[freight.LoadStatusAvailable] != 1 || counts[freight.LoadStatusRejectedForbidden] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	got, err := s.GetLoad(rejected.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ComplianceVerdict != freight.VerdictForbidden {
		t.Fatalf("verdict lost in round trip: %s", got.ComplianceVerdict)
	}
}
