package freight

import (
	"os"
	"path/filepath"
	"testing"
)

func testLoad() *Load {
	return NewLoad(
		Stop{City: "Dallas", State: "TX"},
		Stop{City: "Los Angeles", State: "CA"},
		"Electronics",
		EquipmentDryVan,
		3500,
		1400,
	)
}

func TestRatePerMile(t *testing.T) {
	load := testLoad()
	if got := load.RatePerMile(); got != 2.5 {
		t.Fatalf("expected rate per mile 2.5, got %v", got)
	}

	load.LoadedMiles = 0
	if got := load.RatePerMile(); got != 0 {
		t.Fatalf("expected rate per mile 0 for unknown miles, got %v", got)
	}

	load.LoadedMiles = 1400
	load.Rate = 3333
	if got := load.RatePerMile(); got != 2.38 {
		t.Fatalf("expected rate per mile rounded to 2.38, got %v", got)
	}
}

func TestLane(t *testing.T) {
	load := testLoad()
	if got := load.Lane(); got != "TX-CA" {
		t.Fatalf("expected lane TX-CA, got %q", got)
	}
}

func TestCalculateCommission(t *testing.T) {
	load := testLoad()
	commission := load.CalculateCommission()

	if commission != 245.00 {
		t.Fatalf("expected commission 245.00, got %v", commission)
	}
	if load.CommissionAmount != 245.00 {
		t.Fatalf("expected commission amount stored on load, got %v", load.CommissionAmount)
	}
	if load.CharityContribution != 12.25 {
		t.Fatalf("expected charity contribution 12.25, got %v", load.CharityContribution)
	}

	// Recomputing after a rate change must overwrite both amounts.
	load.Rate = 1999.99
	load.CalculateCommission()
	if load.CommissionAmount != 140.00 {
		t.Fatalf("expected commission 140.00 after rate change, got %v", load.CommissionAmount)
	}
	if load.CharityContribution != 7.00 {
		t.Fatalf("expected charity 7.00 after rate change, got %v", load.CharityContribution)
	}
}

func TestRejectForbidden(t *testing.T) {
	load := testLoad()
	load.RejectForbidden("Contains forbidden commodity: alcohol")

	if load.Status != LoadStatusRejectedForbidden {
		t.Fatalf("expected status %s, got %s", LoadStatusRejectedForbidden, load.Status)
	}
	if load.ComplianceVerdict != VerdictForbidden {
		t.Fatalf("expected verdict %s, got %s", VerdictForbidden, load.ComplianceVerdict)
	}
	if load.ComplianceReviewedAt.IsZero() {
		t.Fatal("expected compliance review timestamp to be set")
	}
	if load.ComplianceNotes == "" {
		t.Fatal("expected compliance notes to be set")
	}
}

func TestDeadheadRatio(t *testing.T) {
	load := testLoad()
	load.DeadheadMiles = 350
	if got := load.DeadheadRatio(); got != 0.25 {
		t.Fatalf("expected deadhead ratio 0.25, got %v", got)
	}

	load.LoadedMiles = 0
	if got := load.DeadheadRatio(); got != 0 {
		t.Fatalf("expected deadhead ratio 0 for unknown miles, got %v", got)
	}
}

func TestLoadsExcludeIDs(t *testing.T) {
	first := testLoad()
	second := testLoad()
	third := testLoad()
	loads := &Loads{Items: []*Load{first, second, third}}

	removed := loads.ExcludeIDs([]string{second.ID})
	if len(removed) != 1 || removed[0] != second.ID {
		t.Fatalf("expected removed ids [%s], got %v", second.ID, removed)
	}
	if loads.Len() != 2 {
		t.Fatalf("expected 2 loads left, got %d", loads.Len())
	}
	if loads.FindByID(second.ID) != nil {
		t.Fatal("excluded load still present")
	}
}

func TestExcludedLoadsFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exclude.json")

	loads := &Loads{Items: []*Load{testLoad()}}
	excluded := loads.ToExcluded("declined by operator")
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	got, err := GetExcludedLoadsFromFile(path)
	if err != nil {
		t.Fatalf("reading exclude file: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 excluded load, got %d", len(got.Items))
	}
	if got.Items[0].ID != loads.Items[0].ID {
		t.Fatalf("expected id %s, got %s", loads.Items[0].ID, got.Items[0].ID)
	}
	if got.Items[0].Reason != "declined by operator" {
		t.Fatalf("unexpected reason %q", got.Items[0].Reason)
	}
}

func TestExcludedLoadsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := GetExcludedLoadsFromFile(path)
	if err != nil {
		t.Fatalf("reading empty exclude file: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(got.Items))
	}
}
