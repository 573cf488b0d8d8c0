package outreach

import (
	"strings"
	"testing"
	"time"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testSequencer(t *testing.T) *Sequencer {
	t.Helper()
	s, err := NewSequencer(nil, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("building sequencer: %v", err)
	}
	return s
}

func contactableLead() *freight.Lead {
	lead := freight.NewLead("Lone Star Trucking LLC", freight.SourceCSVImport)
	lead.OwnerName = "Maria"
	lead.Contact.Email = "dispatch@lonestar.example"
	lead.Authority.MCNumber = "123456"
	lead.Fleet = freight.Fleet{
		TruckCount:     3,
		EquipmentTypes: []freight.EquipmentType{freight.EquipmentDryVan},
		HomeBaseState:  "TX",
	}
	return lead
}

func TestStageFor(t *testing.T) {
	lead := contactableLead()

	stages := []Stage{StageInitial, StageFollowUp1, StageFollowUp2, StageFollowUp3}
	for i, want := range stages {
		lead.ContactAttempts = i
		stage, ok := StageFor(lead)
		if !ok || stage != want {
			t.Fatalf("attempts=%d: got %q/%v, want %q", i, stage, ok, want)
		}
	}

	lead.ContactAttempts = 4
	if _, ok := StageFor(lead); ok {
		t.Fatal("expected sequence exhausted after four attempts")
	}
}

func TestShouldContact(t *testing.T) {
	s := testSequencer(t)

	tests := []struct {
		name   string
		mutate func(*freight.Lead)
		want   bool
		reason string
	}{
		{"eligible", func(l *freight.Lead) {}, true, "ok"},
		{
			"do not email",
			func(l *freight.Lead) { l.Contact.DoNotEmail = true },
			false, "do_not_email flag set",
		},
		{
			"no email",
			func(l *freight.Lead) { l.Contact.Email = "" },
			false, "no email address",
		},
		{
			"max attempts",
			func(l *freight.Lead) { l.ContactAttempts = 4 },
			false, "max contact attempts reached",
		},
		{
			"recent contact",
			func(l *freight.Lead) { l.LastContactDate = testNow.AddDate(0, 0, -1) },
			false, "contacted 1 days ago (min 3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := contactableLead()
			tt.mutate(lead)
			got, reason := s.ShouldContact(lead)
			if got != tt.want || reason != tt.reason {
				t.Fatalf("got %v/%q, want %v/%q", got, reason, tt.want, tt.reason)
			}
		})
	}
}

func TestShouldContactAfterCooldown(t *testing.T) {
	s := testSequencer(t)
	lead := contactableLead()
	lead.ContactAttempts = 1
	lead.LastContactDate = testNow.AddDate(0, 0, -5)

	if ok, reason := s.ShouldContact(lead); !ok {
		t.Fatalf("expected eligible after cooldown, got %q", reason)
	}
}

func TestGenerateDraftInitial(t *testing.T) {
	s := testSequencer(t)
	lead := contactableLead()

	draft, err := s.GenerateDraft(lead)
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if draft == nil {
		t.Fatal("expected a draft")
	}
	if draft.Stage != StageInitial {
		t.Fatalf("unexpected stage %q", draft.Stage)
	}
	if draft.Subject != "Dispatch Partnership Opportunity - Lone Star Trucking LLC" {
		t.Fatalf("unexpected subject %q", draft.Subject)
	}
	if draft.ToEmail != "dispatch@lonestar.example" || draft.ToName != "Maria" {
		t.Fatalf("unexpected recipient %q <%s>", draft.ToName, draft.ToEmail)
	}
	for _, want := range []string{
		"Hello Maria,",
		"7% commission",
		"donate 5% of our commission",
		"3-truck",
		"in TX",
		"dry van freight",
	} {
		if !strings.Contains(draft.Body, want) {
			t.Errorf("body missing %q:\n%s", want, draft.Body)
		}
	}
	if !draft.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected created at %v", draft.CreatedAt)
	}
}

func TestGenerateDraftFollowUpStages(t *testing.T) {
	s := testSequencer(t)

	wantSubjects := map[int]string{
		1: "Re: Dispatch Partnership - Lone Star Trucking LLC",
		2: "Quick question for Lone Star Trucking LLC",
		3: "Last note from Farid Logistics - Lone Star Trucking LLC",
	}
	for attempts, subject := range wantSubjects {
		lead := contactableLead()
		lead.ContactAttempts = attempts

		draft, err := s.GenerateDraft(lead)
		if err != nil {
			t.Fatalf("attempts=%d: %v", attempts, err)
		}
		if draft == nil {
			t.Fatalf("attempts=%d: expected a draft", attempts)
		}
		if draft.Subject != subject {
			t.Fatalf("attempts=%d: got subject %q, want %q", attempts, draft.Subject, subject)
		}
	}
}

func TestGenerateDraftSkipsIneligible(t *testing.T) {
	s := testSequencer(t)
	lead := contactableLead()
	lead.Contact.DoNotEmail = true

	draft, err := s.GenerateDraft(lead)
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if draft != nil {
		t.Fatal("expected nil draft for ineligible lead")
	}
}

func TestGenerateDraftFallbackNames(t *testing.T) {
	s := testSequencer(t)
	lead := contactableLead()
	lead.OwnerName = ""

	draft, err := s.GenerateDraft(lead)
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if draft.ToName != "Lone Star Trucking LLC" {
		t.Fatalf("unexpected recipient name %q", draft.ToName)
	}
	if !strings.Contains(draft.Body, "Hello Lone,") {
		t.Fatalf("expected first word of company as greeting:\n%s", draft.Body)
	}
}

func TestCampaign(t *testing.T) {
	s := testSequencer(t)

	eligible := contactableLead()
	noEmail := contactableLead()
	noEmail.Contact.Email = ""
	optedOut := contactableLead()
	optedOut.Contact.DoNotEmail = true
	recent := contactableLead()
	recent.LastContactDate = testNow
	exhausted := contactableLead()
	exhausted.ContactAttempts = 4

	result := s.Campaign([]*freight.Lead{eligible, noEmail, optedOut, recent, exhausted}, 10)

	if result.TotalLeads != 5 {
		t.Fatalf("expected 5 leads, got %d", result.TotalLeads)
	}
	if result.DraftsCreated != 1 || len(result.Drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", result.DraftsCreated)
	}
	if result.SkippedNoEmail != 1 || result.SkippedDoNotContact != 1 ||
		result.SkippedRecentContact != 1 || result.SkippedMaxAttempts != 1 {
		t.Fatalf("unexpected skip counts: %+v", result)
	}
}

func TestCampaignLimit(t *testing.T) {
	s := testSequencer(t)

	leads := []*freight.Lead{contactableLead(), contactableLead(), contactableLead()}
	result := s.Campaign(leads, 2)

	if result.DraftsCreated != 2 {
		t.Fatalf("expected limit of 2 drafts, got %d", result.DraftsCreated)
	}
}

func TestMarkSent(t *testing.T) {
	s := testSequencer(t)
	lead := contactableLead()
	lead.Status = freight.LeadStatusQualified

	s.MarkSent(lead)

	if lead.ContactAttempts != 1 {
		t.Fatalf("expected 1 contact attempt, got %d", lead.ContactAttempts)
	}
	if lead.LastContactDate.IsZero() {
		t.Fatal("expected contact date recorded")
	}
	if lead.Status != freight.LeadStatusContacted {
		t.Fatalf("unexpected status %q", lead.Status)
	}
}
