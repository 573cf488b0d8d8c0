package hunters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

const carrierPayload = `{
  "content": [
    {
      "carrier": {
        "legalName": "LONE STAR TRUCKING LLC",
        "dbaName": "LST",
        "dotNumber": 1234567,
        "docketNumber": "MC123456",
        "phyCity": "AUSTIN",
        "phyState": "TX",
        "phone": "(512) 555-0147",
        "totalPowerUnits": 3,
        "totalDrivers": 4,
        "allowedToOperate": "Y",
        "bipdInsuranceOnFile": "1000",
        "cargoInsuranceOnFile": "100",
        "carrierOperation": "Interstate",
        "cargoCarried": "General Freight",
        "addedDate": "2024-01-15"
      }
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *FMCSAClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewFMCSAClient(context.Background(), nil, "test-key")
	client.APIURL = server.URL
	client.RateDelay = 0
	return client
}

func TestLookupCarrier(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("webKey")
		fmt.Fprint(w, carrierPayload)
	})

	snapshot, err := client.LookupCarrier("123456")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if gotPath != "/carriers/docket-number/123456" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected webKey passed, got %q", gotKey)
	}
	if snapshot.LegalName != "LONE STAR TRUCKING LLC" {
		t.Fatalf("unexpected legal name %q", snapshot.LegalName)
	}
	if snapshot.DOTNumber != 1234567 {
		t.Fatalf("unexpected DOT number %d", snapshot.DOTNumber)
	}
	if snapshot.PhyState != "TX" {
		t.Fatalf("unexpected state %q", snapshot.PhyState)
	}
	if snapshot.TotalPowerUnits != 3 || snapshot.TotalDrivers != 4 {
		t.Fatalf("unexpected fleet counts: %+v", snapshot)
	}
	if snapshot.AllowedToOperate != "Y" {
		t.Fatalf("unexpected operating flag %q", snapshot.AllowedToOperate)
	}
}

func TestLookupCarrierNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": []}`)
	})

	_, err := client.LookupCarrier("999999")
	if err == nil {
		t.Fatal("expected error for unknown carrier")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLookupCarrierBadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	})

	if _, err := client.LookupCarrier("123456"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestVerifyAuthority(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, carrierPayload)
	})

	allowed, err := client.VerifyAuthority("123456")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !allowed {
		t.Fatal("expected carrier allowed to operate")
	}
}

func TestSnapshotToLead(t *testing.T) {
	snapshot := &CarrierSnapshot{
		LegalName:            "LONE STAR TRUCKING LLC",
		DBAName:              "LST",
		DOTNumber:            1234567,
		DocketNumber:         "MC123456",
		PhyCity:              "AUSTIN",
		PhyState:             "TX",
		Phone:                "(512) 555-0147",
		TotalPowerUnits:      3,
		TotalDrivers:         4,
		AllowedToOperate:     "Y",
		BIPDInsuranceOnFile:  "1000",
		CargoInsuranceOnFile: "100",
		CargoCarried:         "General Freight",
		AddedDate:            "2024-01-15",
	}

	lead := SnapshotToLead(snapshot)
	if lead == nil {
		t.Fatal("expected a lead")
	}
	if lead.Source != freight.SourceRegistry {
		t.Fatalf("unexpected source %q", lead.Source)
	}
	if lead.Authority.MCNumber != "123456" {
		t.Fatalf("expected docket digits only, got %q", lead.Authority.MCNumber)
	}
	if lead.Authority.DOTNumber != "1234567" {
		t.Fatalf("unexpected DOT number %q", lead.Authority.DOTNumber)
	}
	if lead.Authority.Status != "ACTIVE" {
		t.Fatalf("unexpected authority status %q", lead.Authority.Status)
	}
	if lead.Contact.PhonePrimary != "+15125550147" {
		t.Fatalf("unexpected phone %q", lead.Contact.PhonePrimary)
	}
	if lead.Insurance.LiabilityCoverage != freight.MinLiabilityCoverage {
		t.Fatalf("unexpected liability %d", lead.Insurance.LiabilityCoverage)
	}
	if lead.Fleet.TruckCount != 3 || lead.Fleet.HomeBaseState != "TX" {
		t.Fatalf("unexpected fleet: %+v", lead.Fleet)
	}

	snapshot.Phone = "n/a"
	if SnapshotToLead(snapshot) != nil {
		t.Fatal("expected nil lead without a phone number")
	}
}

func TestHuntByMC(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/404404") {
			fmt.Fprint(w, `{"content": []}`)
			return
		}
		fmt.Fprint(w, carrierPayload)
	})

	sink := &stubSink{existing: map[string]bool{"123456": false}}
	result, err := client.HuntByMC(context.Background(), sink, []string{"123456", "404404"})
	if err != nil {
		t.Fatalf("hunt failed: %v", err)
	}

	if result.TotalProcessed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.TotalProcessed)
	}
	if result.TotalFound != 1 || len(sink.saved) != 1 {
		t.Fatalf("expected 1 lead saved, got %d found", result.TotalFound)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error for missing carrier, got %v", result.Errors)
	}
	if result.Source != freight.SourceRegistry {
		t.Fatalf("unexpected source %q", result.Source)
	}
}

func TestHuntByMCDuplicates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, carrierPayload)
	})

	sink := &stubSink{existing: map[string]bool{"123456": true}}
	result, err := client.HuntByMC(context.Background(), sink, []string{"123456"})
	if err != nil {
		t.Fatalf("hunt failed: %v", err)
	}
	if result.TotalDuplicates != 1 || len(sink.saved) != 0 {
		t.Fatalf("expected duplicate skipped, got %+v", result)
	}
}
