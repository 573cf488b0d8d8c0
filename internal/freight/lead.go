package freight

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact holds how to reach a lead.
type Contact struct {
	PhonePrimary   string `json:"phone_primary,omitempty"`
	PhoneSecondary string `json:"phone_secondary,omitempty"`
	Email          string `json:"email,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	DoNotCall      bool   `json:"do_not_call,omitempty"`
	DoNotEmail     bool   `json:"do_not_email,omitempty"`
}

// Authority is the carrier's operating registration.
type Authority struct {
	MCNumber    string    `json:"mc_number,omitempty"`
	DOTNumber   string    `json:"dot_number,omitempty"`
	Status      string    `json:"status,omitempty"`
	GrantedDate time.Time `json:"granted_date,omitempty"`
}

// AgeDays returns whole days since the authority was granted, relative
// to now. Zero when the grant date is unknown.
func (a Authority) AgeDays(now time.Time) int {
	if a.GrantedDate.IsZero() {
		return 0
	}
	days := int(now.Sub(a.GrantedDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Insurance holds coverage amounts in whole dollars.
type Insurance struct {
	LiabilityCoverage int  `json:"liability_coverage,omitempty"`
	CargoCoverage     int  `json:"cargo_coverage,omitempty"`
	Verified          bool `json:"verified,omitempty"`
}

// Minimum coverage a carrier must hold to be dispatchable.
const (
	MinLiabilityCoverage = 1_000_000
	MinCargoCoverage     = 100_000
)

// MeetsMinimum reports whether both coverages meet the dispatch floor.
func (i Insurance) MeetsMinimum() bool {
	return i.LiabilityCoverage >= MinLiabilityCoverage && i.CargoCoverage >= MinCargoCoverage
}

// Fleet describes the carrier's equipment and operating footprint.
type Fleet struct {
	TruckCount      int             `json:"truck_count,omitempty"`
	DriverCount     int             `json:"driver_count,omitempty"`
	EquipmentTypes  []EquipmentType `json:"equipment_types,omitempty"`
	OperatingStates []string        `json:"operating_states,omitempty"`
	PreferredLanes  []string        `json:"preferred_lanes,omitempty"`
	HomeBaseCity    string          `json:"home_base_city,omitempty"`
	HomeBaseState   string          `json:"home_base_state,omitempty"`
}

// Safety carries CSA-style sub-scores (0-100, lower is safer). Nil
// pointers mean the score is unknown.
type Safety struct {
	UnsafeDriving      *float64 `json:"unsafe_driving,omitempty"`
	HoursOfService     *float64 `json:"hours_of_service,omitempty"`
	VehicleMaintenance *float64 `json:"vehicle_maintenance,omitempty"`
	CrashIndicator     *float64 `json:"crash_indicator,omitempty"`
}

// Overall averages the available sub-scores. The second return is false
// when no sub-score is present.
func (s *Safety) Overall() (float64, bool) {
	if s == nil {
		return 0, false
	}
	var (
		sum float64
		n   int
	)
	for _, v := range []*float64{s.UnsafeDriving, s.HoursOfService, s.VehicleMaintenance, s.CrashIndicator} {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Lead is a carrier candidate being evaluated as a dispatch partner.
// Derived qualification fields (Score, ScoreBreakdown, IsQualified,
// DisqualificationReason) are written only by scoring.Scorer.Qualify.
type Lead struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	DBAName     string `json:"dba_name,omitempty"`
	OwnerName   string `json:"owner_name,omitempty"`

	Contact   Contact   `json:"contact"`
	Authority Authority `json:"authority"`
	Insurance Insurance `json:"insurance"`
	Fleet     Fleet     `json:"fleet"`
	Safety    *Safety   `json:"safety,omitempty"`

	Status LeadStatus `json:"status"`
	Source LeadSource `json:"source"`

	Score                  float64            `json:"score"`
	ScoreBreakdown         map[string]float64 `json:"score_breakdown,omitempty"`
	IsQualified            bool               `json:"is_qualified"`
	DisqualificationReason string             `json:"disqualification_reason,omitempty"`

	VerificationStatus string   `json:"verification_status,omitempty"`
	SocialVerified     bool     `json:"social_verified,omitempty"`
	HighIntent         bool     `json:"high_intent,omitempty"`
	WebsiteURL         string   `json:"website_url,omitempty"`
	SearchSnippets     []string `json:"search_snippets,omitempty"`

	ContactAttempts int       `json:"contact_attempts,omitempty"`
	LastContactDate time.Time `json:"last_contact_date,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	QualifiedAt time.Time `json:"qualified_at,omitempty"`
}

// NewLead builds a lead with a fresh ID and new status.
func NewLead(companyName string, source LeadSource) *Lead {
	now := time.Now().UTC()
	return &Lead{
		ID:                 uuid.NewString(),
		CompanyName:        companyName,
		Status:             LeadStatusNew,
		Source:             source,
		VerificationStatus: "pending",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Qualify marks the lead qualified with its score and breakdown. All
// qualification fields are updated together.
func (l *Lead) Qualify(score float64, breakdown map[string]float64) {
	l.Score = score
	l.ScoreBreakdown = breakdown
	l.IsQualified = true
	l.DisqualificationReason = ""
	l.Status = LeadStatusQualified
	l.QualifiedAt = time.Now().UTC()
	l.UpdatedAt = l.QualifiedAt
}

// Disqualify marks the lead rejected with the given reason. The score
// and breakdown from the failed evaluation are kept for reporting.
func (l *Lead) Disqualify(score float64, breakdown map[string]float64, reason string) {
	l.Score = score
	l.ScoreBreakdown = breakdown
	l.IsQualified = false
	l.DisqualificationReason = reason
	l.Status = LeadStatusRejected
	l.UpdatedAt = time.Now().UTC()
}

// MarkContacted records a contact attempt.
func (l *Lead) MarkContacted() {
	l.ContactAttempts++
	l.LastContactDate = time.Now().UTC()
	l.UpdatedAt = l.LastContactDate
	if l.Status == LeadStatusNew || l.Status == LeadStatusQualified {
		l.Status = LeadStatusContacted
	}
}

// EmbeddingText renders the lead as a single line for the similarity index.
func (l *Lead) EmbeddingText() string {
	equipment := make([]string, 0, len(l.Fleet.EquipmentTypes))
	for _, e := range l.Fleet.EquipmentTypes {
		equipment = append(equipment, string(e))
	}

	parts := []string{
		fmt.Sprintf("Company: %s", l.CompanyName),
		fmt.Sprintf("MC: %s", l.Authority.MCNumber),
		fmt.Sprintf("DOT: %s", l.Authority.DOTNumber),
		fmt.Sprintf("Trucks: %d", l.Fleet.TruckCount),
		fmt.Sprintf("Equipment: %s", strings.Join(equipment, ", ")),
		fmt.Sprintf("States: %s", strings.Join(l.Fleet.OperatingStates, ", ")),
		fmt.Sprintf("Lanes: %s", strings.Join(l.Fleet.PreferredLanes, ", ")),
	}
	if l.Fleet.HomeBaseState != "" {
		parts = append(parts, fmt.Sprintf("Based in: %s, %s", l.Fleet.HomeBaseCity, l.Fleet.HomeBaseState))
	}
	return strings.Join(parts, " | ")
}

// Leads is a mutable collection with exclusion helpers.
type Leads struct {
	Items []*Lead
}

func (l *Leads) Len() int {
	return len(l.Items)
}

func (l *Leads) FindByID(id string) *Lead {
	for _, lead := range l.Items {
		if lead.ID == id {
			return lead
		}
	}
	return nil
}

// Qualified returns the subset of leads that passed qualification.
func (l *Leads) Qualified() []*Lead {
	out := make([]*Lead, 0, len(l.Items))
	for _, lead := range l.Items {
		if lead.IsQualified {
			out = append(out, lead)
		}
	}
	return out
}
