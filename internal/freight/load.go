package freight

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Stop is an origin or destination point.
type Stop struct {
	City  string `json:"city,omitempty"`
	State string `json:"state"`
	Zip   string `json:"zip,omitempty"`
}

// Broker is the party posting the load.
type Broker struct {
	CompanyName  string `json:"company_name,omitempty"`
	MCNumber     string `json:"mc_number,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// DefaultCommissionRate is the standard dispatch commission.
// DefaultCharityRate is the share of commission set aside for charity.
const (
	DefaultCommissionRate = 0.07
	DefaultCharityRate    = 0.05
)

// Load is a freight shipment opportunity. Compliance fields are written
// only by compliance.Classifier; commission fields only by
// CalculateCommission.
type Load struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id,omitempty"`

	Origin        Stop `json:"origin"`
	Destination   Stop `json:"destination"`
	LoadedMiles   int  `json:"loaded_miles"`
	DeadheadMiles int  `json:"deadhead_miles,omitempty"`

	Commodity            string        `json:"commodity"`
	CommodityDescription string        `json:"commodity_description,omitempty"`
	EquipmentType        EquipmentType `json:"equipment_type"`
	WeightLbs            int           `json:"weight_lbs,omitempty"`

	Rate float64 `json:"rate"`

	ComplianceVerdict    Verdict   `json:"compliance_verdict,omitempty"`
	ComplianceNotes      string    `json:"compliance_notes,omitempty"`
	ComplianceReviewedAt time.Time `json:"compliance_reviewed_at,omitempty"`

	Broker Broker     `json:"broker,omitempty"`
	Status LoadStatus `json:"status"`

	AssignedCarrierID   string `json:"assigned_carrier_id,omitempty"`
	AssignedCarrierName string `json:"assigned_carrier_name,omitempty"`

	CommissionRate     float64 `json:"commission_rate"`
	CharityRate        float64 `json:"charity_rate"`
	CommissionAmount   float64 `json:"commission_amount,omitempty"`
	CharityContribution float64 `json:"charity_contribution,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookedAt  time.Time `json:"booked_at,omitempty"`
}

// NewLoad builds an available load with a fresh ID and default
// commission rates.
func NewLoad(origin, destination Stop, commodity string, equipment EquipmentType, rate float64, loadedMiles int) *Load {
	now := time.Now().UTC()
	return &Load{
		ID:                uuid.NewString(),
		Origin:            origin,
		Destination:       destination,
		Commodity:         commodity,
		EquipmentType:     equipment,
		Rate:              rate,
		LoadedMiles:       loadedMiles,
		ComplianceVerdict: VerdictNeedsReview,
		Status:            LoadStatusAvailable,
		CommissionRate:    DefaultCommissionRate,
		CharityRate:       DefaultCharityRate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// RatePerMile is the rate per loaded mile, zero when miles are unknown.
func (l *Load) RatePerMile() float64 {
	if l.LoadedMiles == 0 {
		return 0
	}
	return round2(l.Rate / float64(l.LoadedMiles))
}

// DeadheadRatio is deadhead miles as a fraction of loaded miles.
func (l *Load) DeadheadRatio() float64 {
	if l.LoadedMiles == 0 {
		return 0
	}
	return float64(l.DeadheadMiles) / float64(l.LoadedMiles)
}

// Lane returns the origin-destination pair, e.g. "TX-CA".
func (l *Load) Lane() string {
	return l.Origin.State + "-" + l.Destination.State
}

// CalculateCommission recomputes the commission and charity amounts
// from the current rate. This is the only operation that writes them.
func (l *Load) CalculateCommission() float64 {
	l.CommissionAmount = round2(l.Rate * l.CommissionRate)
	l.CharityContribution = round2(l.CommissionAmount * l.CharityRate)
	return l.CommissionAmount
}

// SetVerdict updates the compliance result on the load.
func (l *Load) SetVerdict(v Verdict, notes string) {
	l.ComplianceVerdict = v
	l.ComplianceNotes = notes
	l.ComplianceReviewedAt = time.Now().UTC()
	l.UpdatedAt = l.ComplianceReviewedAt
}

// RejectForbidden transitions the load to the rejected state. Forbidden
// verdicts are final: a rejected load never reaches matching.
func (l *Load) RejectForbidden(reason string) {
	l.Status = LoadStatusRejectedForbidden
	l.SetVerdict(VerdictForbidden, reason)
}

// RejectRate rejects the load for an unacceptable rate.
func (l *Load) RejectRate(reason string) {
	l.Status = LoadStatusRejectedRate
	l.ComplianceNotes = reason
	l.UpdatedAt = time.Now().UTC()
}

// Book assigns the load to a carrier and fixes the commission.
func (l *Load) Book(carrierID, carrierName string) {
	l.Status = LoadStatusBooked
	l.AssignedCarrierID = carrierID
	l.AssignedCarrierName = carrierName
	l.BookedAt = time.Now().UTC()
	l.UpdatedAt = l.BookedAt
	l.CalculateCommission()
}

// EmbeddingText is the text indexed for similarity search over loads.
func (l *Load) EmbeddingText() string {
	parts := []string{
		l.Commodity,
		l.CommodityDescription,
		string(l.EquipmentType),
		l.Lane(),
		l.Origin.City,
		l.Destination.City,
		l.Broker.CompanyName,
	}
	text := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if text != "" {
			text += " "
		}
		text += p
	}
	return text
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Loads is a mutable collection of loads.
type Loads struct {
	Items []*Load
}

func (l *Loads) Len() int {
	return len(l.Items)
}

func (l *Loads) FindByID(id string) *Load {
	for _, load := range l.Items {
		if load.ID == id {
			return load
		}
	}
	return nil
}

// RemoveByIndex removes a load by index. Does not preserve order.
func (l *Loads) RemoveByIndex(idx int) {
	l.Items[idx] = l.Items[len(l.Items)-1]
	l.Items = l.Items[:len(l.Items)-1]
}

// ExcludeIDs removes loads whose ID is in targets and returns the
// removed IDs.
func (l *Loads) ExcludeIDs(targets []string) []string {
	var excluded []string
	for _, target := range targets {
		for idx, load := range l.Items {
			if load.ID == target {
				l.RemoveByIndex(idx)
				excluded = append(excluded, load.ID)
				break
			}
		}
	}
	return excluded
}
