package freight

import "fmt"

// EquipmentType is a closed set of trailer/equipment kinds. Free-form
// equipment strings are resolved once at the ingestion boundary via
// ParseEquipmentType so the rest of the system never probes raw text.
type EquipmentType string

const (
	EquipmentDryVan    EquipmentType = "dry_van"
	EquipmentReefer    EquipmentType = "reefer"
	EquipmentFlatbed   EquipmentType = "flatbed"
	EquipmentStepDeck  EquipmentType = "step_deck"
	EquipmentLowboy    EquipmentType = "lowboy"
	EquipmentTanker    EquipmentType = "tanker"
	EquipmentHopper    EquipmentType = "hopper"
	EquipmentCarHauler EquipmentType = "car_hauler"
	EquipmentPowerOnly EquipmentType = "power_only"
	EquipmentBoxTruck  EquipmentType = "box_truck"
	EquipmentSprinter  EquipmentType = "sprinter"
)

var equipmentTypes = map[EquipmentType]struct{}{
	EquipmentDryVan:    {},
	EquipmentReefer:    {},
	EquipmentFlatbed:   {},
	EquipmentStepDeck:  {},
	EquipmentLowboy:    {},
	EquipmentTanker:    {},
	EquipmentHopper:    {},
	EquipmentCarHauler: {},
	EquipmentPowerOnly: {},
	EquipmentBoxTruck:  {},
	EquipmentSprinter:  {},
}

// ParseEquipmentType resolves a raw string into a known equipment type.
func ParseEquipmentType(s string) (EquipmentType, error) {
	et := EquipmentType(s)
	if _, ok := equipmentTypes[et]; !ok {
		return "", fmt.Errorf("unknown equipment type %q", s)
	}
	return et, nil
}

// LeadStatus tracks a lead through the sales pipeline.
type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusContacted    LeadStatus = "contacted"
	LeadStatusQualified    LeadStatus = "qualified"
	LeadStatusNurturing    LeadStatus = "nurturing"
	LeadStatusConverted    LeadStatus = "converted"
	LeadStatusRejected     LeadStatus = "rejected"
	LeadStatusDoNotContact LeadStatus = "do_not_contact"
)

// LeadSource records where a lead was acquired.
type LeadSource string

const (
	SourceRegistry     LeadSource = "fmcsa_safer"
	SourceCSVImport    LeadSource = "csv_import"
	SourceLoadBoard    LeadSource = "loadboard"
	SourceReferral     LeadSource = "referral"
	SourceInbound      LeadSource = "inbound"
	SourceColdOutreach LeadSource = "cold_outreach"
)

// LoadStatus tracks a load through its lifecycle.
type LoadStatus string

const (
	LoadStatusAvailable         LoadStatus = "available"
	LoadStatusOffered           LoadStatus = "offered"
	LoadStatusBooked            LoadStatus = "booked"
	LoadStatusDispatched        LoadStatus = "dispatched"
	LoadStatusInTransit         LoadStatus = "in_transit"
	LoadStatusDelivered         LoadStatus = "delivered"
	LoadStatusCancelled         LoadStatus = "cancelled"
	LoadStatusRejectedForbidden LoadStatus = "rejected_forbidden"
	LoadStatusRejectedRate      LoadStatus = "rejected_rate"
)

// Verdict is the compliance classification of a load's commodity.
type Verdict string

const (
	VerdictPermitted   Verdict = "permitted"
	VerdictForbidden   Verdict = "forbidden"
	VerdictNeedsReview Verdict = "needs_review"
)

// ParseVerdict resolves a raw string into a compliance verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch v := Verdict(s); v {
	case VerdictPermitted, VerdictForbidden, VerdictNeedsReview:
		return v, nil
	}
	return "", fmt.Errorf("unknown compliance verdict %q", s)
}
