package scoring

import (
	"fmt"
	"math"
)

// Weights are the per-factor weights for lead scoring. They must sum
// to 1.0 so the total stays normalized.
type Weights struct {
	AuthorityAge   float64 `mapstructure:"authority_age"`
	FleetSize      float64 `mapstructure:"fleet_size"`
	Insurance      float64 `mapstructure:"insurance"`
	Safety         float64 `mapstructure:"safety"`
	EquipmentMatch float64 `mapstructure:"equipment_match"`
	Location       float64 `mapstructure:"location"`
	ContactQuality float64 `mapstructure:"contact_quality"`
}

// DefaultWeights returns the stock weighting. Fleet size carries the
// most weight: small fleets are the carriers that most need dispatch.
func DefaultWeights() Weights {
	return Weights{
		AuthorityAge:   0.15,
		FleetSize:      0.20,
		Insurance:      0.15,
		Safety:         0.15,
		EquipmentMatch: 0.15,
		Location:       0.10,
		ContactQuality: 0.10,
	}
}

func (w Weights) sum() float64 {
	return w.AuthorityAge + w.FleetSize + w.Insurance + w.Safety +
		w.EquipmentMatch + w.Location + w.ContactQuality
}

// Validate rejects weights that do not sum to 1.0 within tolerance.
func (w Weights) Validate() error {
	if total := w.sum(); math.Abs(total-1.0) > 0.01 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %v", total)
	}
	return nil
}
