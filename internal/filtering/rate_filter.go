package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

type rateFloorFilter struct {
	minRatePerMile float64
}

// NewRateFloor creates a filter that drops loads paying below the
// configured rate per mile. Loads with unknown mileage are kept; a
// zero rate-per-mile means no data, not a bad rate.
func NewRateFloor() Filter {
	return &rateFloorFilter{}
}

func (f *rateFloorFilter) Name() string { return "rate_floor" }

func (f *rateFloorFilter) Disable(string) {}

func (f *rateFloorFilter) IsEnabled() bool { return true }

func (f *rateFloorFilter) Validate(cfg *Config) error {
	f.minRatePerMile = 0
	if cfg != nil {
		f.minRatePerMile = cfg.MinRatePerMile
	}
	if f.minRatePerMile < 0 {
		return fmt.Errorf("minimum rate per mile must not be negative, got %v", f.minRatePerMile)
	}
	return nil
}

func (f *rateFloorFilter) Apply(_ context.Context, deps Deps, loads *freight.Loads) (*freight.Loads, Step, error) {
	initial := loads.Len()
	if f.minRatePerMile == 0 {
		return loads, Step{Initial: initial, Dropped: 0, Left: loads.Len()}, nil
	}

	kept := make([]*freight.Load, 0, initial)
	var dropped []string
	for _, load := range loads.Items {
		rpm := load.RatePerMile()
		if rpm > 0 && rpm < f.minRatePerMile {
			load.RejectRate(fmt.Sprintf("Rate $%.2f/mi below minimum $%.2f/mi", rpm, f.minRatePerMile))
			dropped = append(dropped, load.ID)
			continue
		}
		kept = append(kept, load)
	}
	loads.Items = kept

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding loads below rate floor",
			zap.Float64("min_rate_per_mile", f.minRatePerMile),
			zap.Strings("excluded_loads", dropped),
			zap.Int("loads_left", loads.Len()),
		)
	}

	return loads, Step{Initial: initial, Dropped: len(dropped), Left: loads.Len()}, nil
}

func (f *rateFloorFilter) Status() Status {
	details := map[string]string{}
	if f.minRatePerMile > 0 {
		details["min_rate_per_mile"] = fmt.Sprintf("%.2f", f.minRatePerMile)
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
