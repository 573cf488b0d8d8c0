package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

type deadheadFilter struct {
	disabled bool
	reason   string
	maxMiles int
	maxRatio float64
}

// NewDeadhead creates a filter that drops loads with excessive empty
// miles, either in absolute miles or as a fraction of loaded miles.
func NewDeadhead() Filter {
	return &deadheadFilter{}
}

func (f *deadheadFilter) Name() string { return "deadhead" }

func (f *deadheadFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *deadheadFilter) IsEnabled() bool { return !f.disabled }

func (f *deadheadFilter) Validate(cfg *Config) error {
	f.maxMiles = 0
	f.maxRatio = 0
	if cfg != nil {
		f.maxMiles = cfg.MaxDeadheadMiles
		f.maxRatio = cfg.MaxDeadheadRatio
	}
	if f.maxMiles < 0 {
		return fmt.Errorf("max deadhead miles must not be negative, got %d", f.maxMiles)
	}
	if f.maxRatio < 0 {
		return fmt.Errorf("max deadhead ratio must not be negative, got %v", f.maxRatio)
	}
	return nil
}

func (f *deadheadFilter) Apply(_ context.Context, deps Deps, loads *freight.Loads) (*freight.Loads, Step, error) {
	initial := loads.Len()
	if f.maxMiles == 0 && f.maxRatio == 0 {
		return loads, Step{Initial: initial, Dropped: 0, Left: loads.Len()}, nil
	}

	kept := make([]*freight.Load, 0, initial)
	var dropped []string
	for _, load := range loads.Items {
		if f.maxMiles > 0 && load.DeadheadMiles > f.maxMiles {
			dropped = append(dropped, load.ID)
			continue
		}
		if f.maxRatio > 0 && load.DeadheadRatio() > f.maxRatio {
			dropped = append(dropped, load.ID)
			continue
		}
		kept = append(kept, load)
	}
	loads.Items = kept

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding loads with excessive deadhead",
			zap.Int("max_deadhead_miles", f.maxMiles),
			zap.Float64("max_deadhead_ratio", f.maxRatio),
			zap.Strings("excluded_loads", dropped),
			zap.Int("loads_left", loads.Len()),
		)
	}

	return loads, Step{Initial: initial, Dropped: len(dropped), Left: loads.Len()}, nil
}

func (f *deadheadFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{
		"max_deadhead_miles": fmt.Sprintf("%d", f.maxMiles),
		"max_deadhead_ratio": fmt.Sprintf("%.2f", f.maxRatio),
	}}
}
