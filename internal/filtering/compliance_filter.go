package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

type complianceFilter struct{}

// NewCompliance creates a filter that classifies every load and drops
// the forbidden ones. Dropped loads are rejected in place so the
// decision is recorded on the load itself.
func NewCompliance() Filter {
	return &complianceFilter{}
}

func (f *complianceFilter) Name() string { return "compliance" }

func (f *complianceFilter) Disable(string) {}

func (f *complianceFilter) IsEnabled() bool { return true }

func (f *complianceFilter) Validate(*Config) error { return nil }

func (f *complianceFilter) Apply(_ context.Context, deps Deps, loads *freight.Loads) (*freight.Loads, Step, error) {
	initial := loads.Len()
	if deps.Classifier == nil {
		return loads, Step{}, fmt.Errorf("compliance classifier is required")
	}

	kept := make([]*freight.Load, 0, initial)
	var dropped []string
	for _, load := range loads.Items {
		result := deps.Classifier.ClassifyLoad(load)
		if result.Verdict == freight.VerdictForbidden {
			dropped = append(dropped, load.ID)
			if deps.Logger != nil {
				deps.Logger.Info("dropping forbidden load",
					zap.String("load_id", load.ID),
					zap.String("commodity", load.Commodity),
					zap.String("reason", result.Reason),
				)
			}
			continue
		}
		kept = append(kept, load)
	}
	loads.Items = kept

	return loads, Step{Initial: initial, Dropped: len(dropped), Left: loads.Len()}, nil
}

func (f *complianceFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
