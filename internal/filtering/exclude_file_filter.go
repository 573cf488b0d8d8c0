package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes loads contained in an
// exclude file, typically loads previously declined by the operator.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, loads *freight.Loads) (*freight.Loads, Step, error) {
	initial := loads.Len()
	if f.path == "" {
		return loads, Step{Initial: initial, Dropped: 0, Left: loads.Len()}, nil
	}

	excluded, err := freight.GetExcludedLoadsFromFile(f.path)
	if err != nil {
		return loads, Step{}, fmt.Errorf("getting excluded loads from file: %w", err)
	}

	removed := loads.ExcludeIDs(excluded.LoadIDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding loads based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_loads", removed),
			zap.Int("loads_left", loads.Len()),
		)
	}

	return loads, Step{Initial: initial, Dropped: len(removed), Left: loads.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
