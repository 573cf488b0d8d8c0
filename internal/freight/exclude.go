package freight

import (
	"encoding/json"
	"os"
	"time"
)

type ExcludedLoads struct {
	Items []*ExcludedLoad
}

type ExcludedLoad struct {
	ID         string    `json:"id"`
	Lane       string    `json:"lane,omitempty"`
	Commodity  string    `json:"commodity,omitempty"`
	BrokerName string    `json:"broker_name,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedAt time.Time `json:"excluded_at"`
}

// ToExcluded converts the loads into exclude-file records.
func (l *Loads) ToExcluded(reason string) *ExcludedLoads {
	excluded := &ExcludedLoads{}
	for _, load := range l.Items {
		excluded.Items = append(excluded.Items, &ExcludedLoad{
			ID:         load.ID,
			Lane:       load.Lane(),
			Commodity:  load.Commodity,
			BrokerName: load.Broker.CompanyName,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

func GetExcludedLoadsFromFile(path string) (*ExcludedLoads, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedLoads{}, nil
	}

	var excluded ExcludedLoads
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedLoads) Append(s *ExcludedLoads) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedLoads) LoadIDs() []string {
	ids := make([]string, 0)
	for _, load := range e.Items {
		ids = append(ids, load.ID)
	}
	return ids
}

func (e *ExcludedLoads) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return err
	}
	return nil
}
