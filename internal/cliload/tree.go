package cliload

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/atlasforge/flowback/internal/sweep"
	"github.com/atlasforge/flowback/internal/tree"
)

// LoadTree reads a strategy tree from a JSON file.
func LoadTree(path string) (*tree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", path, err)
	}
	var root tree.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse tree %s: %w", path, err)
	}
	return &root, nil
}

// rangesFile is the on-disk shape of a sweep's parameter-range list.
type rangesFile struct {
	Ranges []rangeEntry `json:"ranges"`
}

type rangeEntry struct {
	NodeID      string  `json:"node_id"`
	ConditionID string  `json:"condition_id"`
	Field       string  `json:"field"`
	Enabled     bool    `json:"enabled"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Step        float64 `json:"step"`
}

// LoadRanges reads a sweep's parameter ranges from a JSON file.
func LoadRanges(path string) ([]sweep.Range, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ranges %s: %w", path, err)
	}
	var file rangesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse ranges %s: %w", path, err)
	}
	out := make([]sweep.Range, 0, len(file.Ranges))
	for _, e := range file.Ranges {
		out = append(out, sweep.Range{
			NodeID:      e.NodeID,
			ConditionID: e.ConditionID,
			Field:       sweep.Field(e.Field),
			Enabled:     e.Enabled,
			Min:         e.Min,
			Max:         e.Max,
			Step:        e.Step,
		})
	}
	return out, nil
}
