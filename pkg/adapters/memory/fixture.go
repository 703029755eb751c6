package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a dataset fixture (YAML or JSON, chosen by extension).
func LoadFile(path string) (domain.Dataset, error) {
	var ds domain.Dataset

	data, err := os.ReadFile(path)
	if err != nil {
		return ds, fmt.Errorf("failed to read fixture: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &ds); err != nil {
			return ds, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return ds, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	// Fixtures may omit the actor table; derive it from the speakers.
	if len(ds.Actors) == 0 {
		seen := make(map[string]bool)
		for _, n := range ds.Nodes {
			if n.ActorName != "" && !seen[n.ActorName] {
				seen[n.ActorName] = true
				ds.Actors = append(ds.Actors, domain.Actor{ID: len(ds.Actors) + 1, Name: n.ActorName})
			}
		}
	}
	return ds, nil
}

// NewFromFile creates a Source from a fixture file. The file can later be
// watched for changes with Watch.
func NewFromFile(path string, opts ...Option) (*Source, error) {
	ds, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s := New(ds, opts...)
	s.path = path
	return s, nil
}
