package syncsvc

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Influencers    []map[string]any `yaml:"influencers"`
	Collaborations []map[string]any `yaml:"collaborations"`
}

// SeedDataset returns a fresh copy of the built-in dataset.
func SeedDataset() (*Dataset, error) {
	return parseSeed(seedYAML)
}

// parseSeed decodes YAML into the JSON record shapes so the json tags on
// the schema types stay the single source of field names.
func parseSeed(data []byte) (*Dataset, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	ds := &Dataset{}
	if err := reshape(f.Influencers, &ds.Influencers); err != nil {
		return nil, fmt.Errorf("invalid seed influencers: %w", err)
	}
	if err := reshape(f.Collaborations, &ds.Collaborations); err != nil {
		return nil, fmt.Errorf("invalid seed collaborations: %w", err)
	}

	for i := range ds.Influencers {
		if err := ds.Influencers[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed influencer %s: %w", ds.Influencers[i].ID, err)
		}
	}
	for i := range ds.Collaborations {
		if err := ds.Collaborations[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed collaboration %s: %w", ds.Collaborations[i].ID, err)
		}
	}
	return ds, nil
}

func reshape(in []map[string]any, out any) error {
	if in == nil {
		in = []map[string]any{}
	}
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
