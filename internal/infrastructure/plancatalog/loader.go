// Package plancatalog loads the plan catalog from YAML.
package plancatalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/postforge/postforge/internal/domain/plan"
)

type fileFormat struct {
	DefaultTier string      `yaml:"default_tier"`
	Plans       []planEntry `yaml:"plans"`
}

type planEntry struct {
	Tier   string                `yaml:"tier"`
	Name   string                `yaml:"name"`
	Limits plan.Limits           `yaml:"limits"`
	Prices map[string]plan.Price `yaml:"prices"`
}

// LoadFile reads path. defaultTier overrides the file's default_tier when set.
func LoadFile(path, defaultTier string) (*plan.StaticCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan catalog %s: %w", path, err)
	}
	return Parse(raw, defaultTier)
}

func Parse(raw []byte, defaultTier string) (*plan.StaticCatalog, error) {
	var f fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}
	if len(f.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog defines no plans")
	}

	defs := make([]plan.Definition, 0, len(f.Plans))
	for _, p := range f.Plans {
		prices := make(map[plan.Interval]plan.Price, len(p.Prices))
		for k, v := range p.Prices {
			interval, err := plan.ParseInterval(k)
			if err != nil {
				return nil, fmt.Errorf("plan %s: %w", p.Tier, err)
			}
			prices[interval] = v
		}
		defs = append(defs, plan.Definition{
			Tier:   plan.Tier(p.Tier),
			Name:   p.Name,
			Limits: p.Limits,
			Prices: prices,
		})
	}

	tier := f.DefaultTier
	if defaultTier != "" {
		tier = defaultTier
	}
	return plan.NewStaticCatalog(plan.Tier(tier), defs...)
}
