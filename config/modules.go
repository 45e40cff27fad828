package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/modhub/modhub-api/internal/domain/model"
)

// ModulesConfig configures the hosted-module catalog.
type ModulesConfig struct {
	// Catalog is a JSON array of module definitions. Empty means the
	// built-in catalog.
	//
	// Example:
	//   MODULE_CATALOG='[{"id":"summarizer","name":"Summarizer","token_cost":10}]'
	Catalog string `env:"MODULE_CATALOG"`
}

// defaultCatalog is the built-in module set used when MODULE_CATALOG is unset.
func defaultCatalog() []model.Module {
	imageLabMax := 50
	return []model.Module{
		{ID: "summarizer", Name: "Summarizer", TokenCost: 10, DevPort: 3001},
		{
			ID:        "image-lab",
			Name:      "Image Lab",
			TokenCost: 25,
			MaxUsage:  &imageLabMax,
			ValidFor:  30 * 24 * time.Hour,
			DevPort:   3002,
		},
	}
}

// catalogEntry is the JSON wire form of a module definition. ValidFor is
// expressed as a duration string ("720h") for operator friendliness.
type catalogEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TokenCost int    `json:"token_cost"`
	MaxUsage  *int   `json:"max_usage,omitempty"`
	ValidFor  string `json:"valid_for,omitempty"`
	DevPort   int    `json:"dev_port,omitempty"`
}

// ParseCatalog returns the configured module catalog, falling back to the
// built-in set when no override is configured. Validation of individual
// definitions happens in the catalog service.
func (m ModulesConfig) ParseCatalog() ([]model.Module, error) {
	if m.Catalog == "" {
		return defaultCatalog(), nil
	}

	var entries []catalogEntry
	if err := json.Unmarshal([]byte(m.Catalog), &entries); err != nil {
		return nil, fmt.Errorf("parse MODULE_CATALOG: %w", err)
	}

	modules := make([]model.Module, 0, len(entries))
	for _, e := range entries {
		mod := model.Module{
			ID:        e.ID,
			Name:      e.Name,
			TokenCost: e.TokenCost,
			MaxUsage:  e.MaxUsage,
			DevPort:   e.DevPort,
		}
		if e.ValidFor != "" {
			d, err := time.ParseDuration(e.ValidFor)
			if err != nil {
				return nil, fmt.Errorf("parse valid_for for module %q: %w", e.ID, err)
			}
			mod.ValidFor = d
		}
		modules = append(modules, mod)
	}
	return modules, nil
}
