package service

import (
	"fmt"
	"strconv"

	"github.com/modhub/modhub-api/internal/domain/model"
	apperrors "github.com/modhub/modhub-api/internal/errors"
)

// ModuleCatalogOptions groups configuration for the module catalog.
type ModuleCatalogOptions struct {
	Modules      []model.Module
	ParentDomain string
	DevMode      bool
}

// ModuleCatalog holds the set of hosted tool modules and resolves where each
// one lives. Every module is served from its own subdomain of the parent
// domain in production; in development each runs on a localhost port.
type ModuleCatalog struct {
	byID         map[string]model.Module
	order        []string
	parentDomain string
	devMode      bool
}

// NewModuleCatalog validates the module definitions and builds the catalog.
func NewModuleCatalog(opts ModuleCatalogOptions) (*ModuleCatalog, error) {
	if opts.ParentDomain == "" {
		return nil, fmt.Errorf("parent domain is required")
	}

	c := &ModuleCatalog{
		byID:         make(map[string]model.Module, len(opts.Modules)),
		parentDomain: opts.ParentDomain,
		devMode:      opts.DevMode,
	}
	for i := range opts.Modules {
		m := opts.Modules[i]
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("module %q: %w", m.ID, err)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate module id %q", m.ID)
		}
		c.byID[m.ID] = m
		c.order = append(c.order, m.ID)
	}
	return c, nil
}

// Get returns the module definition for an id.
func (c *ModuleCatalog) Get(id string) (model.Module, error) {
	m, ok := c.byID[id]
	if !ok {
		return model.Module{}, apperrors.NotFoundf("module %q not found", id)
	}
	return m, nil
}

// List returns all modules in configuration order.
func (c *ModuleCatalog) List() []model.Module {
	out := make([]model.Module, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ResolveURL returns the base URL a module is served from. Unknown ids still
// resolve to the production shape so callers can link to modules rolled out
// ahead of this service's catalog.
func (c *ModuleCatalog) ResolveURL(id string) string {
	if c.devMode {
		if m, ok := c.byID[id]; ok && m.DevPort > 0 {
			return "http://localhost:" + strconv.Itoa(m.DevPort)
		}
	}
	return "https://" + id + "." + c.parentDomain
}
