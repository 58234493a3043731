package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spewlabs/explainer/internal/models"
)

// Catalog holds the loaded persona set with a case-insensitive name index.
type Catalog struct {
	personas []models.Persona
	byID     map[string]models.Persona
	byName   map[string]string // lowercased display name -> persona id
}

// personasFile mirrors the on-disk catalog shape: {"personas": [...]}.
type personasFile struct {
	Personas []models.Persona `json:"personas"`
}

// LoadCatalog reads and validates the persona catalog JSON file.
// Duplicate ids are an error; every persona must pass validation.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}

	var file personasFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse personas file %s: %w", path, err)
	}
	if len(file.Personas) == 0 {
		return nil, fmt.Errorf("personas file %s contains no personas", path)
	}

	c := &Catalog{
		personas: file.Personas,
		byID:     make(map[string]models.Persona, len(file.Personas)),
		byName:   make(map[string]string, len(file.Personas)),
	}
	for _, p := range file.Personas {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("persona %q: %w", p.ID, err)
		}
		if _, exists := c.byID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		c.byID[p.ID] = p
		c.byName[strings.ToLower(strings.TrimSpace(p.Name))] = p.ID
	}
	return c, nil
}

// ByID returns the persona with the given id.
func (c *Catalog) ByID(id string) (models.Persona, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// FindByName resolves a display name to a persona id, case-insensitively.
func (c *Catalog) FindByName(name string) (string, bool) {
	id, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Names returns the display names of all personas, in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.personas))
	for _, p := range c.personas {
		names = append(names, p.Name)
	}
	return names
}

// Len returns the number of personas in the catalog.
func (c *Catalog) Len() int { return len(c.personas) }
