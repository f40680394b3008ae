// Package sld implements the single-line-diagram graph engine: the symbol
// catalog, the connectivity validator, the orthogonal wire router and the
// interactive drafting state machine.
package sld

import (
	"io"
	"os"

	"github.com/cadream/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// Registry is the process-lifetime catalog of diagram symbols and their
// terminal layouts. Pure lookup table; never mutated after construction.
type Registry struct {
	byType map[string]*models.SymbolDefinition
}

// NewRegistry returns a registry holding the built-in symbol set.
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]*models.SymbolDefinition)}
	for i := range builtinCatalog {
		def := builtinCatalog[i]
		r.byType[def.Type] = &def
	}
	return r
}

// Get returns the definition for a symbol type, or nil when the type is
// unknown. Absence is not an error: callers skip the node for the operation
// at hand.
func (r *Registry) Get(symbolType string) *models.SymbolDefinition {
	return r.byType[symbolType]
}

// Types returns all registered symbol type ids.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	return out
}

// catalogFile is the YAML shape of an external symbol catalog.
type catalogFile struct {
	Symbols []catalogSymbol `yaml:"symbols"`
}

type catalogSymbol struct {
	Type      string            `yaml:"type"`
	Label     string            `yaml:"label"`
	Width     float64           `yaml:"width"`
	Height    float64           `yaml:"height"`
	Terminals []catalogTerminal `yaml:"terminals"`
}

type catalogTerminal struct {
	ID       string  `yaml:"id"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Role     string  `yaml:"role"`
	Required bool    `yaml:"required"`
}

// LoadCatalogFile merges symbol definitions from a YAML catalog file over
// the built-in set. Entries with an existing type replace it.
func (r *Registry) LoadCatalogFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.LoadCatalog(f)
}

// LoadCatalog merges symbol definitions from YAML.
func (r *Registry) LoadCatalog(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	for _, sym := range file.Symbols {
		if sym.Type == "" {
			continue
		}
		def := &models.SymbolDefinition{
			Type:   sym.Type,
			Label:  sym.Label,
			Width:  sym.Width,
			Height: sym.Height,
		}
		for _, t := range sym.Terminals {
			role := models.TerminalRole(t.Role)
			switch role {
			case models.RoleLine, models.RoleIn, models.RoleOut:
			default:
				role = models.RoleLine
			}
			def.Terminals = append(def.Terminals, models.TerminalTemplate{
				ID:       t.ID,
				Offset:   models.Point{X: t.X, Y: t.Y},
				Role:     role,
				Required: t.Required,
			})
		}
		r.byType[def.Type] = def
	}
	return nil
}

// builtinCatalog covers the standard BESS one-line symbol set. Terminal
// offsets are in symbol-local units with the origin at the symbol anchor.
var builtinCatalog = []models.SymbolDefinition{
	{
		Type: "utility", Label: "Utility Grid", Width: 80, Height: 60,
		Terminals: []models.TerminalTemplate{
			{ID: "out", Offset: models.Point{X: 40, Y: 60}, Role: models.RoleOut, Required: true},
		},
	},
	{
		Type: "pcc", Label: "Point of Common Coupling", Width: 60, Height: 20,
		Terminals: []models.TerminalTemplate{
			{ID: "in", Offset: models.Point{X: 30, Y: 0}, Role: models.RoleIn, Required: true},
			{ID: "out", Offset: models.Point{X: 30, Y: 20}, Role: models.RoleOut, Required: true},
		},
	},
	{
		Type: "meter", Label: "Utility Meter", Width: 50, Height: 50,
		Terminals: []models.TerminalTemplate{
			{ID: "in", Offset: models.Point{X: 25, Y: 0}, Role: models.RoleIn, Required: true},
			{ID: "out", Offset: models.Point{X: 25, Y: 50}, Role: models.RoleOut, Required: true},
		},
	},
	{
		Type: "disconnect", Label: "AC Disconnect", Width: 40, Height: 60,
		Terminals: []models.TerminalTemplate{
			{ID: "in", Offset: models.Point{X: 20, Y: 0}, Role: models.RoleIn, Required: true},
			{ID: "out", Offset: models.Point{X: 20, Y: 60}, Role: models.RoleOut, Required: true},
		},
	},
	{
		Type: "transformer", Label: "Transformer", Width: 80, Height: 80,
		Terminals: []models.TerminalTemplate{
			{ID: "primary", Offset: models.Point{X: 40, Y: 0}, Role: models.RoleIn, Required: true},
			{ID: "secondary", Offset: models.Point{X: 40, Y: 80}, Role: models.RoleOut, Required: true},
		},
	},
	{
		Type: "panel", Label: "Service Panel", Width: 70, Height: 100,
		Terminals: []models.TerminalTemplate{
			{ID: "main", Offset: models.Point{X: 35, Y: 0}, Role: models.RoleIn, Required: true},
			{ID: "load1", Offset: models.Point{X: 0, Y: 50}, Role: models.RoleLine},
			{ID: "load2", Offset: models.Point{X: 70, Y: 50}, Role: models.RoleLine},
		},
	},
	{
		Type: "inverter", Label: "Inverter", Width: 90, Height: 60,
		Terminals: []models.TerminalTemplate{
			{ID: "ac", Offset: models.Point{X: 45, Y: 0}, Role: models.RoleOut, Required: true},
			{ID: "dc", Offset: models.Point{X: 45, Y: 60}, Role: models.RoleIn, Required: true},
		},
	},
	{
		Type: "battery", Label: "Battery Bank", Width: 100, Height: 70,
		Terminals: []models.TerminalTemplate{
			{ID: "dc", Offset: models.Point{X: 50, Y: 0}, Role: models.RoleOut, Required: true},
		},
	},
}
