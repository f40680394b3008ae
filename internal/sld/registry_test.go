package sld

import (
	"strings"
	"testing"

	"github.com/cadream/backend/internal/models"
)

func TestRegistryBuiltinCatalog(t *testing.T) {
	reg := NewRegistry()
	if got := len(reg.Types()); got != 8 {
		t.Errorf("builtin types = %d, want 8", got)
	}

	bat := reg.Get("battery")
	if bat == nil {
		t.Fatal("battery missing")
	}
	if bat.Label != "Battery Bank" || len(bat.Terminals) != 1 {
		t.Errorf("battery = %+v", bat)
	}
	if bat.Terminals[0].Role != models.RoleOut || !bat.Terminals[0].Required {
		t.Errorf("battery terminal = %+v", bat.Terminals[0])
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry()
	if def := reg.Get("teleporter"); def != nil {
		t.Errorf("got %+v, want nil", def)
	}
}

func TestLoadCatalogMergesAndOverrides(t *testing.T) {
	reg := NewRegistry()
	catalog := `
symbols:
  - type: recloser
    label: Recloser
    width: 40
    height: 60
    terminals:
      - id: in
        x: 20
        y: 0
        role: in
        required: true
      - id: out
        x: 20
        y: 60
        role: out
  - type: battery
    label: Custom Battery
    width: 120
    height: 80
    terminals:
      - id: dc
        x: 60
        y: 0
        role: out
`
	if err := reg.LoadCatalog(strings.NewReader(catalog)); err != nil {
		t.Fatal(err)
	}

	if got := len(reg.Types()); got != 9 {
		t.Errorf("types after merge = %d, want 9", got)
	}

	rec := reg.Get("recloser")
	if rec == nil {
		t.Fatal("recloser not merged")
	}
	if len(rec.Terminals) != 2 || !rec.Terminals[0].Required || rec.Terminals[1].Required {
		t.Errorf("recloser terminals = %+v", rec.Terminals)
	}

	bat := reg.Get("battery")
	if bat.Label != "Custom Battery" || bat.Width != 120 {
		t.Errorf("override not applied: %+v", bat)
	}
}

func TestLoadCatalogInvalidRoleDefaultsToLine(t *testing.T) {
	reg := NewRegistry()
	catalog := `
symbols:
  - type: widget
    label: Widget
    terminals:
      - id: a
        role: sideways
`
	if err := reg.LoadCatalog(strings.NewReader(catalog)); err != nil {
		t.Fatal(err)
	}
	def := reg.Get("widget")
	if def.Terminals[0].Role != models.RoleLine {
		t.Errorf("role = %s, want line", def.Terminals[0].Role)
	}
}

func TestLoadCatalogSkipsUntypedEntries(t *testing.T) {
	reg := NewRegistry()
	before := len(reg.Types())
	catalog := `
symbols:
  - label: Anonymous
`
	if err := reg.LoadCatalog(strings.NewReader(catalog)); err != nil {
		t.Fatal(err)
	}
	if got := len(reg.Types()); got != before {
		t.Errorf("untyped entry registered: %d -> %d", before, got)
	}
}

func TestLoadCatalogMalformedYAML(t *testing.T) {
	reg := NewRegistry()
	if err := reg.LoadCatalog(strings.NewReader("symbols: [")); err == nil {
		t.Error("expected error")
	}
}
