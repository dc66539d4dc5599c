package facet

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed archetypes.yaml
var archetypesYAML []byte

// #region table

// Table is the immutable set of 64 archetypes, indexed 1..64.
// Construct it once at startup and share it; nothing mutates it after load.
type Table struct {
	archetypes [ArchetypeCount]Archetype
}

type rawArchetype struct {
	Index  int      `yaml:"index"`
	Name   string   `yaml:"name"`
	Center string   `yaml:"center"`
	Labels []string `yaml:"labels"`
}

type rawTable struct {
	Archetypes []rawArchetype `yaml:"archetypes"`
}

// DefaultTable parses the embedded archetype table.
func DefaultTable() (*Table, error) {
	return LoadTable(archetypesYAML)
}

// LoadTable parses and validates an archetype table document.
func LoadTable(data []byte) (*Table, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse archetype table: %w", err)
	}
	if len(raw.Archetypes) != ArchetypeCount {
		return nil, fmt.Errorf("archetype table: want %d entries, got %d", ArchetypeCount, len(raw.Archetypes))
	}

	t := &Table{}
	seen := make(map[int]bool, ArchetypeCount)
	for _, ra := range raw.Archetypes {
		if ra.Index < 1 || ra.Index > ArchetypeCount {
			return nil, fmt.Errorf("archetype table: index %d out of range", ra.Index)
		}
		if seen[ra.Index] {
			return nil, fmt.Errorf("archetype table: duplicate index %d", ra.Index)
		}
		seen[ra.Index] = true
		c := Center(ra.Center)
		if !c.Valid() {
			return nil, fmt.Errorf("archetype table: index %d has unknown center %q", ra.Index, ra.Center)
		}
		if len(ra.Labels) != 4 {
			return nil, fmt.Errorf("archetype table: index %d needs 4 labels, got %d", ra.Index, len(ra.Labels))
		}
		a := Archetype{Index: ra.Index, Name: ra.Name, Center: c}
		copy(a.Labels[:], ra.Labels)
		t.archetypes[ra.Index-1] = a
	}
	return t, nil
}

// Archetype returns the archetype with the given 1-based index.
func (t *Table) Archetype(index int) (Archetype, bool) {
	if index < 1 || index > ArchetypeCount {
		return Archetype{}, false
	}
	return t.archetypes[index-1], true
}

// CenterOf returns the center an archetype belongs to, or "" for an unknown index.
func (t *Table) CenterOf(index int) Center {
	a, ok := t.Archetype(index)
	if !ok {
		return ""
	}
	return a.Center
}

// #endregion table
