package connectivity

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

//go:embed channels.yaml
var channelsYAML []byte

// #region table

// Table is the immutable channel table.
type Table struct {
	channels []Channel
}

type rawChannel struct {
	A       int    `yaml:"a"`
	B       int    `yaml:"b"`
	Name    string `yaml:"name"`
	CenterA string `yaml:"center_a"`
	CenterB string `yaml:"center_b"`
}

type rawTable struct {
	Channels []rawChannel `yaml:"channels"`
}

// DefaultTable parses the embedded channel table against archetypes.
func DefaultTable(archetypes *facet.Table) (*Table, error) {
	return LoadTable(channelsYAML, archetypes)
}

// LoadTable parses a channel document. Every endpoint must be a known
// archetype whose own center matches the endpoint center, and no pair may
// repeat.
func LoadTable(data []byte, archetypes *facet.Table) (*Table, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse channel table: %w", err)
	}
	if len(raw.Channels) == 0 {
		return nil, fmt.Errorf("channel table: no channels")
	}

	t := &Table{channels: make([]Channel, 0, len(raw.Channels))}
	seen := map[[2]int]bool{}
	for _, rc := range raw.Channels {
		ch := Channel{A: rc.A, B: rc.B, Name: rc.Name, CenterA: Center(rc.CenterA), CenterB: Center(rc.CenterB)}
		for _, end := range []struct {
			idx    int
			center Center
		}{{ch.A, ch.CenterA}, {ch.B, ch.CenterB}} {
			a, ok := archetypes.Archetype(end.idx)
			if !ok {
				return nil, fmt.Errorf("channel table: %d-%d: archetype %d out of range", ch.A, ch.B, end.idx)
			}
			if a.Center != end.center {
				return nil, fmt.Errorf("channel table: %d-%d: archetype %d sits on %s, not %s",
					ch.A, ch.B, end.idx, a.Center, end.center)
			}
		}
		if ch.CenterA == ch.CenterB {
			return nil, fmt.Errorf("channel table: %d-%d joins %s to itself", ch.A, ch.B, ch.CenterA)
		}
		key := [2]int{min(ch.A, ch.B), max(ch.A, ch.B)}
		if seen[key] {
			return nil, fmt.Errorf("channel table: duplicate channel %d-%d", ch.A, ch.B)
		}
		seen[key] = true
		t.channels = append(t.channels, ch)
	}
	return t, nil
}

// Channels returns a copy of the table in document order.
func (t *Table) Channels() []Channel {
	return append([]Channel(nil), t.channels...)
}

// Len returns the number of channels.
func (t *Table) Len() int {
	return len(t.channels)
}

// #endregion table
