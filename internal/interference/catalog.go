package interference

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

//go:embed catalog.yaml
var catalogYAML []byte

// #region rule

// Rule decides whether a catalog entry applies to a pattern. Exactly one of
// its fields is set.
type Rule struct {
	SeverityAbove *float64    `yaml:"severity_above"`
	Pattern       PatternType `yaml:"pattern"`
	Always        bool        `yaml:"always"`
}

func (r Rule) matches(p Pattern) bool {
	switch {
	case r.Always:
		return true
	case r.SeverityAbove != nil:
		return p.Severity > *r.SeverityAbove
	default:
		return p.Type == r.Pattern
	}
}

func (r Rule) kinds() int {
	n := 0
	if r.SeverityAbove != nil {
		n++
	}
	if r.Pattern != "" {
		n++
	}
	if r.Always {
		n++
	}
	return n
}

// #endregion rule

// #region catalog

// CatalogEntry is a correction template.
type CatalogEntry struct {
	ActionType      ActionType `yaml:"action"`
	When            Rule       `yaml:"when"`
	DurationSeconds int        `yaml:"duration_seconds"`
	Description     string     `yaml:"description"`
	ExpectedOutcome string     `yaml:"expected_outcome"`
	Falsifiers      []string   `yaml:"falsifiers"`
}

// Catalog is the immutable, ordered correction table.
type Catalog struct {
	entries []CatalogEntry
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(catalogYAML)
}

// LoadCatalog parses and validates a catalog document. Every entry needs an
// action, a positive duration, one rule and at least one falsifier.
func LoadCatalog(data []byte) (*Catalog, error) {
	var raw struct {
		Corrections []CatalogEntry `yaml:"corrections"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse correction catalog: %w", err)
	}
	if len(raw.Corrections) == 0 {
		return nil, fmt.Errorf("correction catalog: no entries")
	}
	for i, e := range raw.Corrections {
		switch {
		case e.ActionType == "":
			return nil, fmt.Errorf("correction catalog: entry %d has no action", i)
		case e.DurationSeconds <= 0:
			return nil, fmt.Errorf("correction catalog: %s: duration must be positive", e.ActionType)
		case e.When.kinds() != 1:
			return nil, fmt.Errorf("correction catalog: %s: exactly one rule required", e.ActionType)
		case e.When.Pattern != "" && !validPattern(e.When.Pattern):
			return nil, fmt.Errorf("correction catalog: %s: unknown pattern %q", e.ActionType, e.When.Pattern)
		case len(e.Falsifiers) == 0:
			return nil, fmt.Errorf("correction catalog: %s: at least one falsifier required", e.ActionType)
		}
	}
	return &Catalog{entries: raw.Corrections}, nil
}

func validPattern(t PatternType) bool {
	switch t {
	case PatternCoherent, PatternHarmonic, PatternDissonant, PatternChaotic:
		return true
	}
	return false
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// corrections instantiates every entry matching p against the target slot.
func (c *Catalog) corrections(p Pattern, target Entry, label string) []Correction {
	r := strings.NewReplacer(
		"{code}", target.Code.String(),
		"{key}", target.Key,
		"{label}", label,
	)
	var out []Correction
	for _, e := range c.entries {
		if !e.When.matches(p) {
			continue
		}
		falsifiers := make([]string, len(e.Falsifiers))
		for i, f := range e.Falsifiers {
			falsifiers[i] = r.Replace(f)
		}
		out = append(out, Correction{
			ActionType:      e.ActionType,
			Description:     r.Replace(e.Description),
			DurationSeconds: e.DurationSeconds,
			TargetCode:      target.Code,
			ExpectedOutcome: r.Replace(e.ExpectedOutcome),
			Falsifiers:      falsifiers,
		})
	}
	return out
}

// #endregion catalog

// labelFor returns the facet label of code, or the code itself when the table
// has no such archetype.
func labelFor(table *facet.Table, code facet.CompositeCode) string {
	if table == nil {
		return code.String()
	}
	a, ok := table.Archetype(code.Archetype)
	if !ok {
		return code.String()
	}
	return a.Label(code.Facet)
}
