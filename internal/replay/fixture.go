package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/coherence"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/connectivity"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/projection"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: one pair of
// charts and a sequence of state snapshots scored against them.
type Fixture struct {
	Description     string                `json:"description"`
	Subject         string                `json:"subject"`
	Event           ephemeris.PositionSet `json:"event"`
	Design          ephemeris.PositionSet `json:"design"`
	Previous        *int                  `json:"previous,omitempty"` // coherence before the first turn
	ExpectedProfile *ExpectedProfile      `json:"expected_profile,omitempty"`
	Turns           []Turn                `json:"turns"`
}

// ExpectedProfile pins the state-independent outcome. Empty fields are not
// checked.
type ExpectedProfile struct {
	Role      connectivity.Role      `json:"role,omitempty"`
	Authority connectivity.Authority `json:"authority,omitempty"`
	Dominant  int                    `json:"dominant,omitempty"`
	Activated []int                  `json:"activated,omitempty"`
	Channels  []string               `json:"channels,omitempty"`
}

// Turn is one recorded snapshot.
type Turn struct {
	TurnID   string             `json:"turn_id"`
	State    coherence.Snapshot `json:"state"`
	Expected Expected           `json:"expected"`
}

// Expected pins one turn's outcome. Empty fields are not checked.
type Expected struct {
	Coherence *int                      `json:"coherence,omitempty"`
	Trend     projection.Trend          `json:"trend,omitempty"`
	Pattern   interference.PatternType  `json:"pattern,omitempty"`
	Weakest   string                    `json:"weakest,omitempty"` // slot key
	Actions   []interference.ActionType `json:"actions,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes a fixture document.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Turns) == 0 {
		return nil, fmt.Errorf("fixture has no turns")
	}
	return &f, nil
}

// #endregion fixture-loader
