package reading

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/coherence"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/connectivity"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/profile"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/projection"
)

// SchemaVersion is stamped on every Reading.
const SchemaVersion = 1

// #region reading

// Reading is the assembled output of one pipeline run. It is built once by an
// Assembler and never modified afterwards; a new moment yields a new Reading.
type Reading struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"version"`
	Subject   string    `json:"subject,omitempty"`

	EventInstant  time.Time `json:"event_instant"`
	DesignInstant time.Time `json:"design_instant"`

	Profile   profile.PrimeProfile                        `json:"profile"`
	Centers   map[connectivity.Center]connectivity.Status `json:"centers"`
	Channels  []connectivity.Channel                      `json:"channels"`
	Role      connectivity.Role                           `json:"role"`
	Authority connectivity.Authority                      `json:"authority"`

	State        coherence.Snapshot        `json:"state"`
	Coherence    coherence.Result          `json:"coherence"`
	Interference []interference.Entry      `json:"interference"`
	Pattern      interference.Pattern      `json:"pattern"`
	Trajectory   projection.Trajectory     `json:"trajectory"`
	Corrections  []interference.Correction `json:"corrections"`
	Falsifiers   []string                  `json:"falsifiers"`

	Summary Summary `json:"summary"`
}

// JSON returns the canonical encoding. Map keys are sorted, so equal readings
// encode to equal bytes.
func (r Reading) JSON() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode reading: %w", err)
	}
	return b, nil
}

// Parse decodes a canonical encoding.
func Parse(data []byte) (Reading, error) {
	var r Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return Reading{}, fmt.Errorf("decode reading: %w", err)
	}
	if r.Version != SchemaVersion {
		return Reading{}, fmt.Errorf("decode reading: unsupported version %d", r.Version)
	}
	return r, nil
}

// #endregion reading

// #region summary

// Summary is the structured handoff for downstream narration. It holds no prose.
type Summary struct {
	Role           connectivity.Role        `json:"role"`
	Authority      connectivity.Authority   `json:"authority"`
	TopSlots       []SummarySlot            `json:"top_slots"`
	CoherenceScore int                      `json:"coherence_score"`
	Trend          projection.Trend         `json:"trend"`
	Pattern        interference.PatternType `json:"pattern"`
	TopActions     []SummaryAction          `json:"top_actions"`
	Falsifiers     []string                 `json:"falsifiers"`
}

// SummarySlot is one of the strongest profile slots.
type SummarySlot struct {
	Key               string              `json:"key"`
	Name              string              `json:"name"`
	Code              facet.CompositeCode `json:"code"`
	Archetype         string              `json:"archetype"`
	Label             string              `json:"label"`
	WeightedFrequency float64             `json:"weighted_frequency"`
}

// SummaryAction is one of the first corrective actions.
type SummaryAction struct {
	ActionType      interference.ActionType `json:"action_type"`
	TargetCode      facet.CompositeCode     `json:"target_code"`
	DurationSeconds int                     `json:"duration_seconds"`
	ExpectedOutcome string                  `json:"expected_outcome"`
}

// #endregion summary
