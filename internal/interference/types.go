package interference

import "github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"

// #region level

// Level is the per-slot interference band.
type Level string

const (
	LevelNone     Level = "none"
	LevelMinor    Level = "minor"
	LevelModerate Level = "moderate"
	LevelSevere   Level = "severe"
)

// PatternType classifies the aggregate interference.
type PatternType string

const (
	PatternCoherent  PatternType = "coherent"
	PatternHarmonic  PatternType = "harmonic"
	PatternDissonant PatternType = "dissonant"
	PatternChaotic   PatternType = "chaotic"
)

// rank orders pattern types from most to least coherent.
func (t PatternType) rank() int {
	switch t {
	case PatternCoherent:
		return 0
	case PatternHarmonic:
		return 1
	case PatternDissonant:
		return 2
	default:
		return 3
	}
}

// #endregion level

// #region config

// EngineConfig holds the band thresholds. A value strictly above a threshold
// falls in the band.
type EngineConfig struct {
	NoneAbove      float64 // SLI above this: none
	MinorAbove     float64 // above this: minor
	ModerateAbove  float64 // above this: moderate; otherwise severe
	CoherentAbove  float64 // mean SLI above this: coherent
	HarmonicAbove  float64
	DissonantAbove float64 // otherwise chaotic
}

// DefaultEngineConfig returns the standard thresholds.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		NoneAbove:      75,
		MinorAbove:     50,
		ModerateAbove:  25,
		CoherentAbove:  75,
		HarmonicAbove:  50,
		DissonantAbove: 25,
	}
}

// #endregion config

// #region entry

// Entry is the interference score of one profile slot.
type Entry struct {
	Slot           int                 `json:"slot"`
	Key            string              `json:"key"`
	Code           facet.CompositeCode `json:"code"`
	BaseAmplitude  float64             `json:"base_amplitude"` // the slot's weighted frequency
	StateAmplifier float64             `json:"state_amplifier"`
	FacetAmplitude float64             `json:"facet_amplitude"`
	SLI            float64             `json:"sli"` // [0, 100]
	Level          Level               `json:"level"`
}

// Pattern is the aggregate classification over all entries.
type Pattern struct {
	Type          PatternType `json:"type"`
	MeanSLI       float64     `json:"mean_sli"`
	Severity      float64     `json:"severity"` // 100 - mean
	AffectedSlots []int       `json:"affected_slots"`
}

// #endregion entry

// #region correction

// ActionType names a corrective practice.
type ActionType string

const (
	ActionBreath        ActionType = "breath"
	ActionVisualization ActionType = "visualization"
	ActionAffirmation   ActionType = "affirmation"
	ActionMovement      ActionType = "movement"
	ActionReflection    ActionType = "reflection"
)

// Correction is one corrective action aimed at a composite code.
type Correction struct {
	ActionType      ActionType          `json:"action_type"`
	Description     string              `json:"description"`
	DurationSeconds int                 `json:"duration_seconds"`
	TargetCode      facet.CompositeCode `json:"target_code"`
	ExpectedOutcome string              `json:"expected_outcome"`
	Falsifiers      []string            `json:"falsifiers"`
}

// #endregion correction

// #region result

// Result is the full interference output for one profile and state.
type Result struct {
	Entries     []Entry      `json:"entries"`
	Pattern     Pattern      `json:"pattern"`
	Corrections []Correction `json:"corrections"`
	Falsifiers  []string     `json:"falsifiers"`
}

// Weakest returns the entry with the lowest SLI, lowest slot on ties.
func (r Result) Weakest() Entry {
	return pick(r.Entries, func(a, b float64) bool { return a < b })
}

// Strongest returns the entry with the highest SLI, lowest slot on ties.
func (r Result) Strongest() Entry {
	return pick(r.Entries, func(a, b float64) bool { return a > b })
}

func pick(entries []Entry, better func(a, b float64) bool) Entry {
	if len(entries) == 0 {
		return Entry{}
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if better(e.SLI, best.SLI) {
			best = e
		}
	}
	return best
}

// #endregion result
