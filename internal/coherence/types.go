package coherence

import "github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"

// AxisMax is the upper bound of every subjective-state axis.
const AxisMax = 10.0

// #region config

// ScorerConfig holds the linear coefficients of the coherence formula.
type ScorerConfig struct {
	AxisPenalty float64 // subtracted per unit of each axis
	BreathBonus float64 // added when the breath cycle completed
}

// DefaultScorerConfig returns the standard coefficients.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		AxisPenalty: 3,
		BreathBonus: 10,
	}
}

// #endregion config

// #region snapshot

// Snapshot is one momentary subjective-state report.
type Snapshot struct {
	MentalNoise         float64 `json:"mental_noise"`         // [0, 10]
	BodyTension         float64 `json:"body_tension"`         // [0, 10]
	EmotionalTurbulence float64 `json:"emotional_turbulence"` // [0, 10]
	BreathCompletion    int     `json:"breath_completion"`    // 0 or 1
}

// #endregion snapshot

// #region result

// Result is the scored snapshot.
type Result struct {
	Score      int         `json:"score"`      // [0, 100]
	Amplifier  float64     `json:"amplifier"`  // Score / 100
	Amplitudes [4]float64  `json:"amplitudes"` // per facet A-D, [0, 100]
	Dominant   facet.Facet `json:"dominant"`
}

// Amplitude returns the amplitude of facet f, or 0 for an invalid facet.
func (r Result) Amplitude(f facet.Facet) float64 {
	if !f.Valid() {
		return 0
	}
	return r.Amplitudes[f]
}

// #endregion result
