// Package coherence turns a subjective-state snapshot into a coherence score,
// the derived state amplifier and the four facet amplitudes.
package coherence

import (
	"math"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

// #region scorer

// Scorer computes coherence. It has no state beyond its config.
type Scorer struct {
	config ScorerConfig
}

// NewScorer creates a Scorer.
func NewScorer(config ScorerConfig) *Scorer {
	return &Scorer{config: config}
}

// #endregion scorer

// #region validate

// Validate checks every axis is finite and in [0, 10] and the breath flag is 0 or 1.
func Validate(s Snapshot) error {
	axes := []struct {
		field string
		v     float64
	}{
		{"mental_noise", s.MentalNoise},
		{"body_tension", s.BodyTension},
		{"emotional_turbulence", s.EmotionalTurbulence},
	}
	for _, a := range axes {
		if math.IsNaN(a.v) || a.v < 0 || a.v > AxisMax {
			return errs.Validation(a.field, "must be in [0, 10], got %v", a.v)
		}
	}
	if s.BreathCompletion != 0 && s.BreathCompletion != 1 {
		return errs.Validation("breath_completion", "must be 0 or 1, got %d", s.BreathCompletion)
	}
	return nil
}

// #endregion validate

// #region score

// Score validates s and computes its Result.
func (sc *Scorer) Score(s Snapshot) (Result, error) {
	if err := Validate(s); err != nil {
		return Result{}, err
	}

	raw := 100 -
		sc.config.AxisPenalty*(s.MentalNoise+s.BodyTension+s.EmotionalTurbulence) +
		sc.config.BreathBonus*float64(s.BreathCompletion)
	score := int(math.Round(clamp(raw, 0, 100)))

	mean := (s.MentalNoise + s.BodyTension + s.EmotionalTurbulence) / 3
	res := Result{
		Score:     score,
		Amplifier: Amplifier(score),
		Amplitudes: [4]float64{
			amplitude(s.MentalNoise),
			amplitude(s.BodyTension),
			amplitude(s.EmotionalTurbulence),
			amplitude(mean),
		},
	}
	res.Dominant = dominant(res.Amplitudes)
	return res, nil
}

// Amplifier maps a coherence score onto [0, 1].
func Amplifier(score int) float64 {
	return clamp(float64(score)/100, 0, 1)
}

func amplitude(axis float64) float64 {
	return clamp((AxisMax-axis)/AxisMax*100, 0, 100)
}

// dominant returns the facet with the highest amplitude, first in A-D order on ties.
func dominant(amps [4]float64) facet.Facet {
	best := facet.FacetA
	for _, f := range facet.Facets[1:] {
		if amps[f] > amps[best] {
			best = f
		}
	}
	return best
}

// #endregion score

// #region helpers

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
