// Package interference scores per-slot interference from a prime profile and
// the coherence-derived amplifiers, classifies the aggregate pattern and
// selects corrective actions with falsifiable predictions.
package interference

import (
	"fmt"
	"math"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/profile"
)

// Disclaimer closes every falsifier list.
const Disclaimer = "If none of these predictions manifest within 7 days, this reading is inaccurate."

// #region engine

// Engine computes interference. It owns only immutable tables.
type Engine struct {
	config  EngineConfig
	catalog *Catalog
	table   *facet.Table
}

// NewEngine binds thresholds, the correction catalog and the archetype table
// used for correction labels.
func NewEngine(config EngineConfig, catalog *Catalog, table *facet.Table) (*Engine, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, errs.Validation("catalog", "must not be empty")
	}
	if !(config.NoneAbove >= config.MinorAbove && config.MinorAbove >= config.ModerateAbove) {
		return nil, errs.Validation("thresholds", "level thresholds must be descending")
	}
	if !(config.CoherentAbove >= config.HarmonicAbove && config.HarmonicAbove >= config.DissonantAbove) {
		return nil, errs.Validation("thresholds", "pattern thresholds must be descending")
	}
	return &Engine{config: config, catalog: catalog, table: table}, nil
}

// #endregion engine

// #region evaluate

// Evaluate scores every slot of p. amplifier is in [0, 1]; amplitudes are the
// per-facet amplitudes A-D in [0, 100].
func (e *Engine) Evaluate(p profile.PrimeProfile, amplifier float64, amplitudes [4]float64) (Result, error) {
	if math.IsNaN(amplifier) || amplifier < 0 || amplifier > 1 {
		return Result{}, errs.Validation("state_amplifier", "must be in [0, 1], got %v", amplifier)
	}
	for i, a := range amplitudes {
		if math.IsNaN(a) || a < 0 || a > 100 {
			return Result{}, errs.Validation("facet_amplitude", "facet %s must be in [0, 100], got %v", facet.Facets[i], a)
		}
	}

	res := Result{Entries: make([]Entry, 0, len(p.Slots))}
	for _, s := range p.Slots {
		if math.IsNaN(s.WeightedFrequency) || s.WeightedFrequency < 0 {
			return Result{}, errs.Validation("weighted_frequency", "slot %s: %v", s.Key, s.WeightedFrequency)
		}
		if !s.Facet.Valid() {
			return Result{}, errs.Validation("facet", "slot %s has invalid facet %d", s.Key, int(s.Facet))
		}
		fa := amplitudes[s.Facet]
		v := SLI(s.WeightedFrequency, amplifier, fa)
		res.Entries = append(res.Entries, Entry{
			Slot:           s.Index,
			Key:            s.Key,
			Code:           s.Code,
			BaseAmplitude:  s.WeightedFrequency,
			StateAmplifier: amplifier,
			FacetAmplitude: fa,
			SLI:            v,
			Level:          e.level(v),
		})
	}

	res.Pattern = e.classify(res.Entries)
	weakest := res.Weakest()
	res.Corrections = e.catalog.corrections(res.Pattern, weakest, labelFor(e.table, weakest.Code))
	res.Falsifiers = falsifiers(res.Corrections, weakest)
	return res, nil
}

// SLI is weighted frequency times amplifier times facet amplitude share, clamped to [0, 100].
func SLI(weightedFrequency, amplifier, facetAmplitude float64) float64 {
	return clamp(weightedFrequency*amplifier*(facetAmplitude/100), 0, 100)
}

func (e *Engine) level(sli float64) Level {
	switch {
	case sli > e.config.NoneAbove:
		return LevelNone
	case sli > e.config.MinorAbove:
		return LevelMinor
	case sli > e.config.ModerateAbove:
		return LevelModerate
	default:
		return LevelSevere
	}
}

// Classify returns the pattern type for a mean SLI.
func (e *Engine) Classify(mean float64) PatternType {
	switch {
	case mean > e.config.CoherentAbove:
		return PatternCoherent
	case mean > e.config.HarmonicAbove:
		return PatternHarmonic
	case mean > e.config.DissonantAbove:
		return PatternDissonant
	default:
		return PatternChaotic
	}
}

func (e *Engine) classify(entries []Entry) Pattern {
	sum := 0.0
	affected := []int{}
	for _, en := range entries {
		sum += en.SLI
		if en.Level == LevelModerate || en.Level == LevelSevere {
			affected = append(affected, en.Slot)
		}
	}
	mean := 0.0
	if len(entries) > 0 {
		mean = sum / float64(len(entries))
	}
	return Pattern{
		Type:          e.Classify(mean),
		MeanSLI:       mean,
		Severity:      clamp(100-mean, 0, 100),
		AffectedSlots: affected,
	}
}

// #endregion evaluate

// #region falsifiers

// falsifiers collects every correction's falsifiers, one for the weakest slot
// and the closing disclaimer. Duplicates are dropped, first occurrence kept.
func falsifiers(corrections []Correction, weakest Entry) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, c := range corrections {
		for _, f := range c.Falsifiers {
			add(f)
		}
	}
	add(fmt.Sprintf("Within 72 hours, a new reading shows slot %s (%s) with an SLI above %.1f.",
		weakest.Key, weakest.Code, weakest.SLI))
	add(Disclaimer)
	return out
}

// #endregion falsifiers

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
