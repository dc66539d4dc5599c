// Package projection derives the coherence trajectory from the current and
// previous coherence scores.
package projection

import (
	"fmt"
	"math"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
)

// #region projector

// Projector computes trajectories. It has no state beyond its config.
type Projector struct {
	config ProjectorConfig
}

// NewProjector creates a Projector.
func NewProjector(config ProjectorConfig) *Projector {
	if config.AnchorPoint <= 0 || config.AnchorPoint >= ProjectionPoints {
		config.AnchorPoint = DefaultProjectorConfig().AnchorPoint
	}
	return &Projector{config: config}
}

// #endregion projector

// #region project

// Project computes the trajectory. previous may be nil, in which case the
// trend is stable with zero momentum. entries cite the key influences.
func (p *Projector) Project(current int, previous *int, entries []interference.Entry) (Trajectory, error) {
	if current < 0 || current > 100 {
		return Trajectory{}, errs.Validation("current", "coherence must be in [0, 100], got %d", current)
	}
	tr := Trajectory{Current: current, Trend: TrendStable}
	if previous != nil {
		prev := *previous
		if prev < 0 || prev > 100 {
			return Trajectory{}, errs.Validation("previous", "coherence must be in [0, 100], got %d", prev)
		}
		tr.Previous = &prev
		switch {
		case current > prev+p.config.TrendBand:
			tr.Trend = TrendAscending
		case current < prev-p.config.TrendBand:
			tr.Trend = TrendDescending
		}
		tr.Momentum = clamp(float64(current-prev)*p.config.MomentumGain, -100, 100)
	}

	tr.ProjectedScore = clamp(float64(current)+tr.Momentum*p.config.ProjectionGain, 0, 100)
	step := (tr.ProjectedScore - float64(current)) / float64(p.config.AnchorPoint)
	for i := range tr.Projection {
		tr.Projection[i] = int(clamp(math.Round(float64(current)+step*float64(i)), 0, 100))
	}
	tr.KeyInfluences = keyInfluences(entries)
	return tr, nil
}

// keyInfluences cites the strongest and the weakest slot, even when ties make
// them the same slot.
func keyInfluences(entries []interference.Entry) []string {
	if len(entries) == 0 {
		return []string{}
	}
	r := interference.Result{Entries: entries}
	strong, weak := r.Strongest(), r.Weakest()
	return []string{
		fmt.Sprintf("strongest: %s (%s) sli %.1f", strong.Key, strong.Code, strong.SLI),
		fmt.Sprintf("weakest: %s (%s) sli %.1f", weak.Key, weak.Code, weak.SLI),
	}
}

// #endregion project

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
