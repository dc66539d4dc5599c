// Package eval checks that every bounded quantity of an assembled reading lies
// within its documented range.
package eval

import (
	"fmt"
	"math"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/profile"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

// #region eval-harness

// Run checks r and reports every metric. A reading with any failed metric must
// not leave the engine.
func Run(r reading.Reading) Result {
	var c checker
	for _, s := range r.Profile.Slots {
		c.add(fmt.Sprintf("slot_%s_base_frequency", s.Key), s.BaseFrequency, 0, 100)
		c.add(fmt.Sprintf("slot_%s_weighted_frequency", s.Key), s.WeightedFrequency, 0, profile.MaxWeightedFrequency)
	}
	for _, e := range r.Interference {
		c.add(fmt.Sprintf("slot_%s_sli", e.Key), e.SLI, 0, 100)
	}
	c.add("coherence_score", float64(r.Coherence.Score), 0, 100)
	c.add("state_amplifier", r.Coherence.Amplifier, 0, 1)
	for i, a := range r.Coherence.Amplitudes {
		c.add(fmt.Sprintf("facet_%d_amplitude", i), a, 0, 100)
	}
	c.add("severity", r.Pattern.Severity, 0, 100)
	c.add("momentum", r.Trajectory.Momentum, -100, 100)
	c.add("projected_score", r.Trajectory.ProjectedScore, 0, 100)
	for i, p := range r.Trajectory.Projection {
		c.add(fmt.Sprintf("projection_%d", i), float64(p), 0, 100)
	}

	res := Result{Passed: true, Metrics: c.metrics, Reason: "all checks passed"}
	failed := res.Failed()
	switch {
	case len(failed) == 1:
		res.Passed = false
		res.Reason = fmt.Sprintf("eval failed: %s %v outside [%v, %v]", failed[0].Name, failed[0].Value, failed[0].Lo, failed[0].Hi)
	case len(failed) > 1:
		res.Passed = false
		res.Reason = fmt.Sprintf("eval failed: %d checks, first %s %v outside [%v, %v]",
			len(failed), failed[0].Name, failed[0].Value, failed[0].Lo, failed[0].Hi)
	}
	return res
}

// Check returns an invariant error for the first failed metric of r, or nil.
func Check(r reading.Reading) error {
	failed := Run(r).Failed()
	if len(failed) == 0 {
		return nil
	}
	m := failed[0]
	return errs.Invariant(m.Name, m.Value, m.Lo, m.Hi)
}

// #endregion eval-harness

// #region helpers

type checker struct {
	metrics []Metric
}

// add records one metric. NaN fails every range.
func (c *checker) add(name string, v, lo, hi float64) {
	pass := !math.IsNaN(v) && v >= lo && v <= hi
	c.metrics = append(c.metrics, Metric{Name: name, Value: v, Lo: lo, Hi: hi, Pass: pass})
}

// #endregion helpers
