package interference

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/profile"
)

// #region helpers

// uniformProfile gives every slot the same weighted frequency on facet A,
// with a distinct archetype per slot.
func uniformProfile(wf float64) profile.PrimeProfile {
	var p profile.PrimeProfile
	for i, def := range profile.DefaultSlots() {
		code := facet.CompositeCode{Archetype: i + 1, Facet: facet.FacetA}
		p.Slots[i] = profile.Slot{SlotDef: def, Archetype: i + 1, Facet: facet.FacetA, Code: code, WeightedFrequency: wf}
	}
	p.TotalWeight = 11
	p.Dominant = 1
	return p
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	table, err := facet.DefaultTable()
	require.NoError(t, err)
	e, err := NewEngine(DefaultEngineConfig(), catalog, table)
	require.NoError(t, err)
	return e
}

func actions(cs []Correction) []ActionType {
	out := make([]ActionType, len(cs))
	for i, c := range cs {
		out[i] = c.ActionType
	}
	return out
}

var full = [4]float64{100, 100, 100, 100}

// #endregion helpers

// #region sli-tests

func TestSLIRange(t *testing.T) {
	for wf := 0.0; wf <= 180; wf += 7.5 {
		for amp := 0.0; amp <= 1; amp += 0.125 {
			for fa := 0.0; fa <= 100; fa += 12.5 {
				v := SLI(wf, amp, fa)
				if v < 0 || v > 100 {
					t.Fatalf("SLI(%v, %v, %v) = %v", wf, amp, fa, v)
				}
			}
		}
	}
	assert.InDelta(t, 100, SLI(180, 1, 100), 1e-9)
	assert.InDelta(t, 45, SLI(90, 1, 50), 1e-9)
}

func TestLevels(t *testing.T) {
	e := newTestEngine(t)
	cases := map[float64]Level{
		100: LevelNone, 75.01: LevelNone, 75: LevelMinor, 50.5: LevelMinor,
		50: LevelModerate, 25.1: LevelModerate, 25: LevelSevere, 0: LevelSevere,
	}
	for v, want := range cases {
		assert.Equal(t, want, e.level(v), "sli %v", v)
	}
}

func TestClassifyMonotonic(t *testing.T) {
	e := newTestEngine(t)
	prev := e.Classify(0)
	for m := 0.0; m <= 100; m += 0.25 {
		cur := e.Classify(m)
		if cur.rank() > prev.rank() {
			t.Fatalf("mean %v classified %s, less coherent than %s at a lower mean", m, cur, prev)
		}
		prev = cur
	}
	assert.Equal(t, PatternChaotic, e.Classify(25))
	assert.Equal(t, PatternDissonant, e.Classify(25.5))
	assert.Equal(t, PatternHarmonic, e.Classify(75))
	assert.Equal(t, PatternCoherent, e.Classify(75.5))
}

// #endregion sli-tests

// #region evaluate-tests

func TestEvaluatePatterns(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		name       string
		wf, amp    float64
		pattern    PatternType
		actions    []ActionType
		falsifiers int
		affected   int
	}{
		{"coherent", 100, 1, PatternCoherent, []ActionType{ActionReflection}, 3, 0},
		{"harmonic", 60, 1, PatternHarmonic, []ActionType{ActionMovement, ActionReflection}, 4, 0},
		{"dissonant", 40, 1, PatternDissonant, []ActionType{ActionVisualization, ActionReflection}, 4, 9},
		{"chaotic", 100, 0.1, PatternChaotic, []ActionType{ActionBreath, ActionAffirmation, ActionReflection}, 6, 9},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := e.Evaluate(uniformProfile(c.wf), c.amp, full)
			require.NoError(t, err)
			require.Len(t, res.Entries, 9)
			assert.Equal(t, c.pattern, res.Pattern.Type)
			assert.Equal(t, c.actions, actions(res.Corrections))
			assert.Len(t, res.Falsifiers, c.falsifiers)
			assert.Len(t, res.Pattern.AffectedSlots, c.affected)
			assert.InDelta(t, 100-res.Pattern.MeanSLI, res.Pattern.Severity, 1e-9)
			assert.Equal(t, Disclaimer, res.Falsifiers[len(res.Falsifiers)-1])
			for _, corr := range res.Corrections {
				assert.NotEmpty(t, corr.Falsifiers)
				assert.Greater(t, corr.DurationSeconds, 0)
			}
		})
	}
}

func TestEvaluateBreathOnSeverity(t *testing.T) {
	e := newTestEngine(t)
	// mean SLI 28: dissonant with severity 72.
	res, err := e.Evaluate(uniformProfile(28), 1, full)
	require.NoError(t, err)
	assert.Equal(t, PatternDissonant, res.Pattern.Type)
	assert.Equal(t, []ActionType{ActionBreath, ActionVisualization, ActionReflection}, actions(res.Corrections))
}

func TestEvaluateTargetsWeakestSlot(t *testing.T) {
	e := newTestEngine(t)
	p := uniformProfile(90)
	p.Slots[6].WeightedFrequency = 10 // trajectory
	p.Slots[7].WeightedFrequency = 10 // root_vector ties; lower index wins

	res, err := e.Evaluate(p, 1, full)
	require.NoError(t, err)
	weakest := res.Weakest()
	assert.Equal(t, 7, weakest.Slot)
	assert.Equal(t, "trajectory", weakest.Key)
	for _, c := range res.Corrections {
		assert.Equal(t, p.Slots[6].Code, c.TargetCode)
		assert.Contains(t, c.Description, "07A")
		assert.False(t, strings.Contains(c.Description, "{"), c.Description)
	}
	assert.Equal(t, 1, res.Strongest().Slot)

	found := false
	for _, f := range res.Falsifiers {
		if strings.Contains(f, "trajectory (07A)") {
			found = true
		}
	}
	assert.True(t, found, "expected a falsifier tied to the weakest slot: %v", res.Falsifiers)
}

func TestEvaluateUsesSlotFacetAmplitude(t *testing.T) {
	e := newTestEngine(t)
	p := uniformProfile(100)
	p.Slots[0].Facet = facet.FacetC
	res, err := e.Evaluate(p, 0.5, [4]float64{100, 100, 20, 100})
	require.NoError(t, err)
	assert.InDelta(t, 10, res.Entries[0].SLI, 1e-9)
	assert.InDelta(t, 50, res.Entries[1].SLI, 1e-9)
	assert.Equal(t, 20.0, res.Entries[0].FacetAmplitude)
}

func TestEvaluateRejectsInputs(t *testing.T) {
	e := newTestEngine(t)
	p := uniformProfile(50)

	_, err := e.Evaluate(p, 1.5, full)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	_, err = e.Evaluate(p, math.NaN(), full)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	_, err = e.Evaluate(p, 1, [4]float64{100, -1, 100, 100})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Equal(t, "facet_amplitude", errs.FieldOf(err))

	p.Slots[3].WeightedFrequency = math.NaN()
	_, err = e.Evaluate(p, 1, full)
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestEvaluateDeterministic(t *testing.T) {
	e := newTestEngine(t)
	p := uniformProfile(47.3)
	p.Slots[2].WeightedFrequency = 12
	a, err := e.Evaluate(p, 0.63, [4]float64{80, 40, 61, 60})
	require.NoError(t, err)
	b, err := e.Evaluate(p, 0.63, [4]float64{80, 40, 61, 60})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// #endregion evaluate-tests

// #region falsifier-tests

func TestFalsifiersDeduplicated(t *testing.T) {
	doc := `
corrections:
  - {action: breath, when: {always: true}, duration_seconds: 60, description: d, expected_outcome: o, falsifiers: [same, first]}
  - {action: reflection, when: {always: true}, duration_seconds: 60, description: d, expected_outcome: o, falsifiers: [same, second]}
`
	catalog, err := LoadCatalog([]byte(doc))
	require.NoError(t, err)
	e, err := NewEngine(DefaultEngineConfig(), catalog, nil)
	require.NoError(t, err)

	res, err := e.Evaluate(uniformProfile(100), 1, full)
	require.NoError(t, err)
	require.Len(t, res.Falsifiers, 5)
	assert.Equal(t, []string{"same", "first", "second"}, res.Falsifiers[:3])
	assert.Equal(t, Disclaimer, res.Falsifiers[4])
}

func TestLoadCatalogRejects(t *testing.T) {
	docs := map[string]string{
		"empty":        "corrections: []",
		"no falsifier": "corrections: [{action: breath, when: {always: true}, duration_seconds: 60}]",
		"two rules":    "corrections: [{action: breath, when: {always: true, pattern: chaotic}, duration_seconds: 60, falsifiers: [x]}]",
		"no rule":      "corrections: [{action: breath, when: {}, duration_seconds: 60, falsifiers: [x]}]",
		"bad pattern":  "corrections: [{action: breath, when: {pattern: calm}, duration_seconds: 60, falsifiers: [x]}]",
		"duration":     "corrections: [{action: breath, when: {always: true}, duration_seconds: 0, falsifiers: [x]}]",
		"broken":       "corrections: [",
	}
	for name, doc := range docs {
		_, err := LoadCatalog([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestDefaultCatalogCoversEveryPath(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Equal(t, 5, catalog.Len())
}

// #endregion falsifier-tests
