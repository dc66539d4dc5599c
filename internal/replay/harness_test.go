package replay

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/engine"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
)

// helper: service with no position source; replay never needs one.
func newService(t *testing.T) *engine.Service {
	t.Helper()
	svc, err := engine.NewService(engine.DefaultServiceConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func loadCharisma(t *testing.T) *Fixture {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", "charisma_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	return f
}

// TestFixture_CharismaSession is the primary regression test: if slot
// weights, facet amplitudes, thresholds or the catalog change, this catches
// the drift.
func TestFixture_CharismaSession(t *testing.T) {
	f := loadCharisma(t)

	res, err := Replay(newService(t), f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for _, m := range res.Profile {
		t.Errorf("profile: %s", m)
	}
	if len(res.Turns) != len(f.Turns) {
		t.Fatalf("expected %d turns, got %d", len(f.Turns), len(res.Turns))
	}
	for i, tr := range res.Turns {
		if tr.TurnID != f.Turns[i].TurnID {
			t.Errorf("turn %d: expected turn_id=%s, got %s", i, f.Turns[i].TurnID, tr.TurnID)
		}
		for _, m := range tr.Mismatches {
			t.Errorf("%s: %s", tr.TurnID, m)
		}
	}
	if !res.Passed() {
		t.Fatal("replay reported drift")
	}
}

func TestReplay_FeedsPreviousForward(t *testing.T) {
	f := loadCharisma(t)
	res, err := Replay(newService(t), f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if res.Turns[0].Reading.Trajectory.Previous != nil {
		t.Error("first turn should have no previous score")
	}
	for i := 1; i < len(res.Turns); i++ {
		prev := res.Turns[i].Reading.Trajectory.Previous
		if prev == nil || *prev != res.Turns[i-1].Reading.Coherence.Score {
			t.Errorf("turn %d: previous should be turn %d's coherence", i, i-1)
		}
	}
}

func TestReplay_ReportsDrift(t *testing.T) {
	f := loadCharisma(t)
	f.ExpectedProfile.Role = "reflector"
	wrong := 50
	f.Turns[1].Expected.Coherence = &wrong
	f.Turns[2].Expected.Pattern = interference.PatternCoherent

	res, err := Replay(newService(t), f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if res.Passed() {
		t.Fatal("expected drift to be reported")
	}
	if len(res.Profile) != 1 || !strings.HasPrefix(res.Profile[0], "role:") {
		t.Errorf("unexpected profile mismatches: %v", res.Profile)
	}
	if res.Turns[0].Passed() != true || res.Turns[3].Passed() != true {
		t.Error("untouched turns should still pass")
	}

	s := Summarize(res)
	if s.TotalTurns != 4 || s.Passed != 2 || s.Failed != 2 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.FinalCoherence != 100 {
		t.Errorf("final coherence = %d, want 100", s.FinalCoherence)
	}
	if s.Patterns[interference.PatternDissonant] != 2 {
		t.Errorf("expected 2 dissonant turns, got %d", s.Patterns[interference.PatternDissonant])
	}
}

func TestReplay_PipelineErrorStops(t *testing.T) {
	f := loadCharisma(t)
	f.Turns[1].State.MentalNoise = 12

	res, err := Replay(newService(t), f)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "turn-2") {
		t.Errorf("error should name the turn: %v", err)
	}
	if len(res.Turns) != 1 {
		t.Errorf("expected 1 completed turn, got %d", len(res.Turns))
	}
}
