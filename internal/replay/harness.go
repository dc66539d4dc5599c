// Package replay runs recorded fixtures through the engine and reports every
// outcome that drifted from what the fixture pins.
package replay

import (
	"fmt"
	"slices"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/engine"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

// #region types

// TurnResult is the outcome of replaying one turn.
type TurnResult struct {
	TurnID     string          `json:"turn_id"`
	Reading    reading.Reading `json:"reading"`
	Mismatches []string        `json:"mismatches,omitempty"`
}

// Passed reports whether the turn matched every pinned value.
func (r TurnResult) Passed() bool {
	return len(r.Mismatches) == 0
}

// Result is a full replay run.
type Result struct {
	Profile []string     `json:"profile_mismatches,omitempty"`
	Turns   []TurnResult `json:"turns"`
}

// Passed reports whether the profile and every turn matched.
func (r Result) Passed() bool {
	if len(r.Profile) > 0 {
		return false
	}
	for _, t := range r.Turns {
		if !t.Passed() {
			return false
		}
	}
	return true
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns     int                              `json:"total_turns"`
	Passed         int                              `json:"passed"`
	Failed         int                              `json:"failed"`
	Patterns       map[interference.PatternType]int `json:"patterns"`
	FinalCoherence int                              `json:"final_coherence"`
}

// #endregion types

// #region replay

// Replay scores every turn of f against f's charts, feeding each turn's
// coherence forward as the next turn's previous score. An error means the
// pipeline itself failed; drift is reported in the Result.
func Replay(svc *engine.Service, f *Fixture) (Result, error) {
	var res Result
	previous := f.Previous
	for i, turn := range f.Turns {
		r, err := svc.ReadingFromPositions(f.Subject, f.Event, f.Design, turn.State, previous)
		if err != nil {
			return res, fmt.Errorf("turn %d (%s): %w", i, turn.TurnID, err)
		}
		if i == 0 && f.ExpectedProfile != nil {
			res.Profile = checkProfile(*f.ExpectedProfile, r)
		}
		res.Turns = append(res.Turns, TurnResult{
			TurnID:     turn.TurnID,
			Reading:    r,
			Mismatches: checkTurn(turn.Expected, r),
		})
		score := r.Coherence.Score
		previous = &score
	}
	return res, nil
}

// Summarize computes aggregate stats from a replay result.
func Summarize(res Result) Summary {
	s := Summary{
		TotalTurns: len(res.Turns),
		Patterns:   map[interference.PatternType]int{},
	}
	for _, t := range res.Turns {
		if t.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Patterns[t.Reading.Pattern.Type]++
		s.FinalCoherence = t.Reading.Coherence.Score
	}
	return s
}

// #endregion replay

// #region checks

func checkProfile(want ExpectedProfile, r reading.Reading) []string {
	var out []string
	if want.Role != "" && want.Role != r.Role {
		out = append(out, fmt.Sprintf("role: want %s, got %s", want.Role, r.Role))
	}
	if want.Authority != "" && want.Authority != r.Authority {
		out = append(out, fmt.Sprintf("authority: want %s, got %s", want.Authority, r.Authority))
	}
	if want.Dominant != 0 && want.Dominant != r.Profile.Dominant {
		out = append(out, fmt.Sprintf("dominant: want slot %d, got %d", want.Dominant, r.Profile.Dominant))
	}
	if want.Activated != nil {
		if got := r.Profile.Activated(); !slices.Equal(want.Activated, got) {
			out = append(out, fmt.Sprintf("activated: want %v, got %v", want.Activated, got))
		}
	}
	if want.Channels != nil {
		got := make([]string, 0, len(r.Channels))
		for _, ch := range r.Channels {
			got = append(got, ch.Name)
		}
		if !slices.Equal(want.Channels, got) {
			out = append(out, fmt.Sprintf("channels: want %v, got %v", want.Channels, got))
		}
	}
	return out
}

func checkTurn(want Expected, r reading.Reading) []string {
	var out []string
	if want.Coherence != nil && *want.Coherence != r.Coherence.Score {
		out = append(out, fmt.Sprintf("coherence: want %d, got %d", *want.Coherence, r.Coherence.Score))
	}
	if want.Trend != "" && want.Trend != r.Trajectory.Trend {
		out = append(out, fmt.Sprintf("trend: want %s, got %s", want.Trend, r.Trajectory.Trend))
	}
	if want.Pattern != "" && want.Pattern != r.Pattern.Type {
		out = append(out, fmt.Sprintf("pattern: want %s, got %s (mean sli %.2f)", want.Pattern, r.Pattern.Type, r.Pattern.MeanSLI))
	}
	if want.Weakest != "" {
		weak := interference.Result{Entries: r.Interference}.Weakest()
		if weak.Key != want.Weakest {
			out = append(out, fmt.Sprintf("weakest: want %s, got %s", want.Weakest, weak.Key))
		}
	}
	if want.Actions != nil {
		got := make([]interference.ActionType, 0, len(r.Corrections))
		for _, c := range r.Corrections {
			got = append(got, c.ActionType)
		}
		if !slices.Equal(want.Actions, got) {
			out = append(out, fmt.Sprintf("actions: want %v, got %v", want.Actions, got))
		}
	}
	return out
}

// #endregion checks
