// Package reading assembles the outputs of every pipeline stage into one
// immutable Reading and derives the narration summary from it.
package reading

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/coherence"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/connectivity"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/profile"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/projection"
)

// #region config

// AssemblerConfig injects the clock and id generator and sizes the summary.
type AssemblerConfig struct {
	Clock      func() time.Time
	NewID      func() string
	TopSlots   int
	TopActions int
}

// DefaultAssemblerConfig returns the wall clock, random UUIDs and a summary
// of three slots and three actions.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		Clock:      func() time.Time { return time.Now().UTC() },
		NewID:      uuid.NewString,
		TopSlots:   3,
		TopActions: 3,
	}
}

// #endregion config

// #region input

// Input carries every stage output a Reading is built from.
type Input struct {
	Subject       string
	EventInstant  time.Time
	DesignInstant time.Time
	Profile       profile.PrimeProfile
	Connectivity  connectivity.Result
	State         coherence.Snapshot
	Coherence     coherence.Result
	Interference  interference.Result
	Trajectory    projection.Trajectory
}

// #endregion input

// #region assembler

// Assembler builds Readings.
type Assembler struct {
	config AssemblerConfig
	table  *facet.Table
}

// NewAssembler creates an assembler. Zero fields in config take their
// defaults. table supplies the facet labels of the summary slots.
func NewAssembler(config AssemblerConfig, table *facet.Table) (*Assembler, error) {
	if table == nil {
		return nil, errs.Validation("table", "archetype table is required")
	}
	def := DefaultAssemblerConfig()
	if config.Clock == nil {
		config.Clock = def.Clock
	}
	if config.NewID == nil {
		config.NewID = def.NewID
	}
	if config.TopSlots <= 0 {
		config.TopSlots = def.TopSlots
	}
	if config.TopActions <= 0 {
		config.TopActions = def.TopActions
	}
	return &Assembler{config: config, table: table}, nil
}

// Assemble copies in into a new Reading. Nothing in the Reading aliases in,
// so later changes to either side do not leak.
func (a *Assembler) Assemble(in Input) Reading {
	r := Reading{
		ID:            a.config.NewID(),
		CreatedAt:     a.config.Clock().UTC(),
		Version:       SchemaVersion,
		Subject:       in.Subject,
		EventInstant:  in.EventInstant.UTC(),
		DesignInstant: in.DesignInstant.UTC(),
		Profile:       in.Profile,
		Centers:       make(map[connectivity.Center]connectivity.Status, len(in.Connectivity.Centers)),
		Channels:      append([]connectivity.Channel{}, in.Connectivity.Completed...),
		Role:          in.Connectivity.Role,
		Authority:     in.Connectivity.Authority,
		State:         in.State,
		Coherence:     in.Coherence,
		Interference:  append([]interference.Entry{}, in.Interference.Entries...),
		Pattern:       in.Interference.Pattern,
		Trajectory:    in.Trajectory,
		Corrections:   make([]interference.Correction, 0, len(in.Interference.Corrections)),
		Falsifiers:    append([]string{}, in.Interference.Falsifiers...),
	}
	for c, s := range in.Connectivity.Centers {
		r.Centers[c] = s
	}
	r.Pattern.AffectedSlots = append([]int{}, in.Interference.Pattern.AffectedSlots...)
	for _, c := range in.Interference.Corrections {
		c.Falsifiers = append([]string{}, c.Falsifiers...)
		r.Corrections = append(r.Corrections, c)
	}
	if in.Trajectory.Previous != nil {
		prev := *in.Trajectory.Previous
		r.Trajectory.Previous = &prev
	}
	r.Trajectory.KeyInfluences = append([]string{}, in.Trajectory.KeyInfluences...)

	r.Summary = a.summarize(r)
	return r
}

// #endregion assembler

// #region summary

func (a *Assembler) summarize(r Reading) Summary {
	s := Summary{
		Role:           r.Role,
		Authority:      r.Authority,
		CoherenceScore: r.Coherence.Score,
		Trend:          r.Trajectory.Trend,
		Pattern:        r.Pattern.Type,
		TopSlots:       make([]SummarySlot, 0, a.config.TopSlots),
		TopActions:     make([]SummaryAction, 0, a.config.TopActions),
		Falsifiers:     append([]string{}, r.Falsifiers...),
	}

	slots := r.Profile.Slots[:]
	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	// Stable on slot order, so equal weights keep the lower index first.
	sort.SliceStable(order, func(i, j int) bool {
		return slots[order[i]].WeightedFrequency > slots[order[j]].WeightedFrequency
	})
	for _, i := range order[:min(a.config.TopSlots, len(order))] {
		sl := slots[i]
		var label string
		if arch, ok := a.table.Archetype(sl.Archetype); ok {
			label = arch.Label(sl.Facet)
		}
		s.TopSlots = append(s.TopSlots, SummarySlot{
			Key:               sl.Key,
			Name:              sl.Name,
			Code:              sl.Code,
			Archetype:         sl.ArchetypeName,
			Label:             label,
			WeightedFrequency: sl.WeightedFrequency,
		})
	}

	for _, c := range r.Corrections[:min(a.config.TopActions, len(r.Corrections))] {
		s.TopActions = append(s.TopActions, SummaryAction{
			ActionType:      c.ActionType,
			TargetCode:      c.TargetCode,
			DurationSeconds: c.DurationSeconds,
			ExpectedOutcome: c.ExpectedOutcome,
		})
	}
	return s
}

// #endregion summary
