package profile

import (
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

// SlotCount is the fixed number of profile slots.
const SlotCount = 9

// MaxWeightedFrequency caps base frequency times weight.
const MaxWeightedFrequency = 180.0

// RequiredBodies must be present in both position sets.
var RequiredBodies = []ephemeris.Body{ephemeris.Sun, ephemeris.Moon, ephemeris.NorthNode, ephemeris.Chiron}

// #region slot-def

// SlotDef is one fixed row of the slot table.
type SlotDef struct {
	Index    int            `json:"index"` // 1..9, position in the table
	Key      string         `json:"key"`
	Name     string         `json:"name"`
	Weight   float64        `json:"weight"`
	Source   ephemeris.Kind `json:"source"`
	Body     ephemeris.Body `json:"body"`
	Opposite bool           `json:"opposite"` // body longitude + 180°
}

// DefaultSlots returns the standard slot table. Weights sum to 11.0.
func DefaultSlots() [SlotCount]SlotDef {
	return [SlotCount]SlotDef{
		{Index: 1, Key: "core", Name: "Core Signature", Weight: 1.8, Source: ephemeris.KindEvent, Body: ephemeris.Sun},
		{Index: 2, Key: "counterpoint", Name: "Counterpoint", Weight: 1.5, Source: ephemeris.KindEvent, Body: ephemeris.Sun, Opposite: true},
		{Index: 3, Key: "undercurrent", Name: "Undercurrent", Weight: 1.5, Source: ephemeris.KindDesign, Body: ephemeris.Sun},
		{Index: 4, Key: "ground", Name: "Ground", Weight: 1.2, Source: ephemeris.KindDesign, Body: ephemeris.Sun, Opposite: true},
		{Index: 5, Key: "tide", Name: "Emotional Tide", Weight: 1.2, Source: ephemeris.KindEvent, Body: ephemeris.Moon},
		{Index: 6, Key: "undertow", Name: "Undertow", Weight: 1.0, Source: ephemeris.KindDesign, Body: ephemeris.Moon},
		{Index: 7, Key: "trajectory", Name: "Trajectory", Weight: 1.0, Source: ephemeris.KindEvent, Body: ephemeris.NorthNode},
		{Index: 8, Key: "root_vector", Name: "Root Vector", Weight: 0.9, Source: ephemeris.KindDesign, Body: ephemeris.NorthNode},
		{Index: 9, Key: "wound", Name: "Wound Point", Weight: 0.9, Source: ephemeris.KindEvent, Body: ephemeris.Chiron},
	}
}

// #endregion slot-def

// #region slot

// Slot is a SlotDef resolved against a pair of position sets.
type Slot struct {
	SlotDef
	Longitude         float64             `json:"longitude"`
	Archetype         int                 `json:"archetype"`
	ArchetypeName     string              `json:"archetype_name"`
	Facet             facet.Facet         `json:"facet"`
	Code              facet.CompositeCode `json:"code"`
	Center            facet.Center        `json:"center"`
	BaseFrequency     float64             `json:"base_frequency"`
	WeightedFrequency float64             `json:"weighted_frequency"`
}

// #endregion slot

// #region prime-profile

// PrimeProfile is the ordered set of nine resolved slots.
type PrimeProfile struct {
	Slots       [SlotCount]Slot `json:"slots"`
	TotalWeight float64         `json:"total_weight"`
	Dominant    int             `json:"dominant"` // slot index, 1..9
}

// DominantSlot returns the slot with the highest weighted frequency.
func (p PrimeProfile) DominantSlot() Slot {
	return p.Slots[p.Dominant-1]
}

// Activated returns the archetype index of every slot, in slot order.
// Duplicates are kept.
func (p PrimeProfile) Activated() []int {
	out := make([]int, 0, SlotCount)
	for _, s := range p.Slots {
		out = append(out, s.Archetype)
	}
	return out
}

// ByKey returns the slot with the given key.
func (p PrimeProfile) ByKey(key string) (Slot, bool) {
	for _, s := range p.Slots {
		if s.Key == key {
			return s, true
		}
	}
	return Slot{}, false
}

// #endregion prime-profile
