// Package profile resolves the nine weighted slots of a prime profile from an
// event and a design position set.
package profile

import (
	"math"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

// #region builder

// Builder resolves position sets into a PrimeProfile. It holds only immutable
// tables and is safe for concurrent use.
type Builder struct {
	slots    [SlotCount]SlotDef
	total    float64
	resolver *facet.Resolver
}

// NewBuilder validates slots and binds them to resolver.
func NewBuilder(resolver *facet.Resolver, slots [SlotCount]SlotDef) (*Builder, error) {
	if resolver == nil {
		return nil, errs.Validation("resolver", "must not be nil")
	}
	seen := make(map[string]bool, SlotCount)
	total := 0.0
	for i, s := range slots {
		switch {
		case s.Index != i+1:
			return nil, errs.Validation("slots", "slot at position %d has index %d", i+1, s.Index)
		case s.Key == "" || seen[s.Key]:
			return nil, errs.Validation("slots", "slot %d has empty or duplicate key %q", s.Index, s.Key)
		case !(s.Weight > 0) || math.IsInf(s.Weight, 0):
			return nil, errs.Validation("slots", "slot %d weight must be positive, got %v", s.Index, s.Weight)
		case s.Source != ephemeris.KindEvent && s.Source != ephemeris.KindDesign:
			return nil, errs.Validation("slots", "slot %d has unknown source %q", s.Index, s.Source)
		case s.Body == "":
			return nil, errs.Validation("slots", "slot %d has no body", s.Index)
		}
		seen[s.Key] = true
		total += s.Weight
	}
	return &Builder{slots: slots, total: total, resolver: resolver}, nil
}

// Slots returns a copy of the slot table.
func (b *Builder) Slots() [SlotCount]SlotDef {
	return b.slots
}

// TotalWeight is the fixed sum of slot weights.
func (b *Builder) TotalWeight() float64 {
	return b.total
}

// #endregion builder

// #region build

// Build resolves every slot. Both sets must contain every RequiredBodies
// entry and every body the slot table names; nothing is defaulted.
func (b *Builder) Build(event, design ephemeris.PositionSet) (PrimeProfile, error) {
	charts := map[ephemeris.Kind]ephemeris.PositionSet{
		ephemeris.KindEvent:  event,
		ephemeris.KindDesign: design,
	}
	for _, kind := range []ephemeris.Kind{ephemeris.KindEvent, ephemeris.KindDesign} {
		set := charts[kind]
		if set.Kind != "" && set.Kind != kind {
			return PrimeProfile{}, errs.Validation(string(kind), "position set is tagged %q", set.Kind)
		}
		for _, body := range RequiredBodies {
			if _, ok := set.Get(body); !ok {
				return PrimeProfile{}, errs.MissingInput(string(kind), string(body))
			}
		}
	}

	p := PrimeProfile{TotalWeight: b.total, Dominant: 1}
	for i, def := range b.slots {
		pos, ok := charts[def.Source].Get(def.Body)
		if !ok {
			return PrimeProfile{}, errs.MissingInput(string(def.Source), string(def.Body))
		}
		slot, err := b.resolve(def, pos.Longitude)
		if err != nil {
			return PrimeProfile{}, err
		}
		p.Slots[i] = slot
		if slot.WeightedFrequency > p.Slots[p.Dominant-1].WeightedFrequency {
			p.Dominant = def.Index
		}
	}
	return p, nil
}

func (b *Builder) resolve(def SlotDef, lon float64) (Slot, error) {
	if def.Opposite {
		lon += 180
	}
	res, err := b.resolver.Resolve(lon)
	if err != nil {
		return Slot{}, err
	}
	name := ""
	if a, ok := b.resolver.Table().Archetype(res.Archetype); ok {
		name = a.Name
	}
	return Slot{
		SlotDef:           def,
		Longitude:         res.Longitude,
		Archetype:         res.Archetype,
		ArchetypeName:     name,
		Facet:             res.Facet,
		Code:              res.Code,
		Center:            res.Center,
		BaseFrequency:     res.BaseFrequency,
		WeightedFrequency: math.Min(MaxWeightedFrequency, res.BaseFrequency*def.Weight),
	}, nil
}

// #endregion build
