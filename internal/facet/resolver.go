// Package facet maps ecliptic longitudes onto the 64 archetypes and their
// four quadrant facets. Everything here is a pure function of its input.
package facet

import (
	"math"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
)

// #region resolver

// Resolver resolves longitudes against an injected archetype table.
type Resolver struct {
	table *Table
}

// NewResolver creates a resolver over table.
func NewResolver(table *Table) *Resolver {
	return &Resolver{table: table}
}

// Table returns the resolver's archetype table.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve maps a longitude (any finite real) to its archetype, facet,
// base frequency and composite code.
func (r *Resolver) Resolve(longitude float64) (Resolution, error) {
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return Resolution{}, errs.Validation("longitude", "must be finite, got %v", longitude)
	}
	n := Normalize(longitude)
	idx := ArchetypeIndex(n)
	f := FacetOf(n)
	return Resolution{
		Longitude:     n,
		Archetype:     idx,
		Facet:         f,
		BaseFrequency: BaseFrequency(n),
		Code:          CompositeCode{Archetype: idx, Facet: f},
		Center:        r.table.CenterOf(idx),
	}, nil
}

// #endregion resolver

// #region pure-functions

// Normalize wraps a longitude into [0, 360).
func Normalize(longitude float64) float64 {
	n := math.Mod(math.Mod(longitude, 360)+360, 360)
	if n >= 360 {
		return 0
	}
	return n
}

// FacetOf returns the quadrant facet of a longitude.
func FacetOf(longitude float64) Facet {
	q := int(Normalize(longitude) / QuadrantWidth)
	if q > int(FacetD) {
		q = int(FacetD)
	}
	return Facet(q)
}

// ArchetypeIndex returns the 1-based arc index of a longitude.
func ArchetypeIndex(longitude float64) int {
	idx := int(Normalize(longitude)/ArcWidth) + 1
	if idx > ArchetypeCount {
		idx = ArchetypeCount
	}
	return idx
}

// BaseFrequency returns the fractional position of a longitude within its
// arc, rescaled to [0, 100).
func BaseFrequency(longitude float64) float64 {
	n := Normalize(longitude)
	start := float64(ArchetypeIndex(n)-1) * ArcWidth
	bf := (n - start) / ArcWidth * 100
	if bf < 0 {
		return 0
	}
	if bf > 100 {
		return 100
	}
	return bf
}

// #endregion pure-functions
