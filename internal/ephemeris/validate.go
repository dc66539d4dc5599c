package ephemeris

import (
	"math"
	"time"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

const maxTZOffset = 14 * time.Hour

// #region validate-query

// ValidateQuery checks the query fields before any source is called.
func ValidateQuery(q Query) error {
	if q.Instant.IsZero() {
		return errs.Validation("instant", "must be set")
	}
	if math.IsNaN(q.Latitude) || q.Latitude < -90 || q.Latitude > 90 {
		return errs.Validation("latitude", "must be in [-90, 90], got %v", q.Latitude)
	}
	if math.IsNaN(q.Longitude) || q.Longitude < -180 || q.Longitude > 180 {
		return errs.Validation("longitude", "must be in [-180, 180], got %v", q.Longitude)
	}
	if q.TZOffset < -maxTZOffset || q.TZOffset > maxTZOffset {
		return errs.Validation("tz_offset", "must be within ±14h, got %s", q.TZOffset)
	}
	if y := q.UTC().Year(); y < 1000 || y > 3000 {
		return errs.Validation("instant", "year %d outside supported range [1000, 3000]", y)
	}
	for _, b := range q.Bodies {
		if !computable(b) {
			return errs.Validation("bodies", "unknown body %q", b)
		}
	}
	return nil
}

func computable(b Body) bool {
	for _, c := range ComputedBodies {
		if b == c {
			return true
		}
	}
	return false
}

// #endregion validate-query

// #region normalize-set

// NormalizeSet validates a set returned by a source: every value must be finite;
// longitudes are wrapped into [0, 360); Earth and SouthNode are derived from
// Sun and NorthNode when absent. The input is not modified.
func NormalizeSet(set PositionSet) (PositionSet, error) {
	out := set.Clone()
	out.Instant = set.Instant.UTC()
	for b, p := range out.Positions {
		if p.Body == "" {
			p.Body = b
		}
		if p.Body != b {
			return PositionSet{}, errs.UpstreamValue(string(b), "position keyed %s carries body %s", b, p.Body)
		}
		if !finite(p.Longitude) {
			return PositionSet{}, errs.UpstreamValue(string(b), "non-finite longitude %v", p.Longitude)
		}
		for name, v := range map[string]*float64{"latitude": p.Latitude, "distance": p.Distance, "speed": p.Speed} {
			if v != nil && !finite(*v) {
				return PositionSet{}, errs.UpstreamValue(string(b), "non-finite %s %v", name, *v)
			}
		}
		p.Longitude = facet.Normalize(p.Longitude)
		out.Positions[b] = p
	}

	deriveOpposite(out.Positions, Sun, Earth)
	deriveOpposite(out.Positions, NorthNode, SouthNode)
	return out, nil
}

func deriveOpposite(m map[Body]BodyPosition, from, to Body) {
	src, ok := m[from]
	if !ok {
		return
	}
	if _, exists := m[to]; exists {
		return
	}
	p := BodyPosition{Body: to, Longitude: facet.Normalize(src.Longitude + 180)}
	if src.Latitude != nil {
		lat := -*src.Latitude
		p.Latitude = &lat
	}
	p.Distance = cloneFloat(src.Distance)
	p.Speed = cloneFloat(src.Speed)
	m[to] = p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion normalize-set
