package ephemeris

import (
	"context"
	"time"
)

// #region body

// Body names a tracked celestial body.
type Body string

const (
	Sun       Body = "Sun"
	Earth     Body = "Earth" // derived: Sun + 180°
	Moon      Body = "Moon"
	Mercury   Body = "Mercury"
	Venus     Body = "Venus"
	Mars      Body = "Mars"
	Jupiter   Body = "Jupiter"
	Saturn    Body = "Saturn"
	Uranus    Body = "Uranus"
	Neptune   Body = "Neptune"
	Pluto     Body = "Pluto"
	NorthNode Body = "NorthNode"
	SouthNode Body = "SouthNode" // derived: NorthNode + 180°
	Chiron    Body = "Chiron"
)

// ComputedBodies are the bodies a source is asked for when a query names none.
var ComputedBodies = []Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn,
	Uranus, Neptune, Pluto, NorthNode, Chiron,
}

// #endregion body

// #region kind

// Kind tags which instant a position set was captured at.
type Kind string

const (
	KindEvent  Kind = "event"
	KindDesign Kind = "design"
)

// #endregion kind

// #region position

// BodyPosition is one body's position. Optional fields are nil when the source
// did not supply them.
type BodyPosition struct {
	Body      Body     `json:"body"`
	Longitude float64  `json:"longitude"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Distance  *float64 `json:"distance,omitempty"` // AU
	Speed     *float64 `json:"speed,omitempty"`    // degrees per day
}

// PositionSet is the collection of body positions at one instant.
type PositionSet struct {
	Kind      Kind                  `json:"kind"`
	Instant   time.Time             `json:"instant"` // UTC
	Positions map[Body]BodyPosition `json:"positions"`
}

// Get returns the position of b, if present.
func (s PositionSet) Get(b Body) (BodyPosition, bool) {
	p, ok := s.Positions[b]
	return p, ok
}

// Clone returns a deep copy of s.
func (s PositionSet) Clone() PositionSet {
	out := PositionSet{Kind: s.Kind, Instant: s.Instant, Positions: make(map[Body]BodyPosition, len(s.Positions))}
	for k, v := range s.Positions {
		v.Latitude = cloneFloat(v.Latitude)
		v.Distance = cloneFloat(v.Distance)
		v.Speed = cloneFloat(v.Speed)
		out.Positions[k] = v
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// #endregion position

// #region query

// Query asks a source for positions. Instant's wall clock is read in the zone
// given by TZOffset; Latitude/Longitude locate the observer in degrees.
type Query struct {
	Instant   time.Time
	Latitude  float64
	Longitude float64
	TZOffset  time.Duration
	Kind      Kind
	Bodies    []Body // empty means ComputedBodies
}

// UTC resolves the query's wall-clock instant and offset to UTC.
func (q Query) UTC() time.Time {
	y, mo, d := q.Instant.Date()
	h, mi, s := q.Instant.Clock()
	zone := time.FixedZone("", int(q.TZOffset/time.Second))
	return time.Date(y, mo, d, h, mi, s, q.Instant.Nanosecond(), zone).UTC()
}

// AtUTC returns a copy of q pinned to the given UTC instant.
func (q Query) AtUTC(t time.Time) Query {
	q.Instant = t.UTC()
	q.TZOffset = 0
	return q
}

// #endregion query

// #region source

// Source supplies body positions. Implementations own their resources and
// release them in Close; a closed source fails every call.
type Source interface {
	Positions(ctx context.Context, q Query) (PositionSet, error)
	Close() error
}

// #endregion source
