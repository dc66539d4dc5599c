package facet

import "fmt"

// #region constants

const (
	// ArchetypeCount is the number of equal arcs the circle is divided into.
	ArchetypeCount = 64
	// ArcWidth is the width in degrees of one archetype arc (5.625°).
	ArcWidth = 360.0 / ArchetypeCount
	// QuadrantWidth is the width in degrees of one facet quadrant.
	QuadrantWidth = 90.0
)

// #endregion constants

// #region facet

// Facet is one of four sub-facets A-D selected by longitude quadrant.
type Facet int

const (
	FacetA Facet = iota
	FacetB
	FacetC
	FacetD
)

// Facets lists all facets in tie-break order.
var Facets = [4]Facet{FacetA, FacetB, FacetC, FacetD}

var facetLetters = [4]string{"A", "B", "C", "D"}

// frequency labels per facet
var facetFrequencies = [4]string{"shadow", "gift", "crown", "siddhi"}

// String returns the facet letter.
func (f Facet) String() string {
	if f < FacetA || f > FacetD {
		return fmt.Sprintf("Facet(%d)", int(f))
	}
	return facetLetters[f]
}

// Frequency returns the frequency label (shadow, gift, crown, siddhi).
func (f Facet) Frequency() string {
	if f < FacetA || f > FacetD {
		return ""
	}
	return facetFrequencies[f]
}

// Valid reports whether f is one of A-D.
func (f Facet) Valid() bool {
	return f >= FacetA && f <= FacetD
}

// MarshalText encodes a facet as its letter.
func (f Facet) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid facet %d", int(f))
	}
	return []byte(facetLetters[f]), nil
}

// UnmarshalText decodes a facet letter.
func (f *Facet) UnmarshalText(b []byte) error {
	p, err := ParseFacet(string(b))
	if err != nil {
		return err
	}
	*f = p
	return nil
}

// ParseFacet parses an upper- or lower-case facet letter.
func ParseFacet(s string) (Facet, error) {
	switch s {
	case "A", "a":
		return FacetA, nil
	case "B", "b":
		return FacetB, nil
	case "C", "c":
		return FacetC, nil
	case "D", "d":
		return FacetD, nil
	}
	return 0, fmt.Errorf("unknown facet %q", s)
}

// #endregion facet

// #region center

// Center is one of the nine aggregation nodes an archetype belongs to.
type Center string

const (
	CenterHead        Center = "head"
	CenterAjna        Center = "ajna"
	CenterThroat      Center = "throat"
	CenterG           Center = "g"
	CenterHeart       Center = "heart"
	CenterSacral      Center = "sacral"
	CenterSolarPlexus Center = "solar_plexus"
	CenterSpleen      Center = "spleen"
	CenterRoot        Center = "root"
)

// Centers lists all nine centers top to bottom.
var Centers = [9]Center{
	CenterHead, CenterAjna, CenterThroat, CenterG, CenterHeart,
	CenterSacral, CenterSolarPlexus, CenterSpleen, CenterRoot,
}

// Valid reports whether c is one of the nine centers.
func (c Center) Valid() bool {
	for _, k := range Centers {
		if c == k {
			return true
		}
	}
	return false
}

// #endregion center

// #region archetype

// Archetype is one of the 64 fixed symbolic categories.
type Archetype struct {
	Index  int       `json:"index" yaml:"index"`
	Name   string    `json:"name" yaml:"name"`
	Center Center    `json:"center" yaml:"center"`
	Labels [4]string `json:"labels" yaml:"labels"` // shadow, gift, crown, siddhi
}

// Label returns the archetype's label for facet f.
func (a Archetype) Label(f Facet) string {
	if !f.Valid() {
		return ""
	}
	return a.Labels[f]
}

// #endregion archetype

// #region resolution

// Resolution is the output of resolving one longitude.
type Resolution struct {
	Longitude     float64       `json:"longitude"` // normalized into [0, 360)
	Archetype     int           `json:"archetype"`
	Facet         Facet         `json:"facet"`
	BaseFrequency float64       `json:"base_frequency"` // [0, 100)
	Code          CompositeCode `json:"code"`
	Center        Center        `json:"center"`
}

// #endregion resolution
