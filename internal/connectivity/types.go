package connectivity

import "github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"

// Center aliases the nine aggregation nodes shared with the archetype table.
type Center = facet.Center

// Motors are the centers that can power the throat.
var Motors = []Center{facet.CenterHeart, facet.CenterSolarPlexus, facet.CenterRoot, facet.CenterSacral}

// #region status

// Status is a center's definition state.
type Status string

const (
	StatusDefined Status = "defined"
	StatusOpen    Status = "open"
)

// #endregion status

// #region role

// Role is the overall classification derived from the defined-center pattern.
type Role string

const (
	RoleReflector            Role = "reflector"
	RoleManifestingGenerator Role = "manifesting_generator"
	RoleGenerator            Role = "generator"
	RoleManifestor           Role = "manifestor"
	RoleProjector            Role = "projector"
)

// Authority is the primary decision classification.
type Authority string

const (
	AuthorityEmotional     Authority = "emotional"
	AuthoritySacral        Authority = "sacral"
	AuthoritySplenic       Authority = "splenic"
	AuthorityEgo           Authority = "ego"
	AuthoritySelfProjected Authority = "self_projected"
	AuthorityMental        Authority = "mental"
	AuthorityLunar         Authority = "lunar"
	AuthorityNone          Authority = "none"
)

// #endregion role

// #region channel

// Channel is a fixed pairing of two archetypes on different centers.
type Channel struct {
	A       int    `json:"a"`
	B       int    `json:"b"`
	Name    string `json:"name"`
	CenterA Center `json:"center_a"`
	CenterB Center `json:"center_b"`
}

// Joins reports whether the channel touches center c.
func (ch Channel) Joins(c Center) bool {
	return ch.CenterA == c || ch.CenterB == c
}

// #endregion channel

// #region result

// Pattern is the input to the role and authority rule tables.
type Pattern struct {
	Defined       map[Center]bool
	MotorToThroat bool // some defined motor reaches the throat over completed channels
	GToThroat     bool
	HeartToThroat bool
	HeartToG      bool
}

// IsDefined reports whether c is defined.
func (p Pattern) IsDefined(c Center) bool {
	return p.Defined[c]
}

// DefinedCount returns the number of defined centers.
func (p Pattern) DefinedCount() int {
	n := 0
	for _, d := range p.Defined {
		if d {
			n++
		}
	}
	return n
}

// Result is the classifier output for one activated set.
type Result struct {
	Centers   map[Center]Status `json:"centers"`
	Completed []Channel         `json:"completed"`
	Role      Role              `json:"role"`
	Authority Authority         `json:"authority"`
}

// DefinedCenters returns the defined centers in top-to-bottom order.
func (r Result) DefinedCenters() []Center {
	var out []Center
	for _, c := range facet.Centers {
		if r.Centers[c] == StatusDefined {
			out = append(out, c)
		}
	}
	return out
}

// #endregion result
