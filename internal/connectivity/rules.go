package connectivity

import "github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"

// #region rules

// RoleRule maps a matching pattern to a role. Rules are tried in order.
type RoleRule struct {
	Role  Role
	Match func(Pattern) bool
}

// AuthorityRule maps a matching pattern to an authority. Rules are tried in order.
type AuthorityRule struct {
	Authority Authority
	Match     func(Pattern) bool
}

// DefaultRoleRules returns the standard role table. The last rule always
// matches, so every pattern gets exactly one role.
func DefaultRoleRules() []RoleRule {
	return []RoleRule{
		{RoleReflector, func(p Pattern) bool { return p.DefinedCount() == 0 }},
		{RoleManifestingGenerator, func(p Pattern) bool { return p.IsDefined(facet.CenterSacral) && p.MotorToThroat }},
		{RoleGenerator, func(p Pattern) bool { return p.IsDefined(facet.CenterSacral) }},
		{RoleManifestor, func(p Pattern) bool { return p.MotorToThroat }},
		{RoleProjector, func(Pattern) bool { return true }},
	}
}

// DefaultAuthorityRules returns the standard authority table. Patterns no rule
// matches fall back to AuthorityNone.
func DefaultAuthorityRules() []AuthorityRule {
	return []AuthorityRule{
		{AuthorityEmotional, func(p Pattern) bool { return p.IsDefined(facet.CenterSolarPlexus) }},
		{AuthoritySacral, func(p Pattern) bool { return p.IsDefined(facet.CenterSacral) }},
		{AuthoritySplenic, func(p Pattern) bool { return p.IsDefined(facet.CenterSpleen) }},
		{AuthorityEgo, func(p Pattern) bool {
			return p.IsDefined(facet.CenterHeart) && (p.HeartToThroat || p.HeartToG)
		}},
		{AuthoritySelfProjected, func(p Pattern) bool { return p.GToThroat }},
		{AuthorityMental, func(p Pattern) bool { return p.DefinedCount() > 0 && onlyDefined(p, mentalCenters) }},
		{AuthorityLunar, func(p Pattern) bool { return p.DefinedCount() == 0 }},
	}
}

var mentalCenters = []Center{facet.CenterHead, facet.CenterAjna, facet.CenterThroat}

func onlyDefined(p Pattern, allowed []Center) bool {
	for c, d := range p.Defined {
		if !d {
			continue
		}
		ok := false
		for _, a := range allowed {
			if c == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func matchRole(rules []RoleRule, p Pattern) Role {
	for _, r := range rules {
		if r.Match(p) {
			return r.Role
		}
	}
	return RoleProjector
}

func matchAuthority(rules []AuthorityRule, p Pattern) Authority {
	for _, r := range rules {
		if r.Match(p) {
			return r.Authority
		}
	}
	return AuthorityNone
}

// #endregion rules
