// Package connectivity aggregates activated archetypes into the nine-center
// graph and classifies the resulting pattern.
package connectivity

import (
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

// #region classifier

// Classifier owns the channel table and rule tables. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	table       *Table
	roles       []RoleRule
	authorities []AuthorityRule
}

// NewClassifier binds a channel table to role and authority rules.
func NewClassifier(table *Table, roles []RoleRule, authorities []AuthorityRule) (*Classifier, error) {
	if table == nil || table.Len() == 0 {
		return nil, errs.Validation("channels", "table must not be empty")
	}
	if len(roles) == 0 {
		return nil, errs.Validation("roles", "rule table must not be empty")
	}
	return &Classifier{
		table:       table,
		roles:       append([]RoleRule(nil), roles...),
		authorities: append([]AuthorityRule(nil), authorities...),
	}, nil
}

// DefaultClassifier builds a classifier from the embedded channel table and
// the standard rules.
func DefaultClassifier(archetypes *facet.Table) (*Classifier, error) {
	table, err := DefaultTable(archetypes)
	if err != nil {
		return nil, err
	}
	return NewClassifier(table, DefaultRoleRules(), DefaultAuthorityRules())
}

// Table returns the classifier's channel table.
func (c *Classifier) Table() *Table {
	return c.table
}

// #endregion classifier

// #region classify

// Classify derives center status, completed channels, role and authority from
// the activated archetype indices. Duplicates are allowed.
func (c *Classifier) Classify(activated []int) (Result, error) {
	gates := make(map[int]bool, len(activated))
	for _, idx := range activated {
		if idx < 1 || idx > facet.ArchetypeCount {
			return Result{}, errs.Validation("activated", "archetype %d out of range", idx)
		}
		gates[idx] = true
	}

	res := Result{Centers: make(map[Center]Status, len(facet.Centers))}
	for _, ctr := range facet.Centers {
		res.Centers[ctr] = StatusOpen
	}
	for _, ch := range c.table.channels {
		if gates[ch.A] && gates[ch.B] {
			res.Completed = append(res.Completed, ch)
			res.Centers[ch.CenterA] = StatusDefined
			res.Centers[ch.CenterB] = StatusDefined
		}
	}

	p := c.pattern(res)
	res.Role = matchRole(c.roles, p)
	res.Authority = matchAuthority(c.authorities, p)
	return res, nil
}

// pattern derives the rule-table input from completed channels.
func (c *Classifier) pattern(res Result) Pattern {
	g := newGraph(res.Completed)
	p := Pattern{Defined: make(map[Center]bool, len(facet.Centers))}
	for ctr, st := range res.Centers {
		p.Defined[ctr] = st == StatusDefined
	}
	for _, m := range Motors {
		if g.connected(m, facet.CenterThroat) {
			p.MotorToThroat = true
			break
		}
	}
	p.GToThroat = g.connected(facet.CenterG, facet.CenterThroat)
	p.HeartToThroat = g.connected(facet.CenterHeart, facet.CenterThroat)
	p.HeartToG = g.connected(facet.CenterHeart, facet.CenterG)
	return p
}

// #endregion classify
