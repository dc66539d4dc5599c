package facet

import (
	"fmt"
	"strconv"
)

// #region composite-code

// CompositeCode pairs an archetype index with a facet. Its token form is the
// two-digit archetype followed by the facet letter, e.g. "07C".
type CompositeCode struct {
	Archetype int
	Facet     Facet
}

// NewCode validates and builds a composite code.
func NewCode(archetype int, f Facet) (CompositeCode, error) {
	if archetype < 1 || archetype > ArchetypeCount {
		return CompositeCode{}, fmt.Errorf("archetype %d out of range [1, %d]", archetype, ArchetypeCount)
	}
	if !f.Valid() {
		return CompositeCode{}, fmt.Errorf("invalid facet %d", int(f))
	}
	return CompositeCode{Archetype: archetype, Facet: f}, nil
}

// String renders the token form.
func (c CompositeCode) String() string {
	return fmt.Sprintf("%02d%s", c.Archetype, c.Facet)
}

// ParseCode parses a token produced by String.
func ParseCode(s string) (CompositeCode, error) {
	if len(s) != 3 {
		return CompositeCode{}, fmt.Errorf("composite code %q: want 3 characters", s)
	}
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return CompositeCode{}, fmt.Errorf("composite code %q: archetype must be two digits", s)
	}
	n, err := strconv.Atoi(s[:2])
	if err != nil {
		return CompositeCode{}, fmt.Errorf("composite code %q: archetype: %w", s, err)
	}
	f, err := ParseFacet(s[2:])
	if err != nil {
		return CompositeCode{}, fmt.Errorf("composite code %q: %w", s, err)
	}
	return NewCode(n, f)
}

// MarshalText encodes the token form.
func (c CompositeCode) MarshalText() ([]byte, error) {
	if _, err := NewCode(c.Archetype, c.Facet); err != nil {
		return nil, err
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes the token form.
func (c *CompositeCode) UnmarshalText(b []byte) error {
	p, err := ParseCode(string(b))
	if err != nil {
		return err
	}
	*c = p
	return nil
}

// #endregion composite-code
