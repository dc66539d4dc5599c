package connectivity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	archetypes, err := facet.DefaultTable()
	require.NoError(t, err)
	c, err := DefaultClassifier(archetypes)
	require.NoError(t, err)
	return c
}

// #region table-tests

func TestDefaultTable(t *testing.T) {
	c := newTestClassifier(t)
	channels := c.Table().Channels()
	assert.Len(t, channels, 36)

	touched := map[Center]bool{}
	for _, ch := range channels {
		touched[ch.CenterA] = true
		touched[ch.CenterB] = true
		assert.NotEmpty(t, ch.Name)
	}
	assert.Len(t, touched, 9)

	channels[0].A = 99
	assert.Equal(t, 1, c.Table().Channels()[0].A, "Channels must return a copy")
}

func TestLoadTableRejects(t *testing.T) {
	archetypes, err := facet.DefaultTable()
	require.NoError(t, err)

	docs := map[string]string{
		"empty":        "channels: []",
		"range":        "channels: [{a: 0, b: 8, name: x, center_a: g, center_b: throat}]",
		"wrong center": "channels: [{a: 1, b: 8, name: x, center_a: head, center_b: throat}]",
		"same center":  "channels: [{a: 1, b: 2, name: x, center_a: g, center_b: g}]",
		"duplicate":    "channels: [{a: 1, b: 8, name: x, center_a: g, center_b: throat}, {a: 8, b: 1, name: y, center_a: throat, center_b: g}]",
		"unparseable":  "channels: [unterminated",
	}
	for name, doc := range docs {
		_, err := LoadTable([]byte(doc), archetypes)
		assert.Error(t, err, name)
	}
}

// #endregion table-tests

// #region classify-tests

func TestClassify(t *testing.T) {
	c := newTestClassifier(t)
	cases := []struct {
		name      string
		activated []int
		role      Role
		authority Authority
		defined   []Center
	}{
		{"nothing", []int{2, 3, 5, 7, 9, 11, 13, 17, 19}, RoleReflector, AuthorityLunar, nil},
		{"g to throat", []int{1, 8}, RoleProjector, AuthoritySelfProjected, []Center{facet.CenterThroat, facet.CenterG}},
		{"sacral to throat", []int{20, 34}, RoleManifestingGenerator, AuthoritySacral, []Center{facet.CenterThroat, facet.CenterSacral}},
		{"sacral only", []int{2, 14}, RoleGenerator, AuthoritySacral, []Center{facet.CenterG, facet.CenterSacral}},
		{"heart to throat", []int{21, 45}, RoleManifestor, AuthorityEgo, []Center{facet.CenterThroat, facet.CenterHeart}},
		{"heart to g", []int{25, 51}, RoleProjector, AuthorityEgo, []Center{facet.CenterG, facet.CenterHeart}},
		{"emotional generator", []int{6, 59}, RoleGenerator, AuthorityEmotional, []Center{facet.CenterSacral, facet.CenterSolarPlexus}},
		{"emotional manifestor", []int{12, 22}, RoleManifestor, AuthorityEmotional, []Center{facet.CenterThroat, facet.CenterSolarPlexus}},
		{"mental", []int{4, 63, 11, 56}, RoleProjector, AuthorityMental, []Center{facet.CenterHead, facet.CenterAjna, facet.CenterThroat}},
		{"splenic", []int{16, 48}, RoleProjector, AuthoritySplenic, []Center{facet.CenterThroat, facet.CenterSpleen}},
		// root reaches the throat only through the spleen.
		{"motor chain", []int{18, 58, 16, 48}, RoleManifestor, AuthoritySplenic,
			[]Center{facet.CenterThroat, facet.CenterSpleen, facet.CenterRoot}},
		{"duplicates", []int{1, 1, 8, 8, 8}, RoleProjector, AuthoritySelfProjected, []Center{facet.CenterThroat, facet.CenterG}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := c.Classify(tc.activated)
			require.NoError(t, err)
			assert.Equal(t, tc.role, res.Role)
			assert.Equal(t, tc.authority, res.Authority)
			assert.Equal(t, tc.defined, res.DefinedCenters())
			assert.Len(t, res.Centers, 9)
		})
	}
}

func TestClassifyCompletedChannels(t *testing.T) {
	c := newTestClassifier(t)
	res, err := c.Classify([]int{10, 20, 34, 57})
	require.NoError(t, err)

	var pairs []string
	for _, ch := range res.Completed {
		pairs = append(pairs, ch.Name)
	}
	// 10-20, 10-34, 10-57, 20-34, 20-57, 34-57 in table order.
	assert.Equal(t, []string{"Awakening", "Exploration", "Perfected Form", "Charisma", "The Brainwave", "Power"}, pairs)
	assert.Equal(t, RoleManifestingGenerator, res.Role)
	assert.Equal(t, AuthoritySacral, res.Authority)
}

func TestClassifyEverything(t *testing.T) {
	c := newTestClassifier(t)
	all := make([]int, facet.ArchetypeCount)
	for i := range all {
		all[i] = i + 1
	}
	res, err := c.Classify(all)
	require.NoError(t, err)
	assert.Len(t, res.Completed, 36)
	assert.Len(t, res.DefinedCenters(), 9)
	assert.Equal(t, RoleManifestingGenerator, res.Role)
	assert.Equal(t, AuthorityEmotional, res.Authority)
}

func TestClassifyRejectsOutOfRange(t *testing.T) {
	c := newTestClassifier(t)
	for _, idx := range []int{0, 65, -3} {
		_, err := c.Classify([]int{1, idx})
		assert.True(t, errors.Is(err, errs.ErrValidation), "index %d", idx)
	}
}

func TestClassifyTotal(t *testing.T) {
	c := newTestClassifier(t)
	channels := c.Table().Channels()
	roles := map[Role]bool{RoleReflector: true, RoleManifestingGenerator: true, RoleGenerator: true, RoleManifestor: true, RoleProjector: true}
	auths := map[Authority]bool{AuthorityEmotional: true, AuthoritySacral: true, AuthoritySplenic: true, AuthorityEgo: true,
		AuthoritySelfProjected: true, AuthorityMental: true, AuthorityLunar: true, AuthorityNone: true}

	// Every subset of the first 12 channels.
	for mask := 0; mask < 1<<12; mask++ {
		var activated []int
		for i := 0; i < 12; i++ {
			if mask&(1<<i) != 0 {
				activated = append(activated, channels[i].A, channels[i].B)
			}
		}
		res, err := c.Classify(activated)
		require.NoError(t, err)
		if !roles[res.Role] || !auths[res.Authority] {
			t.Fatalf("mask %b: role %q authority %q", mask, res.Role, res.Authority)
		}
		if mask == 0 && res.Role != RoleReflector {
			t.Fatalf("empty activation should be reflector, got %s", res.Role)
		}
	}
}

func TestCustomRulesFirstMatchWins(t *testing.T) {
	archetypes, err := facet.DefaultTable()
	require.NoError(t, err)
	table, err := DefaultTable(archetypes)
	require.NoError(t, err)

	roles := []RoleRule{
		{"always", func(Pattern) bool { return true }},
		{RoleGenerator, func(Pattern) bool { return true }},
	}
	c, err := NewClassifier(table, roles, nil)
	require.NoError(t, err)

	res, err := c.Classify([]int{2, 14})
	require.NoError(t, err)
	assert.Equal(t, Role("always"), res.Role)
	assert.Equal(t, AuthorityNone, res.Authority, "no authority rules falls back to none")

	_, err = NewClassifier(table, nil, nil)
	assert.Error(t, err)
}

// #endregion classify-tests

// #region graph-tests

func TestGraphWalk(t *testing.T) {
	g := newGraph([]Channel{
		{A: 18, B: 58, CenterA: facet.CenterSpleen, CenterB: facet.CenterRoot},
		{A: 16, B: 48, CenterA: facet.CenterThroat, CenterB: facet.CenterSpleen},
	})
	assert.Equal(t, []Center{facet.CenterRoot, facet.CenterSpleen, facet.CenterThroat}, g.walk(facet.CenterRoot))
	assert.True(t, g.connected(facet.CenterRoot, facet.CenterThroat))
	assert.False(t, g.connected(facet.CenterG, facet.CenterG))
	assert.False(t, g.connected(facet.CenterRoot, facet.CenterHead))
}

// #endregion graph-tests
