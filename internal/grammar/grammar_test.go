package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// a tiny expression grammar, just large enough to exercise nullable
// productions, left recursion, and FOLLOW sets that reach past a
// non-terminal that can derive epsilon.
func exprGrammar() Grammar {
	return New("E",
		[]Rule{
			{"E", []string{"T", "E'"}},
			{"E'", []string{"+", "T", "E'"}},
			{"E'", Epsilon},
			{"T", []string{"F", "T'"}},
			{"T'", []string{"*", "F", "T'"}},
			{"T'", Epsilon},
			{"F", []string{"(", "E", ")"}},
			{"F", []string{"id"}},
		},
		[]string{"+", "*", "(", ")", "id"},
	)
}

func Test_Grammar_FIRST(t *testing.T) {
	testCases := []struct {
		name   string
		symbol string
		expect []string
	}{
		{"terminal is its own FIRST", "+", []string{"+"}},
		{"F", "F", []string{"(", "id"}},
		{"T", "T", []string{"(", "id"}},
		{"E", "E", []string{"(", "id"}},
		{"T' is nullable", "T'", []string{"", "*"}},
		{"E' is nullable", "E'", []string{"", "+"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := exprGrammar()
			got := g.FIRST(tc.symbol)
			assert.ElementsMatch(tc.expect, got.Elements())
		})
	}
}

func Test_Grammar_FOLLOW(t *testing.T) {
	testCases := []struct {
		name   string
		symbol string
		expect []string
	}{
		{"start symbol follow includes end marker", "E", []string{"$", ")"}},
		{"E' follows E and itself", "E'", []string{"$", ")"}},
		{"T follows into + and E'-follow", "T", []string{"+", "$", ")"}},
		{"T' follows T and itself", "T'", []string{"+", "$", ")"}},
		{"F follows into * and T'-follow", "F", []string{"*", "+", "$", ")"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := exprGrammar()
			got := g.FOLLOW(tc.symbol)
			assert.ElementsMatch(tc.expect, got.Elements())
		})
	}
}

func Test_Grammar_SyncSet_addsAnchors(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	got := g.SyncSet("E", ";", "}")

	assert.True(got.Has(";"))
	assert.True(got.Has("}"))
	assert.True(got.Has("$"))
	assert.True(got.Has(")"))
}

func Test_Grammar_NonTerminals_firstSeenOrder(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	got := g.NonTerminals()

	assert.Equal([]string{"E", "E'", "T", "T'", "F"}, got)
}
