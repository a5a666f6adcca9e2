// Package grammar holds a declarative description of this language's
// productions, used to compute FIRST/FOLLOW sets. The concrete parser
// (internal/parse) is a hand-written recursive descent, not table-driven,
// but it consults this package's FOLLOW sets to build its statement- and
// declaration-level panic-mode synchronization sets (spec.md §4.2), so a
// single source of truth describes both "what can start a construct" and
// "what the parser resyncs on when a construct is malformed."
//
// Epsilon is denoted by the empty string, matching the notation item.go's
// LR0Item/LR1Item parser uses ("A -> . ", i.e. nothing before or after the
// dot) so that productions here can be round-tripped through
// ParseLR0Item for documentation and tests.
package grammar

import "github.com/dekarrin/solfront/internal/util"

// Epsilon is the empty-string symbol used in productions that derive
// nothing.
var Epsilon = []string{""}

// Rule is one production: NonTerminal -> Production (a sequence of
// terminal and non-terminal symbols; Production may be Epsilon).
type Rule struct {
	NonTerminal string
	Production  []string
}

// Grammar is an ordered list of rules plus the set of terminal symbols
// (every symbol that never appears as a NonTerminal is implicitly a
// terminal, but Terminals is kept explicit so empty/unreferenced terminals
// such as "$" still participate in FOLLOW computation).
type Grammar struct {
	Start     string
	Rules     []Rule
	Terminals util.StringSet
}

// New builds a Grammar from a start symbol and a flat list of rules.
func New(start string, rules []Rule, terminals []string) Grammar {
	return Grammar{Start: start, Rules: rules, Terminals: util.StringSetOf(terminals)}
}

// NonTerminals returns the set of every distinct NonTerminal in the
// grammar, in first-seen order.
func (g Grammar) NonTerminals() []string {
	seen := util.NewStringSet()
	var order []string
	for _, r := range g.Rules {
		if !seen.Has(r.NonTerminal) {
			seen.Add(r.NonTerminal)
			order = append(order, r.NonTerminal)
		}
	}
	return order
}

func (g Grammar) rulesFor(nonTerminal string) []Rule {
	var out []Rule
	for _, r := range g.Rules {
		if r.NonTerminal == nonTerminal {
			out = append(out, r)
		}
	}
	return out
}

func isEpsilon(prod []string) bool {
	return len(prod) == 0 || (len(prod) == 1 && prod[0] == "")
}

func (g Grammar) isNonTerminal(sym string) bool {
	for _, r := range g.Rules {
		if r.NonTerminal == sym {
			return true
		}
	}
	return false
}

// FIRST computes the FIRST set of a single grammar symbol: the set of
// terminals (and possibly "", meaning the symbol can derive epsilon) that
// can appear as the first symbol of some string derived from it.
func (g Grammar) FIRST(symbol string) util.StringSet {
	return g.first(symbol, util.NewStringSet())
}

func (g Grammar) first(symbol string, visiting util.StringSet) util.StringSet {
	result := util.NewStringSet()
	if symbol == "" {
		result.Add("")
		return result
	}
	if !g.isNonTerminal(symbol) {
		result.Add(symbol)
		return result
	}
	if visiting.Has(symbol) {
		// left-recursive cycle; contributes nothing new at this level
		return result
	}
	visiting.Add(symbol)

	for _, r := range g.rulesFor(symbol) {
		if isEpsilon(r.Production) {
			result.Add("")
			continue
		}
		allNullable := true
		for _, sym := range r.Production {
			symFirst := g.first(sym, visiting)
			for _, t := range symFirst.Elements() {
				if t != "" {
					result.Add(t)
				}
			}
			if !symFirst.Has("") {
				allNullable = false
				break
			}
		}
		if allNullable {
			result.Add("")
		}
	}
	return result
}

// FIRSTOfSequence computes FIRST for a sequence of symbols (used for
// lookahead past an already-matched prefix).
func (g Grammar) FIRSTOfSequence(symbols []string) util.StringSet {
	result := util.NewStringSet()
	allNullable := true
	for _, sym := range symbols {
		symFirst := g.FIRST(sym)
		for _, t := range symFirst.Elements() {
			if t != "" {
				result.Add(t)
			}
		}
		if !symFirst.Has("") {
			allNullable = false
			break
		}
	}
	if allNullable {
		result.Add("")
	}
	return result
}

// FOLLOW computes the FOLLOW set of a non-terminal: the set of terminals
// that can appear immediately after it in some derivation from Start. "$"
// (end of input) is included in FOLLOW(Start).
func (g Grammar) FOLLOW(nonTerminal string) util.StringSet {
	follows := make(map[string]util.StringSet)
	for _, nt := range g.NonTerminals() {
		follows[nt] = util.NewStringSet()
	}
	follows[g.Start].Add("$")

	// iterate to a fixpoint; the grammars this compiler describes are small
	// enough that this is always fast.
	changed := true
	for changed {
		changed = false
		for _, r := range g.Rules {
			for i, sym := range r.Production {
				if !g.isNonTerminal(sym) {
					continue
				}
				rest := r.Production[i+1:]
				restFirst := g.FIRSTOfSequence(rest)
				before := follows[sym].Len()
				for _, t := range restFirst.Elements() {
					if t != "" {
						follows[sym].Add(t)
					}
				}
				if restFirst.Has("") || len(rest) == 0 {
					for _, t := range follows[r.NonTerminal].Elements() {
						follows[sym].Add(t)
					}
				}
				if follows[sym].Len() != before {
					changed = true
				}
			}
		}
	}

	if f, ok := follows[nonTerminal]; ok {
		return f
	}
	return util.NewStringSet()
}

// SyncSet returns the synchronization token set a panic-mode parser should
// discard tokens until it sees, when recovering from a malformed
// nonTerminal: FOLLOW(nonTerminal) plus any caller-supplied always-safe
// anchors (typically statement-terminating punctuation like ";" and "}").
func (g Grammar) SyncSet(nonTerminal string, anchors ...string) util.StringSet {
	set := g.FOLLOW(nonTerminal)
	for _, a := range anchors {
		set.Add(a)
	}
	return set
}
