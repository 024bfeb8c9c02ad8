// Package mood maps free-text context labels onto structured include and
// exclude rules used by the curator validators and prompt composer.
package mood

import "strings"

// Rule is one structured mood constraint. A candidate satisfies a rule when
// none of its genres match ExcludeGenres, none of ExcludeKeywords appear in
// its overview or reason text, and either IncludeGenres is empty or at least
// one include genre matches.
type Rule struct {
	Key             string
	IncludeGenres   []string
	ExcludeGenres   []string
	ExcludeKeywords []string
	Tone            string
}

// ruleOrder fixes the order rules are returned in; input label order never
// affects output order.
var ruleOrder = []string{"fun", "cozy", "comfort", "light", "chill", "uplifting"}

var ruleTable = map[string]Rule{
	"fun": {
		Key:             "fun",
		IncludeGenres:   []string{"Comedy", "Action", "Adventure"},
		ExcludeGenres:   []string{"Documentary", "War"},
		ExcludeKeywords: []string{"grief", "terminal illness", "holocaust"},
		Tone:            "high-energy and entertaining, nothing heavy",
	},
	"cozy": {
		Key:             "cozy",
		IncludeGenres:   []string{"Comedy", "Romance", "Family"},
		ExcludeGenres:   []string{"Horror", "Thriller", "War"},
		ExcludeKeywords: []string{"murder", "dystopia", "apocalypse"},
		Tone:            "warm and low-stakes, good for a blanket and tea",
	},
	"comfort": {
		Key:             "comfort",
		IncludeGenres:   []string{"Comedy", "Family", "Animation"},
		ExcludeGenres:   []string{"Horror", "War"},
		ExcludeKeywords: []string{"tragedy", "abuse"},
		Tone:            "familiar and reassuring, a known-quantity feeling",
	},
	"light": {
		Key:             "light",
		IncludeGenres:   nil,
		ExcludeGenres:   []string{"Horror", "War", "Documentary"},
		ExcludeKeywords: []string{"bleak", "harrowing", "devastating"},
		Tone:            "easy to watch, nothing demanding",
	},
	"chill": {
		Key:             "chill",
		IncludeGenres:   nil,
		ExcludeGenres:   []string{"Horror", "Thriller"},
		ExcludeKeywords: []string{"intense", "relentless"},
		Tone:            "relaxed pacing, background-friendly",
	},
	"uplifting": {
		Key:             "uplifting",
		IncludeGenres:   []string{"Drama", "Comedy", "Family"},
		ExcludeGenres:   []string{"Horror"},
		ExcludeKeywords: []string{"downer ending", "nihilism", "tragedy"},
		Tone:            "ends on hope, leaves the viewer better off",
	},
}

// RulesFor maps free-text labels to mood rules. Matching is case-insensitive
// substring containment against the fixed key set; each key contributes at
// most one rule, in fixed key order regardless of input order. Unmatched
// labels contribute nothing.
func RulesFor(labels []string) []Rule {
	matched := map[string]bool{}
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		for _, key := range ruleOrder {
			if strings.Contains(label, key) {
				matched[key] = true
			}
		}
	}
	if len(matched) == 0 {
		return nil
	}
	rules := make([]Rule, 0, len(matched))
	for _, key := range ruleOrder {
		if matched[key] {
			rules = append(rules, ruleTable[key])
		}
	}
	return rules
}

// Keys returns the fixed mood key enumeration, primarily for documentation
// surfaces (CLI help, API discovery).
func Keys() []string {
	keys := make([]string, len(ruleOrder))
	copy(keys, ruleOrder)
	return keys
}
