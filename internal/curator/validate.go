package curator

import (
	"strings"
	"time"

	"marquee/internal/mood"
	"marquee/internal/persona"
	"marquee/internal/textutil"
)

// Thresholds are the tunable constants behind the mainstream and momentum
// validators. Zero values are replaced with the shipped defaults.
type Thresholds struct {
	// Rating is the minimum provider rating for a mainstream pass.
	Rating float64
	// Popularity is the minimum provider popularity for a mainstream pass.
	Popularity float64
	// Momentum is the minimum number of passing candidates for a lineup to
	// count as having mainstream momentum.
	Momentum int
}

const (
	defaultRatingThreshold = 6.3
	defaultPopularityMin   = 25
	defaultMomentumMin     = 4
	moodPassTarget         = 5
)

func (t Thresholds) normalized() Thresholds {
	if t.Rating <= 0 {
		t.Rating = defaultRatingThreshold
	}
	if t.Popularity <= 0 {
		t.Popularity = defaultPopularityMin
	}
	if t.Momentum <= 0 {
		t.Momentum = defaultMomentumMin
	}
	return t
}

// yearWindow resolves a persona's allowed release window. An open-ended
// window closes at the current year; a session-level minimum override
// tightens but never widens the window.
func yearWindow(p persona.Persona, minOverride int) (int, int) {
	minYear := p.MinYear
	if minOverride > minYear {
		minYear = minOverride
	}
	maxYear := p.MaxYear
	if maxYear == 0 {
		maxYear = time.Now().Year()
	}
	return minYear, maxYear
}

// InYearWindow reports whether the candidate's release year lies inside the
// inclusive window. Candidates with no resolvable year are rejected.
func InYearWindow(c Candidate, minYear, maxYear int) bool {
	if c.Year == 0 {
		return false
	}
	return c.Year >= minYear && c.Year <= maxYear
}

// MainstreamEnough reports whether a single candidate clears the rating or
// popularity bar. Used only for the popcorn taste band.
func MainstreamEnough(c Candidate, t Thresholds) bool {
	t = t.normalized()
	return c.Rating >= t.Rating || c.Popularity >= t.Popularity
}

// HasMomentum reports whether enough of the lineup passes the mainstream
// check for the lineup as a whole to feel mainstream.
func HasMomentum(candidates []Candidate, t Thresholds) bool {
	t = t.normalized()
	passing := 0
	for _, c := range candidates {
		if MainstreamEnough(c, t) {
			passing++
		}
	}
	return passing >= t.Momentum
}

// popcornKeywords flag a reason text as crowd-pleaser territory.
var popcornKeywords = []string{
	"fun", "chaos", "car", "heist", "explosion", "ride",
	"blast", "spectacle", "crowd", "thrill",
}

// popcornGenreIDs is the genre set that counts as popcorn fare.
var popcornGenreIDs = map[int]bool{
	28:  true, // Action
	12:  true, // Adventure
	35:  true, // Comedy
	878: true, // Science Fiction
	14:  true, // Fantasy
}

// PopcornEnough reports whether a candidate reads as popcorn fare: its
// reason text carries a crowd-pleaser keyword, or its genres intersect the
// popcorn set.
func PopcornEnough(c Candidate) bool {
	if textutil.ContainsAnyFold(c.Reason, popcornKeywords) {
		return true
	}
	for _, id := range c.GenreIDs {
		if popcornGenreIDs[id] {
			return true
		}
	}
	return false
}

// PopcornLineupOK reports whether enough candidates pass the popcorn check,
// using the same minimum as mainstream momentum.
func PopcornLineupOK(candidates []Candidate, t Thresholds) bool {
	t = t.normalized()
	passing := 0
	for _, c := range candidates {
		if PopcornEnough(c) {
			passing++
		}
	}
	return passing >= t.Momentum
}

// PassesRule reports whether a candidate satisfies one mood rule: no
// excluded genre matches, no excluded keyword appears in overview or reason
// text, and when the rule requires include genres, at least one matches.
func PassesRule(c Candidate, rule mood.Rule) bool {
	genres := c.GenreNames()
	for _, excluded := range rule.ExcludeGenres {
		for _, genre := range genres {
			if strings.EqualFold(genre, excluded) {
				return false
			}
		}
	}
	if textutil.ContainsAnyFold(c.Overview+" "+c.Reason, rule.ExcludeKeywords) {
		return false
	}
	if len(rule.IncludeGenres) == 0 {
		return true
	}
	for _, included := range rule.IncludeGenres {
		for _, genre := range genres {
			if strings.EqualFold(genre, included) {
				return true
			}
		}
	}
	return false
}

// PassesAllRules reports whether the candidate satisfies every active rule.
func PassesAllRules(c Candidate, rules []mood.Rule) bool {
	for _, rule := range rules {
		if !PassesRule(c, rule) {
			return false
		}
	}
	return true
}

// moodFailures returns the indexes of candidates failing any active rule.
func moodFailures(candidates []Candidate, rules []mood.Rule) []int {
	var failing []int
	for i, c := range candidates {
		if !PassesAllRules(c, rules) {
			failing = append(failing, i)
		}
	}
	return failing
}

// NeedsMoodRepair reports whether the lineup requires a mood repair round:
// any candidate fails, or fewer than min(5, size) candidates pass.
func NeedsMoodRepair(candidates []Candidate, rules []mood.Rule) bool {
	if len(rules) == 0 || len(candidates) == 0 {
		return false
	}
	failing := moodFailures(candidates, rules)
	if len(failing) > 0 {
		return true
	}
	target := moodPassTarget
	if len(candidates) < target {
		target = len(candidates)
	}
	return len(candidates)-len(failing) < target
}
