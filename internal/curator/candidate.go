// Package curator implements the recommendation pipeline: prompt
// composition, response parsing, metadata enrichment, constraint validation,
// bounded repair, and the session orchestrator that drives them.
package curator

import (
	"marquee/internal/services/tmdb"
	"marquee/internal/textutil"
)

// Candidate is one proposed movie, in any state from freshly parsed to fully
// enriched. All fields except Title are optional until enrichment confirms
// them against the metadata provider.
type Candidate struct {
	Title      string  `json:"title"`
	ProviderID int64   `json:"id,omitempty"`
	Year       int     `json:"year,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Popularity float64 `json:"popularity,omitempty"`
	GenreIDs   []int   `json:"genre_ids,omitempty"`
	Overview   string  `json:"overview,omitempty"`
	PosterPath string  `json:"poster_path,omitempty"`
	Reason     string  `json:"reason,omitempty"`

	// Enriched marks a candidate that has completed a provider lookup.
	// A candidate is never enriched twice.
	Enriched bool `json:"-"`
}

// NormalizedTitle returns the lowercased, whitespace-collapsed title used for
// deduplication and ban-list membership.
func (c Candidate) NormalizedTitle() string {
	return textutil.NormalizeTitle(c.Title)
}

// GenreNames resolves the candidate's genre ids to display names, dropping
// ids the provider's table does not know.
func (c Candidate) GenreNames() []string {
	return tmdb.GenreNames(c.GenreIDs)
}

// Lineup is the final ordered output of a session: one primary pick, or nil
// when convergence fully failed, followed by ordered alternatives.
type Lineup struct {
	Primary      *Candidate  `json:"primary"`
	Alternatives []Candidate `json:"alternatives"`
	CuratorNote  string      `json:"curator_note,omitempty"`
}

// Size returns the total number of candidates in the lineup.
func (l Lineup) Size() int {
	size := len(l.Alternatives)
	if l.Primary != nil {
		size++
	}
	return size
}

// Titles returns every title in the lineup, primary first.
func (l Lineup) Titles() []string {
	titles := make([]string, 0, l.Size())
	if l.Primary != nil {
		titles = append(titles, l.Primary.Title)
	}
	for _, alt := range l.Alternatives {
		titles = append(titles, alt.Title)
	}
	return titles
}

// dedupeCandidates drops candidates whose normalized title was already seen,
// keeping the first occurrence. The input slice is not mutated.
func dedupeCandidates(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.NormalizedTitle()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
