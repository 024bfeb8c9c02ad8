// Package persona holds the static curator registry. Personas are immutable
// data loaded at init; all behavior lives in the curator pipeline.
package persona

import "strings"

// TasteBand classifies a persona's mainstream-vs-arthouse leaning.
type TasteBand string

const (
	TasteAuteur     TasteBand = "auteur"
	TastePopcorn    TasteBand = "popcorn"
	TasteIndie      TasteBand = "indie"
	TasteFilmSchool TasteBand = "film_school"
)

// Valid reports whether the band is one of the known values.
func (b TasteBand) Valid() bool {
	switch b {
	case TasteAuteur, TastePopcorn, TasteIndie, TasteFilmSchool:
		return true
	}
	return false
}

// Persona is one curator definition. MaxYear of 0 means "open ended";
// the year-window validator substitutes the current year.
type Persona struct {
	ID            string
	Name          string
	Emoji         string
	Band          TasteBand
	MinYear       int
	MaxYear       int
	PreferredFrom int
	AllowGenres   []string
	AvoidGenres   []string
	ExampleGood   []string
	ExampleAvoid  []string
	Bias          string
}

var registry = []Persona{
	{
		ID:            "velvet",
		Name:          "Velvet",
		Emoji:         "🎭",
		Band:          TasteAuteur,
		MinYear:       1960,
		PreferredFrom: 1990,
		AllowGenres:   []string{"Drama", "Thriller", "Crime", "Mystery"},
		AvoidGenres:   []string{"Family", "TV Movie"},
		ExampleGood:   []string{"There Will Be Blood", "Mulholland Drive", "In the Mood for Love"},
		ExampleAvoid:  []string{"Transformers", "Grown Ups"},
		Bias:          "Director-driven cinema with a strong authorial voice. Prefers deliberate pacing, ambiguity, and craft over spectacle.",
	},
	{
		ID:            "blockbuster-betty",
		Name:          "Blockbuster Betty",
		Emoji:         "🍿",
		Band:          TastePopcorn,
		MinYear:       1985,
		PreferredFrom: 2005,
		AllowGenres:   []string{"Action", "Adventure", "Comedy", "Science Fiction"},
		AvoidGenres:   []string{"Documentary"},
		ExampleGood:   []string{"Mad Max: Fury Road", "The Rock", "Mission: Impossible - Fallout"},
		ExampleAvoid:  []string{"Jeanne Dielman", "Sátántangó"},
		Bias:          "Crowd-pleasers with momentum. Big set pieces, charismatic leads, fun over homework. Nothing that feels like an assignment.",
	},
	{
		ID:            "basement-tapes",
		Name:          "Basement Tapes",
		Emoji:         "📼",
		Band:          TasteIndie,
		MinYear:       1975,
		PreferredFrom: 1995,
		AllowGenres:   []string{"Drama", "Comedy", "Romance", "Mystery"},
		AvoidGenres:   []string{"Action", "Adventure"},
		ExampleGood:   []string{"Frances Ha", "Paterson", "Columbus"},
		ExampleAvoid:  []string{"Fast & Furious", "Avengers: Endgame"},
		Bias:          "Small, character-first films from outside the studio system. Festival darlings, low budgets, honest scripts.",
	},
	{
		ID:            "professor-reel",
		Name:          "Professor Reel",
		Emoji:         "🎞️",
		Band:          TasteFilmSchool,
		MinYear:       1925,
		MaxYear:       2005,
		PreferredFrom: 1950,
		AllowGenres:   []string{"Drama", "Crime", "War", "History", "Western"},
		AvoidGenres:   []string{"TV Movie"},
		ExampleGood:   []string{"Seven Samurai", "The Third Man", "Bicycle Thieves"},
		ExampleAvoid:  []string{"recent streaming originals"},
		Bias:          "Canon essentials and their overlooked neighbors. Every pick should teach something about how movies are made.",
	},
	{
		ID:            "midnight-max",
		Name:          "Midnight Max",
		Emoji:         "🌙",
		Band:          TastePopcorn,
		MinYear:       1970,
		PreferredFrom: 1980,
		AllowGenres:   []string{"Horror", "Thriller", "Science Fiction", "Fantasy"},
		AvoidGenres:   []string{"Romance", "Family"},
		ExampleGood:   []string{"The Thing", "Evil Dead II", "Train to Busan"},
		ExampleAvoid:  []string{"The Notebook", "Paddington"},
		Bias:          "Late-night genre fare with energy. Practical effects, cult followings, and the occasional glorious mess.",
	},
	{
		ID:            "sunday-matinee",
		Name:          "Sunday Matinee",
		Emoji:         "☀️",
		Band:          TasteIndie,
		MinYear:       1980,
		PreferredFrom: 2000,
		AllowGenres:   []string{"Comedy", "Drama", "Family", "Animation", "Romance"},
		AvoidGenres:   []string{"Horror", "War"},
		ExampleGood:   []string{"Chef", "My Neighbor Totoro", "Little Miss Sunshine"},
		ExampleAvoid:  []string{"Hereditary", "Come and See"},
		Bias:          "Warm, gentle, rewatchable. Films that leave the room lighter than they found it.",
	},
}

// All returns the full registry in declaration order. The returned slice is
// shared; callers must not mutate it.
func All() []Persona {
	return registry
}

// Lookup resolves a persona by id, case-insensitively. The second return is
// false for unknown ids.
func Lookup(id string) (Persona, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range registry {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}
