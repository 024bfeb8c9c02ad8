package tmdb

// TMDB movie genre ids are stable public constants; keeping the table local
// avoids a configuration round-trip on every validation pass.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// GenreName resolves a TMDB genre id to its display name, or "" when the id
// is unknown.
func GenreName(id int) string {
	return genreNames[id]
}

// GenreNames resolves a list of genre ids, dropping unknown ids.
func GenreNames(ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name := genreNames[id]; name != "" {
			names = append(names, name)
		}
	}
	return names
}

// GenreID performs the reverse lookup from display name to id, returning 0
// for unknown names. The comparison is exact.
func GenreID(name string) int {
	for id, candidate := range genreNames {
		if candidate == name {
			return id
		}
	}
	return 0
}
