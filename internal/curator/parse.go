package curator

import (
	"strconv"
	"strings"

	"marquee/internal/services/llm"
	"marquee/internal/textutil"
)

// ParseResult is the normalized outcome of one completion response. A
// malformed response yields a zero ParseResult, never an error.
type ParseResult struct {
	Primary      *Candidate
	Alternatives []Candidate
	CuratorNote  string
}

// Candidates returns primary plus alternatives as one ordered slice.
func (r ParseResult) Candidates() []Candidate {
	out := make([]Candidate, 0, len(r.Alternatives)+1)
	if r.Primary != nil {
		out = append(out, *r.Primary)
	}
	return append(out, r.Alternatives...)
}

// Empty reports whether the parse produced no candidates at all.
func (r ParseResult) Empty() bool {
	return r.Primary == nil && len(r.Alternatives) == 0
}

const (
	noteMaxSentences = 2
	noteMaxChars     = 320
)

// ParseResponse extracts candidates from raw completion text. The model is
// an untrusted collaborator: code fences and surrounding prose are
// tolerated, loosely typed fields are coerced, entries without a title are
// dropped, and anything unparseable degrades to an empty result.
func ParseResponse(raw string, maxAlternatives int) ParseResult {
	var payload any
	if err := llm.DecodeJSON(raw, &payload); err != nil {
		return ParseResult{}
	}

	switch value := payload.(type) {
	case []any:
		return parseArrayPayload(value, maxAlternatives)
	case map[string]any:
		return parseObjectPayload(value, maxAlternatives)
	default:
		return ParseResult{}
	}
}

func parseArrayPayload(entries []any, maxAlternatives int) ParseResult {
	var result ParseResult
	for _, entry := range entries {
		candidate, ok := candidateFromRaw(entry)
		if !ok {
			continue
		}
		if result.Primary == nil {
			result.Primary = &candidate
			continue
		}
		if len(result.Alternatives) >= maxAlternatives {
			break
		}
		result.Alternatives = append(result.Alternatives, candidate)
	}
	return result
}

func parseObjectPayload(obj map[string]any, maxAlternatives int) ParseResult {
	var result ParseResult
	if candidate, ok := candidateFromRaw(obj["primary"]); ok {
		result.Primary = &candidate
	}

	rawAlternatives, ok := obj["alternatives"].([]any)
	if !ok {
		// Some models answer with "suggestions" instead.
		rawAlternatives, _ = obj["suggestions"].([]any)
	}
	for _, entry := range rawAlternatives {
		if len(result.Alternatives) >= maxAlternatives {
			break
		}
		if candidate, ok := candidateFromRaw(entry); ok {
			result.Alternatives = append(result.Alternatives, candidate)
		}
	}

	if note := coerceString(obj["curator_note"]); note != "" {
		result.CuratorNote = textutil.ClipSentences(note, noteMaxSentences, noteMaxChars)
	}
	return result
}

// candidateFromRaw normalizes one raw movie object. The title is the only
// required field; entries without one are dropped.
func candidateFromRaw(value any) (Candidate, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return Candidate{}, false
	}
	title := strings.TrimSpace(coerceString(obj["title"]))
	if title == "" {
		return Candidate{}, false
	}

	candidate := Candidate{
		Title:      title,
		ProviderID: int64(coerceInt(firstPresent(obj, "id", "tmdb_id"))),
		Year:       coerceInt(firstPresent(obj, "year", "release_year")),
		Rating:     coerceFloat(firstPresent(obj, "rating", "vote_average")),
		Popularity: coerceFloat(obj["popularity"]),
		Overview:   strings.TrimSpace(coerceString(obj["overview"])),
		PosterPath: strings.TrimSpace(coerceString(firstPresent(obj, "poster_path", "poster"))),
		Reason:     strings.TrimSpace(coerceString(firstPresent(obj, "reason", "why"))),
	}
	if rawIDs, ok := obj["genre_ids"].([]any); ok {
		for _, rawID := range rawIDs {
			if id := coerceInt(rawID); id > 0 {
				candidate.GenreIDs = append(candidate.GenreIDs, id)
			}
		}
	}
	return candidate, true
}

func firstPresent(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := obj[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func coerceString(value any) string {
	s, _ := value.(string)
	return s
}

// coerceInt accepts JSON numbers and numeric strings; anything else is 0.
func coerceInt(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(parsed)
		}
	}
	return 0
}

func coerceFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed
		}
	}
	return 0
}
